package http

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-cgpa/internal/converter"
	"github.com/mind-engage/mindengage-cgpa/internal/grading"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

// numberOrString accepts 3, 3.5 or "3.5" from form-style clients.
type numberOrString string

func (n *numberOrString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = numberOrString(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		// booleans, objects and the like are kept as text and fail validation later
		*n = numberOrString(b)
		return nil
	}
	*n = numberOrString(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

type subjectReq struct {
	Grade   string         `json:"grade"`
	Credits numberOrString `json:"credits"`
}

type convertReq struct {
	Direction string         `json:"direction,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	CGPA      numberOrString `json:"cgpa,omitempty"`
	Subjects  []subjectReq   `json:"subjects,omitempty"`
}

type convertResp struct {
	converter.Result
	SourceDisplay string `json:"source_display"`
	TargetDisplay string `json:"target_display"`
}

func (req convertReq) toRequest(def scale.Direction) (converter.Request, error) {
	out := converter.Request{Direction: def, CGPA: string(req.CGPA)}
	if strings.TrimSpace(req.Direction) != "" {
		d, err := scale.ParseDirection(req.Direction)
		if err != nil {
			return out, err
		}
		out.Direction = d
	}
	switch {
	case strings.TrimSpace(req.Mode) != "":
		m, err := converter.ParseMode(req.Mode)
		if err != nil {
			return out, err
		}
		out.Mode = m
	case len(req.Subjects) > 0:
		out.Mode = converter.ModeSubjects
	default:
		out.Mode = converter.ModeTotal
	}
	for _, s := range req.Subjects {
		credits := math.NaN()
		if c := strings.TrimSpace(string(s.Credits)); c != "" {
			credits = grading.ParseCredits(c)
		}
		out.Subjects = append(out.Subjects, grading.SubjectEntry{
			Grade:   strings.TrimSpace(s.Grade),
			Credits: credits,
		})
	}
	return out, nil
}

// POST /convert
func ConvertHandler(svc *converter.Service, def scale.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body convertReq
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		req, err := body.toRequest(def)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := svc.Convert(r.Context(), req)
		if err != nil {
			writeConvertError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, convertResp{
			Result:        res,
			SourceDisplay: res.FormatSource(),
			TargetDisplay: res.FormatTarget(),
		})
	}
}

func writeConvertError(w http.ResponseWriter, err error) {
	if converter.IsValidation(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("convert: %v", err)
	http.Error(w, converter.ErrCalculation.Error(), http.StatusInternalServerError)
}

// writeJSON encodes v before touching the response so an encoding failure
// still reaches the caller as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
		http.Error(w, converter.ErrCalculation.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
