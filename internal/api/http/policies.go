package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-cgpa/internal/grading"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

type policyResp struct {
	Institution grading.Institution `json:"institution"`
	Grades      []grading.Grade     `json:"grades"`
}

func policyOf(p grading.Policy) policyResp {
	return policyResp{Institution: p.Institution(), Grades: p.Grades()}
}

// GET /policies
func ListPoliciesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []policyResp{
			policyOf(grading.NSUPolicy()),
			policyOf(grading.AIUBPolicy()),
		})
	}
}

// GET /policies/{institution}
func GetPolicyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inst, err := grading.ParseInstitution(chi.URLParam(r, "institution"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		p, err := grading.PolicyFor(inst)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, policyOf(p))
	}
}

type bandsResp struct {
	Direction scale.Direction     `json:"direction"`
	Source    grading.Institution `json:"source"`
	Target    grading.Institution `json:"target"`
	scale.Route
}

// GET /bands/{direction}
func BandsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := scale.ParseDirection(chi.URLParam(r, "direction"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		route, _ := scale.RouteFor(d)
		writeJSON(w, http.StatusOK, bandsResp{
			Direction: d,
			Source:    d.Source(),
			Target:    d.Target(),
			Route:     route,
		})
	}
}
