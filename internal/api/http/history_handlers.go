package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	authmw "github.com/mind-engage/mindengage-cgpa/internal/auth/middleware"
	"github.com/mind-engage/mindengage-cgpa/internal/history"
)

// HistoryStore is the part of history.SQLStore the handlers need.
type HistoryStore interface {
	List(ctx context.Context, opts history.ListOpts) ([]history.Record, error)
	Purge(ctx context.Context) (int64, error)
}

// GET /history?direction=nsu-aiub&limit=50&offset=0
func ListHistoryHandler(store HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), history.ListOpts{
			Direction: strings.TrimSpace(q.Get("direction")),
			Limit:     parseIntDefault(q.Get("limit"), 50),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// DELETE /history
func PurgeHistoryHandler(store HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Purge(r.Context())
		if err != nil {
			http.Error(w, "purge: "+err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("history purged by %q: %d records", authmw.SubjectFromContext(r.Context()), n)
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
