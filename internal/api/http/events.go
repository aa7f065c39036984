package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/html-hub/learninghub/internal/audit"
)

// GET /events?limit=N  admin-only view of recent progress writes.
func ListEventsHandler(repo *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := repo.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, "list events", http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		_ = json.NewEncoder(w).Encode(events)
	}
}
