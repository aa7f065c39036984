package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/html-hub/learninghub/internal/rbac"
	"github.com/html-hub/learninghub/internal/topic"
)

func orderFromQuery(r *http.Request) topic.Order {
	if r.URL.Query().Get("order") == "asc" {
		return topic.OrderOldestFirst
	}
	return topic.OrderNewestFirst
}

// Admins see full topics; students get exam-safe views with the correct
// answer indexes stripped.
func ListTopicsHandler(store topic.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := store.ListTopics(r.Context(), orderFromQuery(r))
		if err != nil {
			http.Error(w, "list topics", http.StatusInternalServerError)
			return
		}
		if rbac.RoleFromContext(r.Context()) == "admin" {
			_ = json.NewEncoder(w).Encode(ts)
			return
		}
		views := make([]topic.View, len(ts))
		for i, t := range ts {
			views[i] = t.StudentView()
		}
		_ = json.NewEncoder(w).Encode(views)
	}
}

func GetTopicHandler(store topic.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTopic(r.Context(), chi.URLParam(r, "topicID"))
		if err != nil {
			if errors.Is(err, topic.ErrNotFound) {
				http.Error(w, "topic not found", http.StatusNotFound)
				return
			}
			http.Error(w, "get topic", http.StatusInternalServerError)
			return
		}
		if rbac.RoleFromContext(r.Context()) == "admin" {
			_ = json.NewEncoder(w).Encode(t)
			return
		}
		_ = json.NewEncoder(w).Encode(t.StudentView())
	}
}

// SaveTopicHandler serves both POST /topics and PUT /topics/{topicID}; the
// store upserts by id, so authoring create and edit are the same write.
func SaveTopicHandler(store topic.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t topic.Topic
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if id := chi.URLParam(r, "topicID"); id != "" {
			t.ID = id
		}
		if err := t.Normalize(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		saved, err := store.PutTopic(r.Context(), t)
		if err != nil {
			http.Error(w, "save topic", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(saved)
	}
}

func DeleteTopicHandler(store topic.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteTopic(r.Context(), chi.URLParam(r, "topicID"))
		if err != nil {
			if errors.Is(err, topic.ErrNotFound) {
				http.Error(w, "topic not found", http.StatusNotFound)
				return
			}
			http.Error(w, "delete topic", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
