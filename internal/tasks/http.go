package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 16

// envelope is the body of every task API response.
type envelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// RegisterRoutes mounts the task API on r. Callers usually mount it under
// /api.
func RegisterRoutes(r chi.Router, repo Repository) {
	r.Get("/tasks", listTasks(repo))
	r.Post("/tasks", createTask(repo))
	r.Patch("/tasks/{id}", updateTask(repo))
	r.Delete("/tasks/{id}", deleteTask(repo))
}

func listTasks(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f Filter
		if raw := r.URL.Query().Get("type"); raw != "" {
			c, ok := ParseCategory(raw)
			if !ok {
				writeJSON(w, http.StatusUnprocessableEntity, envelope{
					Status:  StatusError,
					Message: "validation_error",
					Details: []FieldError{{Field: "type", Message: ErrInvalidType.Error()}},
				})
				return
			}
			f.Type = c
		}

		list, err := repo.List(r.Context(), f)
		if err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{Status: StatusSuccess, Data: list})
	}
}

func createTask(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in NewTask
		if err := decodeBody(w, r, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{Status: StatusError, Message: "invalid_json"})
			return
		}

		t, err := repo.Create(r.Context(), in)
		if err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, envelope{Status: StatusSuccess, Message: "task created", Data: t})
	}
}

func updateTask(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Patch
		if err := decodeBody(w, r, &p); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{Status: StatusError, Message: "invalid_json"})
			return
		}

		t, err := repo.Update(r.Context(), chi.URLParam(r, "id"), p)
		if err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{Status: StatusSuccess, Message: "task updated", Data: t})
	}
}

func deleteTask(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{Status: StatusSuccess, Message: "task deleted"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Status:  StatusError,
			Message: "validation_error",
			Details: verr.Fields,
		})
	case errors.Is(err, ErrEmptyPatch):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Status: StatusError, Message: err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Status: StatusError, Message: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "task_repo_error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, envelope{Status: StatusError, Message: "unexpected_error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
