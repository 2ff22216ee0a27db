package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type taskEnvelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    Task         `json:"data"`
	Details []FieldError `json:"details"`
}

type listEnvelope struct {
	Status string `json:"status"`
	Data   []Task `json:"data"`
}

func newTestServer() (*chi.Mux, *InMemoryRepo) {
	repo := NewInMemoryRepo()
	r := chi.NewRouter()
	RegisterRoutes(r, repo)
	return r, repo
}

func seed(t *testing.T, repo Repository, name string, hours float64, c Category) Task {
	t.Helper()
	task, err := repo.Create(context.Background(), NewTask{
		Name: name, Hours: hours, Priority: "high", Difficulty: "easy", Type: c,
	})
	if err != nil {
		t.Fatalf("seed %q: %v", name, err)
	}
	return task
}

func do(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPostTasks_Success(t *testing.T) {
	r, _ := newTestServer()

	body := []byte(`{"task_name":"learn chi","time_to_complete":1.5,"priority":"high","difficulty":"easy","type":"completed"}`)
	rec := do(r, http.MethodPost, "/tasks", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", rec.Code, rec.Body.String())
	}

	var got taskEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if got.Status != StatusSuccess {
		t.Errorf("expected status success, got %q", got.Status)
	}
	if got.Data.ID == "" {
		t.Errorf("expected non-empty _id")
	}
	if got.Data.Name != "learn chi" || got.Data.Hours != 1.5 || got.Data.Type != CategoryCompleted {
		t.Errorf("unexpected task: %+v", got.Data)
	}
	if got.Data.CreatedAt.IsZero() {
		t.Errorf("expected created_at to be set")
	}
}

func TestPostTasks_ValidationError(t *testing.T) {
	r, _ := newTestServer()

	rec := do(r, http.MethodPost, "/tasks", []byte(`{"task_name":"","time_to_complete":-1,"type":"later"}`))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d, body=%s", rec.Code, rec.Body.String())
	}

	var got taskEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse error JSON: %v", err)
	}
	if got.Status != StatusError {
		t.Errorf("expected status error, got %q", got.Status)
	}
	fields := map[string]bool{}
	for _, d := range got.Details {
		fields[d.Field] = true
	}
	for _, f := range []string{"task_name", "time_to_complete", "type"} {
		if !fields[f] {
			t.Errorf("expected detail for %s, got %+v", f, got.Details)
		}
	}
}

func TestPostTasks_InvalidJSON(t *testing.T) {
	r, _ := newTestServer()

	rec := do(r, http.MethodPost, "/tasks", []byte(`{"task_name":`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", rec.Code, rec.Body.String())
	}

	var got taskEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse error JSON: %v", err)
	}
	if got.Message != "invalid_json" {
		t.Errorf("expected message 'invalid_json', got %q", got.Message)
	}
}

func TestGetTasks_FilterByType(t *testing.T) {
	r, repo := newTestServer()
	seed(t, repo, "nap", 1, CategoryBad)
	seed(t, repo, "write report", 2, CategoryCompleted)
	seed(t, repo, "scroll feed", 3, CategoryBad)

	rec := do(r, http.MethodGet, "/tasks?type=bad", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", rec.Code, rec.Body.String())
	}

	var got listEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(got.Data) != 2 {
		t.Fatalf("expected 2 bad tasks, got %d", len(got.Data))
	}
	if got.Data[0].Name != "nap" || got.Data[1].Name != "scroll feed" {
		t.Errorf("expected creation order, got %+v", got.Data)
	}
}

func TestGetTasks_InvalidType(t *testing.T) {
	r, _ := newTestServer()

	rec := do(r, http.MethodGet, "/tasks?type=someday", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestGetTasks_EmptyIsArray(t *testing.T) {
	r, _ := newTestServer()

	rec := do(r, http.MethodGet, "/tasks", nil)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"data":[]`)) {
		t.Fatalf("expected empty data array, got %s", rec.Body.String())
	}
}

func TestPatchTask_MovesCategory(t *testing.T) {
	r, repo := newTestServer()
	task := seed(t, repo, "nap", 1, CategoryBad)

	rec := do(r, http.MethodPatch, "/tasks/"+task.ID, []byte(`{"type":"completed"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", rec.Code, rec.Body.String())
	}

	var got taskEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if got.Data.Type != CategoryCompleted {
		t.Errorf("expected type completed, got %q", got.Data.Type)
	}
	if got.Data.Name != "nap" || got.Data.Hours != 1 {
		t.Errorf("patch touched other fields: %+v", got.Data)
	}
}

func TestPatchTask_Errors(t *testing.T) {
	r, repo := newTestServer()
	task := seed(t, repo, "nap", 1, CategoryBad)

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"missing task", "/tasks/nope", `{"type":"bad"}`, http.StatusNotFound},
		{"empty patch", "/tasks/" + task.ID, `{}`, http.StatusUnprocessableEntity},
		{"bad type", "/tasks/" + task.ID, `{"type":"later"}`, http.StatusUnprocessableEntity},
		{"unknown field", "/tasks/" + task.ID, `{"done":true}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(r, http.MethodPatch, tc.path, []byte(tc.body))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d, body=%s", tc.want, rec.Code, rec.Body.String())
			}
			var got taskEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to parse JSON: %v", err)
			}
			if got.Status != StatusError {
				t.Errorf("expected status error, got %q", got.Status)
			}
		})
	}
}

func TestDeleteTask(t *testing.T) {
	r, repo := newTestServer()
	task := seed(t, repo, "nap", 1, CategoryBad)

	rec := do(r, http.MethodDelete, "/tasks/"+task.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"status":"success"`)) {
		t.Errorf("expected success envelope, got %s", rec.Body.String())
	}

	rec = do(r, http.MethodDelete, "/tasks/"+task.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected second delete to 404, got %d", rec.Code)
	}
}
