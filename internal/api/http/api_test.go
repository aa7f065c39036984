package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	api "github.com/html-hub/learninghub/internal/api/http"
	"github.com/html-hub/learninghub/internal/auth"
	"github.com/html-hub/learninghub/internal/exam"
	"github.com/html-hub/learninghub/internal/progress"
	"github.com/html-hub/learninghub/internal/rbac"
	"github.com/html-hub/learninghub/internal/topic"
)

type testEnv struct {
	router  *chi.Mux
	authSvc *auth.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	topics := topic.NewInMemoryStore()
	progressStore := progress.NewInMemoryStore()
	attempts := exam.NewInMemoryAttemptStore()
	reconciler := progress.NewReconciler(progressStore, nil)
	authSvc := auth.NewAuthService("test-secret", time.Hour)

	r := chi.NewRouter()
	r.Post("/auth/student", auth.StudentLoginHandler(authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.With(rbac.Require("topic:view")).Get("/topics", api.ListTopicsHandler(topics))
		pr.With(rbac.Require("topic:view")).Get("/topics/{topicID}", api.GetTopicHandler(topics))
		pr.With(rbac.Require("topic:create")).Post("/topics", api.SaveTopicHandler(topics))
		pr.With(rbac.Require("topic:update")).Put("/topics/{topicID}", api.SaveTopicHandler(topics))
		pr.With(rbac.Require("topic:delete")).Delete("/topics/{topicID}", api.DeleteTopicHandler(topics))
		pr.With(rbac.Require("progress:write-own")).Post("/topics/{topicID}/complete", api.MarkCompleteHandler(reconciler))
		pr.With(rbac.Require("exam:submit")).Post("/topics/{topicID}/exam/start", api.StartExamHandler(topics, attempts))
		pr.With(rbac.Require("exam:submit")).Post("/topics/{topicID}/exam", api.SubmitExamHandler(topics, attempts, reconciler))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).Get("/progress", api.ListProgressHandler(progressStore))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).Get("/progress/summary", api.SummaryHandler(topics, progressStore))
	})
	return &testEnv{router: r, authSvc: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	tok, err := e.authSvc.IssueJWT("admin", "admin", "admin")
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	return tok
}

func (e *testEnv) studentToken(t *testing.T, name string) string {
	t.Helper()
	w := e.do(t, "POST", "/auth/student", "", map[string]string{"name": name})
	if w.Code != http.StatusOK {
		t.Fatalf("student login: %d %s", w.Code, w.Body.String())
	}
	out := decode[map[string]string](t, w)
	return out["access_token"]
}

func seedTwoQuestionTopic(t *testing.T, e *testEnv) topic.Topic {
	t.Helper()
	w := e.do(t, "POST", "/topics", e.adminToken(t), topic.Topic{
		Title:       "HTML Basics",
		Description: "Learn the fundamentals",
		Content:     "HTML describes the structure of a page.",
		Questions: []topic.Question{
			{ID: "q1", Question: "First?", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: 1},
			{ID: "q2", Question: "Second?", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: 0},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save topic: %d %s", w.Code, w.Body.String())
	}
	return decode[topic.Topic](t, w)
}

func TestStudentExamFlow(t *testing.T) {
	e := newTestEnv(t)
	saved := seedTwoQuestionTopic(t, e)
	student := e.studentToken(t, "Alice")

	// One right, one wrong: 50%, below threshold.
	w := e.do(t, "POST", "/topics/"+saved.ID+"/exam", student,
		map[string]any{"answers": map[string]int{"q1": 1, "q2": 2}})
	if w.Code != http.StatusOK {
		t.Fatalf("submit exam: %d %s", w.Code, w.Body.String())
	}
	out := decode[struct {
		Result         exam.Result     `json:"result"`
		Record         progress.Record `json:"record"`
		CorrectAnswers map[string]int  `json:"correct_answers"`
	}](t, w)
	if out.Result.ScorePercent != 50 || out.Result.Passed {
		t.Fatalf("expected 50/fail, got %+v", out.Result)
	}
	if !out.Record.Completed || out.Record.Score == nil || *out.Record.Score != 50 {
		t.Fatalf("persisted record = %+v", out.Record)
	}
	if out.CorrectAnswers["q1"] != 1 || out.CorrectAnswers["q2"] != 0 {
		t.Fatalf("review answers = %+v", out.CorrectAnswers)
	}

	sw := e.do(t, "GET", "/progress/summary", student, nil)
	if sw.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", sw.Code, sw.Body.String())
	}
	sum := decode[progress.Summary](t, sw)
	if sum.CompletedCount != 1 || sum.Percentage != 100 || sum.ExamsPassedCount != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestSubmitExam_IncompleteRejectedBeforeWrite(t *testing.T) {
	e := newTestEnv(t)
	saved := seedTwoQuestionTopic(t, e)
	student := e.studentToken(t, "Bob")

	w := e.do(t, "POST", "/topics/"+saved.ID+"/exam", student,
		map[string]any{"answers": map[string]int{"q1": 1}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("incomplete submission should be rejected: %d", w.Code)
	}

	pw := e.do(t, "GET", "/progress", student, nil)
	records := decode[[]progress.Record](t, pw)
	if len(records) != 0 {
		t.Fatalf("rejected grading must not write progress: %+v", records)
	}
}

func TestTopics_StudentViewHidesAnswers(t *testing.T) {
	e := newTestEnv(t)
	saved := seedTwoQuestionTopic(t, e)

	w := e.do(t, "GET", "/topics/"+saved.ID, e.studentToken(t, "Carol"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get topic: %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "correctAnswer") {
		t.Fatalf("student payload leaks answers: %s", w.Body.String())
	}

	aw := e.do(t, "GET", "/topics/"+saved.ID, e.adminToken(t), nil)
	if !strings.Contains(aw.Body.String(), "correctAnswer") {
		t.Fatalf("admin payload should carry answers")
	}
}

func TestTopics_StudentCannotAuthor(t *testing.T) {
	e := newTestEnv(t)
	student := e.studentToken(t, "Dave")

	w := e.do(t, "POST", "/topics", student, topic.Topic{Title: "Sneaky"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("students must not create topics: %d", w.Code)
	}
	if w := e.do(t, "GET", "/topics", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token should 401: %d", w.Code)
	}
}

func TestExamAttempt_GradedAgainstSnapshot(t *testing.T) {
	e := newTestEnv(t)
	saved := seedTwoQuestionTopic(t, e)
	student := e.studentToken(t, "Frank")

	sw := e.do(t, "POST", "/topics/"+saved.ID+"/exam/start", student, nil)
	if sw.Code != http.StatusOK {
		t.Fatalf("start exam: %d %s", sw.Code, sw.Body.String())
	}
	start := decode[struct {
		AttemptID string               `json:"attempt_id"`
		Questions []topic.QuestionView `json:"questions"`
	}](t, sw)
	if start.AttemptID == "" || len(start.Questions) != 2 {
		t.Fatalf("start response = %+v", start)
	}

	// Mid-attempt edit flips q1's correct answer and adds a third question.
	edited := saved
	edited.Questions = []topic.Question{
		{ID: "q1", Question: "First?", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: 2},
		{ID: "q2", Question: "Second?", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: 0},
		{ID: "q3", Question: "Third?", Options: []string{"A", "B"}, CorrectAnswer: 0},
	}
	if w := e.do(t, "PUT", "/topics/"+saved.ID, e.adminToken(t), edited); w.Code != http.StatusOK {
		t.Fatalf("edit topic: %d %s", w.Code, w.Body.String())
	}

	// Answers match the set frozen at start: perfect score despite the edit.
	w := e.do(t, "POST", "/topics/"+saved.ID+"/exam", student,
		map[string]any{"attempt_id": start.AttemptID, "answers": map[string]int{"q1": 1, "q2": 0}})
	if w.Code != http.StatusOK {
		t.Fatalf("submit against snapshot: %d %s", w.Code, w.Body.String())
	}
	out := decode[struct {
		Result exam.Result `json:"result"`
	}](t, w)
	if out.Result.ScorePercent != 100 || !out.Result.Passed {
		t.Fatalf("snapshot grading = %+v", out.Result)
	}

	// Attempts are single-use.
	if w := e.do(t, "POST", "/topics/"+saved.ID+"/exam", student,
		map[string]any{"attempt_id": start.AttemptID, "answers": map[string]int{"q1": 1, "q2": 0}}); w.Code != http.StatusNotFound {
		t.Fatalf("reused attempt should 404: %d", w.Code)
	}
}

func TestMarkComplete_ThenRetake(t *testing.T) {
	e := newTestEnv(t)
	saved := seedTwoQuestionTopic(t, e)
	student := e.studentToken(t, "Eve")

	cw := e.do(t, "POST", "/topics/"+saved.ID+"/complete", student, nil)
	if cw.Code != http.StatusOK {
		t.Fatalf("mark complete: %d %s", cw.Code, cw.Body.String())
	}
	rec := decode[progress.Record](t, cw)
	if !rec.Completed || rec.Score != nil {
		t.Fatalf("completion record = %+v", rec)
	}

	// A later perfect attempt upgrades the same record.
	ew := e.do(t, "POST", "/topics/"+saved.ID+"/exam", student,
		map[string]any{"answers": map[string]int{"q1": 1, "q2": 0}})
	if ew.Code != http.StatusOK {
		t.Fatalf("submit exam: %d", ew.Code)
	}

	pw := e.do(t, "GET", "/progress", student, nil)
	records := decode[[]progress.Record](t, pw)
	if len(records) != 1 {
		t.Fatalf("expected one record per topic, got %d", len(records))
	}
	if records[0].Score == nil || *records[0].Score != 100 {
		t.Fatalf("exam should set score: %+v", records[0])
	}

	sw := e.do(t, "GET", "/progress/summary", student, nil)
	sum := decode[progress.Summary](t, sw)
	if sum.ExamsPassedCount != 1 {
		t.Fatalf("perfect score should count as passed: %+v", sum)
	}
}
