package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"vidsum-backend/internal/models"
	"vidsum-backend/internal/services"
)

type fakeSummaryRepo struct {
	created   []*models.Summary
	createErr error
	listed    []*models.Summary
	listErr   error
	lastEmail string
}

func (f *fakeSummaryRepo) Create(ctx context.Context, s *models.Summary) error {
	if f.createErr != nil {
		return f.createErr
	}
	if s.ID == "" {
		s.ID = "generated-id"
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSummaryRepo) ListByEmail(ctx context.Context, ownerEmail string) ([]*models.Summary, error) {
	f.lastEmail = ownerEmail
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listed == nil {
		return []*models.Summary{}, nil
	}
	return f.listed, nil
}

type fakeSummarizer struct {
	summary *models.Summary
	err     error
	lastURL string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, videoURL string) (*models.Summary, error) {
	f.lastURL = videoURL
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeMetadata struct {
	meta   services.VideoMetadata
	called bool
}

func (f *fakeMetadata) Metadata(ctx context.Context, videoID string) services.VideoMetadata {
	f.called = true
	return f.meta
}

func newTestHandler(repo *fakeSummaryRepo, sum *fakeSummarizer, meta *fakeMetadata) *SummaryHandler {
	return NewSummaryHandler(repo, sum, meta, nil, nil, nil)
}

func postJSON(body interface{}) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSave_StoresSummary(t *testing.T) {
	repo := &fakeSummaryRepo{}
	h := newTestHandler(repo, nil, nil)

	rec := httptest.NewRecorder()
	h.Save(rec, postJSON(models.SaveSummaryRequest{
		UserEmail: "user@example.com",
		VideoURL:  "https://youtu.be/abc12345678",
		Summary:   "hello",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("Expected 1 created summary, got %d", len(repo.created))
	}

	got := repo.created[0]
	if got.OwnerEmail != "user@example.com" {
		t.Errorf("Expected ownerEmail, got %q", got.OwnerEmail)
	}
	if got.VideoID != "abc12345678" {
		t.Errorf("Expected derived videoId, got %q", got.VideoID)
	}
	if got.VideoTitle != "YouTube Video" {
		t.Errorf("Expected title fallback, got %q", got.VideoTitle)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("Expected completed, got %q", got.Status)
	}
}

func TestSave_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  models.SaveSummaryRequest
	}{
		{"missing email", models.SaveSummaryRequest{VideoURL: "https://youtu.be/abc12345678"}},
		{"missing url", models.SaveSummaryRequest{UserEmail: "user@example.com"}},
		{"blank email", models.SaveSummaryRequest{UserEmail: "  ", VideoURL: "https://youtu.be/abc12345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSummaryRepo{}
			h := newTestHandler(repo, nil, nil)
			rec := httptest.NewRecorder()
			h.Save(rec, postJSON(tt.req))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
			if len(repo.created) != 0 {
				t.Errorf("Expected nothing stored, got %d", len(repo.created))
			}
		})
	}
}

func TestSave_RepoFailure(t *testing.T) {
	repo := &fakeSummaryRepo{createErr: errors.New("db down")}
	h := newTestHandler(repo, nil, nil)
	rec := httptest.NewRecorder()
	h.Save(rec, postJSON(models.SaveSummaryRequest{
		UserEmail: "user@example.com",
		VideoURL:  "https://youtu.be/abc12345678",
	}))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func listRequest(email string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/summaries/"+email, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userEmail", email)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestList_ReturnsBareArray(t *testing.T) {
	repo := &fakeSummaryRepo{listed: []*models.Summary{
		{ID: "2", SummaryText: "newer"},
		{ID: "1", SummaryText: "older"},
	}}
	h := newTestHandler(repo, nil, nil)

	rec := httptest.NewRecorder()
	h.List(rec, listRequest("user@example.com"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if repo.lastEmail != "user@example.com" {
		t.Errorf("Expected list for owner, got %q", repo.lastEmail)
	}

	var got []*models.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Expected a bare JSON array, got %s", rec.Body.String())
	}
	if len(got) != 2 || got[0].ID != "2" {
		t.Errorf("Expected order preserved, got %+v", got)
	}
}

func TestList_EmptyHistory(t *testing.T) {
	h := newTestHandler(&fakeSummaryRepo{}, nil, nil)
	rec := httptest.NewRecorder()
	h.List(rec, listRequest("user@example.com"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty array, got %q", body)
	}
}

func TestSummarize_Success(t *testing.T) {
	repo := &fakeSummaryRepo{}
	sum := &fakeSummarizer{summary: &models.Summary{
		ID:          "job-1",
		VideoURL:    "https://youtu.be/abc12345678",
		VideoID:     "abc12345678",
		VideoTitle:  "Known Title",
		SummaryText: "hello",
		Status:      models.StatusCompleted,
	}}
	meta := &fakeMetadata{}
	h := newTestHandler(repo, sum, meta)

	rec := httptest.NewRecorder()
	h.Summarize(rec, postJSON(models.SummarizeRequest{VideoURL: "https://youtu.be/abc12345678"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sum.lastURL != "https://youtu.be/abc12345678" {
		t.Errorf("Expected summarizer called with URL, got %q", sum.lastURL)
	}
	if meta.called {
		t.Error("Expected no metadata lookup when the webhook supplied a title")
	}
	if len(repo.created) != 1 {
		t.Errorf("Expected summary persisted, got %d", len(repo.created))
	}

	var got models.Summary
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.SummaryText != "hello" {
		t.Errorf("Expected summary in response, got %q", got.SummaryText)
	}
	if got.OwnerEmail != models.AnonymousEmail {
		t.Errorf("Expected anonymous owner without token, got %q", got.OwnerEmail)
	}
}

func TestSummarize_EnrichesFallbackTitle(t *testing.T) {
	sum := &fakeSummarizer{summary: &models.Summary{
		ID:         "job-1",
		VideoID:    "abc12345678",
		VideoTitle: "YouTube Video",
		Status:     models.StatusCompleted,
	}}
	meta := &fakeMetadata{meta: services.VideoMetadata{Title: "Resolved Title"}}
	h := newTestHandler(&fakeSummaryRepo{}, sum, meta)

	rec := httptest.NewRecorder()
	h.Summarize(rec, postJSON(models.SummarizeRequest{VideoURL: "https://youtu.be/abc12345678"}))

	var got models.Summary
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !meta.called {
		t.Error("Expected metadata lookup for fallback title")
	}
	if got.VideoTitle != "Resolved Title" {
		t.Errorf("Expected enriched title, got %q", got.VideoTitle)
	}
}

func TestSummarize_PersistFailureStillReturnsSummary(t *testing.T) {
	repo := &fakeSummaryRepo{createErr: errors.New("db down")}
	sum := &fakeSummarizer{summary: &models.Summary{
		ID:          "job-1",
		VideoTitle:  "T",
		SummaryText: "hello",
		Status:      models.StatusCompleted,
	}}
	h := newTestHandler(repo, sum, &fakeMetadata{})

	rec := httptest.NewRecorder()
	h.Summarize(rec, postJSON(models.SummarizeRequest{VideoURL: "https://youtu.be/abc12345678"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 despite persist failure, got %d", rec.Code)
	}
	var got models.Summary
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.SummaryText != "hello" {
		t.Errorf("Expected summary still returned, got %q", got.SummaryText)
	}
}

func TestSummarize_ValidationError(t *testing.T) {
	sum := &fakeSummarizer{err: &services.ValidationError{Message: "video URL is required"}}
	h := newTestHandler(&fakeSummaryRepo{}, sum, &fakeMetadata{})

	rec := httptest.NewRecorder()
	h.Summarize(rec, postJSON(models.SummarizeRequest{VideoURL: ""}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestSummarize_WebhookFailureMapsToBadGateway(t *testing.T) {
	sum := &fakeSummarizer{err: &services.RequestError{Status: 500, Body: "workflow crashed"}}
	h := newTestHandler(&fakeSummaryRepo{}, sum, &fakeMetadata{})

	rec := httptest.NewRecorder()
	h.Summarize(rec, postJSON(models.SummarizeRequest{VideoURL: "https://youtu.be/abc12345678"}))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error.Message != "Failed to fetch summary. Please try again." {
		t.Errorf("Expected generic retry message, got %q", resp.Error.Message)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("workflow crashed")) {
		t.Error("Expected webhook diagnostics kept out of the response")
	}
}

func TestSummarizeAsync_QueueUnavailableCreatesNoJob(t *testing.T) {
	// Both the queue and the job repo are absent: the handler must refuse
	// before touching the repo, or the nil repo would panic.
	h := newTestHandler(&fakeSummaryRepo{}, &fakeSummarizer{}, &fakeMetadata{})

	rec := httptest.NewRecorder()
	h.SummarizeAsync(rec, postJSON(models.SummarizeRequest{VideoURL: "https://youtu.be/abc12345678"}))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 when the queue is unavailable, got %d", rec.Code)
	}
}

func TestSummarizeAsync_MissingURL(t *testing.T) {
	h := newTestHandler(&fakeSummaryRepo{}, &fakeSummarizer{}, &fakeMetadata{})

	rec := httptest.NewRecorder()
	h.SummarizeAsync(rec, postJSON(models.SummarizeRequest{VideoURL: "  "}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank URL, got %d", rec.Code)
	}
}

func TestSummarize_InvalidBody(t *testing.T) {
	h := newTestHandler(&fakeSummaryRepo{}, &fakeSummarizer{}, &fakeMetadata{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not json")))
	h.Summarize(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}
