package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"vidsum-backend/internal/middleware"
	"vidsum-backend/internal/models"
	"vidsum-backend/internal/repository"
	"vidsum-backend/internal/services"
)

type summaryRepository interface {
	Create(ctx context.Context, s *models.Summary) error
	ListByEmail(ctx context.Context, ownerEmail string) ([]*models.Summary, error)
}

type summarizer interface {
	Summarize(ctx context.Context, videoURL string) (*models.Summary, error)
}

type metadataResolver interface {
	Metadata(ctx context.Context, videoID string) services.VideoMetadata
}

type SummaryHandler struct {
	summaryRepo summaryRepository
	summarizer  summarizer
	youtube     metadataResolver
	jobRepo     *repository.JobRepo
	publisher   *services.EventPublisher
	redis       *redis.Client
}

func NewSummaryHandler(
	summaryRepo summaryRepository,
	summarizerService summarizer,
	youtubeService metadataResolver,
	jobRepo *repository.JobRepo,
	publisher *services.EventPublisher,
	redisClient *redis.Client,
) *SummaryHandler {
	return &SummaryHandler{
		summaryRepo: summaryRepo,
		summarizer:  summarizerService,
		youtube:     youtubeService,
		jobRepo:     jobRepo,
		publisher:   publisher,
		redis:       redisClient,
	}
}

// Save stores an already-produced summary (POST /api/summaries). The body of
// the response is opaque to clients; they only check the status code.
func (h *SummaryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.UserEmail) == "" || strings.TrimSpace(req.VideoURL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "userEmail and videoUrl are required", r))
		return
	}

	videoID := services.ExtractVideoID(req.VideoURL)
	thumbnail := req.VideoThumbnail
	if thumbnail == "" {
		thumbnail = services.Thumbnail(videoID)
	}
	title := req.VideoTitle
	if title == "" {
		title = "YouTube Video"
	}

	summary := &models.Summary{
		OwnerEmail:     req.UserEmail,
		VideoURL:       req.VideoURL,
		VideoID:        videoID,
		VideoTitle:     title,
		VideoThumbnail: thumbnail,
		SummaryText:    req.Summary,
		Status:         models.StatusCompleted,
	}

	if err := h.summaryRepo.Create(r.Context(), summary); err != nil {
		log.Printf("failed to save summary for %s: %v", req.UserEmail, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save summary", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Summary saved",
		"id":      summary.ID,
	})
}

// List returns the owner's history as a bare JSON array, newest first
// (GET /api/summaries/{userEmail}).
func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerEmail := chi.URLParam(r, "userEmail")
	if ownerEmail == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "userEmail is required", r))
		return
	}

	summaries, err := h.summaryRepo.ListByEmail(r.Context(), ownerEmail)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch summaries", r))
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Summarize runs the full lifecycle synchronously (POST /api/summarize):
// webhook call, title enrichment, best-effort persist, event publish.
func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	ownerEmail := middleware.GetOwnerEmail(r.Context())

	summary, err := h.summarizer.Summarize(r.Context(), req.VideoURL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	summary.OwnerEmail = ownerEmail

	// The webhook rarely knows the title; look it up when only the fallback
	// came back.
	if summary.VideoTitle == "YouTube Video" && summary.VideoID != "" {
		meta := h.youtube.Metadata(r.Context(), summary.VideoID)
		summary.VideoTitle = meta.Title
	}

	// Display is not transactional with persistence: a failed save is a
	// warning, the client still gets its summary.
	if err := h.summaryRepo.Create(r.Context(), summary); err != nil {
		log.Printf("failed to persist summary %s for %s: %v", summary.ID, ownerEmail, err)
	}

	h.publisher.Publish(r.Context(), ownerEmail, models.WSMessage{
		Type:    "summary_completed",
		Payload: summary,
	})

	writeJSON(w, http.StatusOK, summary)
}

// SummarizeAsync queues the lifecycle for the worker pool
// (POST /api/summarize/async).
func (h *SummaryHandler) SummarizeAsync(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.VideoURL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "videoUrl is required", r))
		return
	}

	job := &models.Job{
		OwnerEmail: middleware.GetOwnerEmail(r.Context()),
		VideoURL:   strings.TrimSpace(req.VideoURL),
	}

	// Queue availability is checked before the insert so an unavailable
	// queue never leaves an orphaned pending job.
	if h.redis == nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Summarize queue is unavailable", r))
		return
	}

	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create job", r))
		return
	}

	jobBytes, _ := json.Marshal(job)
	if err := h.redis.LPush(r.Context(), "queue:summarize", string(jobBytes)).Err(); err != nil {
		log.Printf("failed to enqueue summarize job %s: %v", job.ID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue summarize job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
	case *services.RequestError:
		// The diagnostic stays in server logs; the client gets the generic
		// retry prompt.
		log.Printf("summarize request failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResp("REQUEST_FAILED", "Failed to fetch summary. Please try again.", r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", err.Error(), r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
