package models

import (
	"fmt"
	"time"
)

// Summary statuses. A summary only ever moves pending → completed or
// pending → failed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AnonymousEmail is the owner identity used when no authenticated user is
// available.
const AnonymousEmail = "anonymous@demo.com"

// Summary is the canonical record for one video-summarization result.
// JSON keys match the wire format the browser client and the persistence
// endpoints already speak (camelCase, `summary` for the body text).
type Summary struct {
	ID             string    `json:"id"`
	OwnerEmail     string    `json:"userEmail"`
	VideoURL       string    `json:"videoUrl"`
	VideoID        string    `json:"videoId,omitempty"`
	VideoTitle     string    `json:"videoTitle"`
	VideoThumbnail string    `json:"videoThumbnail"`
	SummaryText    string    `json:"summary"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewJobID generates the client-side fallback id used when the summarizer
// webhook does not return one.
func NewJobID() string {
	return fmt.Sprintf("job-%d", time.Now().UnixMilli())
}

// WebhookResponse is the loosely-shaped body the summarizer webhook returns.
// Every field is optional; Normalize applies the documented fallbacks. The
// shape never leaks past the summarizer service.
type WebhookResponse struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	Text       string `json:"text"`
	VideoTitle string `json:"videoTitle"`
	VideoURL   string `json:"videoUrl"`
	VideoID    string `json:"videoId"`
	Status     string `json:"status"`
}

// Normalize maps the webhook response into a canonical Summary.
// videoURL, videoID and thumbnail come from the submitted URL, never from the
// echoed response.
func (r WebhookResponse) Normalize(videoURL, videoID, thumbnail string) *Summary {
	text := r.Summary
	if text == "" {
		text = r.Text
	}

	title := r.VideoTitle
	if title == "" {
		title = "YouTube Video"
	}

	status := r.Status
	if status == "" {
		status = StatusCompleted
	}

	id := r.ID
	if id == "" {
		id = NewJobID()
	}

	return &Summary{
		ID:             id,
		VideoURL:       videoURL,
		VideoID:        videoID,
		VideoTitle:     title,
		VideoThumbnail: thumbnail,
		SummaryText:    text,
		Status:         status,
		CreatedAt:      time.Now(),
	}
}

// SummarizeRequest is the body of POST /api/summarize and the payload sent to
// the webhook.
type SummarizeRequest struct {
	VideoURL string `json:"videoUrl"`
}

// SaveSummaryRequest is the body of POST /api/summaries.
type SaveSummaryRequest struct {
	UserEmail      string `json:"userEmail"`
	VideoURL       string `json:"videoUrl"`
	VideoTitle     string `json:"videoTitle"`
	Summary        string `json:"summary"`
	VideoThumbnail string `json:"videoThumbnail,omitempty"`
}

// SummaryPatch carries the fields Store.Update may merge into a stored
// summary. Nil fields are left untouched.
type SummaryPatch struct {
	VideoTitle  *string
	SummaryText *string
	Status      *string
}

// API error response envelope.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
