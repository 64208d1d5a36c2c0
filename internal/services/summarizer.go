package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"vidsum-backend/internal/models"
)

// SummarizerService submits video URLs to the external summarization webhook
// and normalizes its loosely-typed responses into canonical summaries.
type SummarizerService struct {
	webhookURL string
	httpClient *http.Client
}

func NewSummarizerService(webhookURL string) *SummarizerService {
	return &SummarizerService{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Summarize sends one POST to the webhook and blocks until it responds.
// The call is atomic: either a complete Summary comes back or an error does,
// and no retry is attempted. The returned summary carries the submitted URL
// verbatim, never the one echoed by the webhook.
func (s *SummarizerService) Summarize(ctx context.Context, videoURL string) (*models.Summary, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return nil, &ValidationError{Message: "video URL is required"}
	}

	// Derive id and thumbnail up front so the result has a usable thumbnail
	// even when the webhook omits one.
	videoID := ExtractVideoID(videoURL)
	thumbnail := Thumbnail(videoID)

	payload, _ := json.Marshal(models.SummarizeRequest{VideoURL: videoURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{Body: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RequestError{Status: resp.StatusCode, Body: string(body)}
	}

	var raw models.WebhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &RequestError{Body: "unparsable webhook response: " + err.Error()}
	}

	return raw.Normalize(videoURL, videoID, thumbnail), nil
}
