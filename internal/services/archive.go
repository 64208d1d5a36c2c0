package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"vidsum-backend/internal/models"
)

// ArchiveClient talks to the remote summary store: best-effort writes after a
// summary is already displayed, and full history reads on load.
type ArchiveClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewArchiveClient(baseURL string) *ArchiveClient {
	return &ArchiveClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Persist mirrors a completed summary to the remote store. At-most-once,
// no retry: a failure here must not hide the summary the user is already
// looking at, so callers treat the returned error as a warning.
func (c *ArchiveClient) Persist(ctx context.Context, ownerEmail string, s *models.Summary) error {
	body, _ := json.Marshal(models.SaveSummaryRequest{
		UserEmail:      ownerEmail,
		VideoURL:       s.VideoURL,
		VideoTitle:     s.VideoTitle,
		Summary:        s.SummaryText,
		VideoThumbnail: s.VideoThumbnail,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/summaries", bytes.NewReader(body))
	if err != nil {
		return &PersistError{Body: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PersistError{Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Response text is opaque diagnostics, not parsed.
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &PersistError{Status: resp.StatusCode, Body: string(text)}
	}

	return nil
}

// FetchSummaries loads the owner's stored history, newest first. The remote
// store only ever holds completed items, so every entry is tagged completed
// on receipt.
func (c *ArchiveClient) FetchSummaries(ctx context.Context, ownerEmail string) ([]*models.Summary, error) {
	endpoint := c.baseURL + "/api/summaries/" + url.PathEscape(ownerEmail)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Message: "history fetch failed with status " + resp.Status}
	}

	var summaries []*models.Summary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return nil, &FetchError{Message: "unparsable history response: " + err.Error()}
	}

	for _, s := range summaries {
		s.Status = models.StatusCompleted
		if s.VideoThumbnail == "" {
			s.VideoThumbnail = Thumbnail(ExtractVideoID(s.VideoURL))
		}
	}

	return summaries, nil
}
