package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
)

// PlaceholderThumbnail is returned whenever a video id could not be derived.
const PlaceholderThumbnail = "https://via.placeholder.com/320x180?text=No+Thumbnail"

// Matchers for the known YouTube URL shapes, tried in order. Matching is
// deliberately lenient: any string containing one of these shapes yields an
// id, even if the string as a whole is not a well-formed URL.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:[^#\s]*&)?v=([\w-]{11})`),
	regexp.MustCompile(`youtu\.be/([\w-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([\w-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([\w-]{11})`),
}

// ExtractVideoID pulls the 11-character video id out of a pasted link.
// Returns "" when no shape matches; callers treat that as "unknown video",
// not as an error.
func ExtractVideoID(raw string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(raw); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// IsValidWatchURL is the strict gate used for input validation only. It
// rejects strings ExtractVideoID would still parse (missing scheme, bare
// fragments), so extraction must never be routed through it.
func IsValidWatchURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	return ExtractVideoID(raw) != ""
}

// Thumbnail returns the deterministic thumbnail URL for a video id, or the
// fixed placeholder when the id is unknown. Never returns "".
func Thumbnail(videoID string) string {
	if videoID == "" {
		return PlaceholderThumbnail
	}
	return "https://img.youtube.com/vi/" + videoID + "/mqdefault.jpg"
}

// VideoMetadata is the displayable subset of what YouTube knows about a video.
type VideoMetadata struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelName  string `json:"channel_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type YouTubeService struct {
	httpClient *http.Client
	ytClient   *yt.Client
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		ytClient:   &yt.Client{},
	}
}

// Metadata resolves title and channel for a video id, oEmbed first with a
// player-API fallback. Failures degrade to the documented placeholders so the
// summarize path never blocks on metadata.
func (s *YouTubeService) Metadata(ctx context.Context, videoID string) VideoMetadata {
	meta := VideoMetadata{
		VideoID:      videoID,
		Title:        "YouTube Video",
		ChannelName:  "YouTube Channel",
		ThumbnailURL: Thumbnail(videoID),
	}
	if videoID == "" {
		return meta
	}

	if oembed, err := s.fetchOEmbed(ctx, videoID); err == nil {
		if oembed.Title != "" {
			meta.Title = oembed.Title
		}
		if oembed.AuthorName != "" {
			meta.ChannelName = oembed.AuthorName
		}
		return meta
	}

	video, err := s.ytClient.GetVideoContext(ctx, videoID)
	if err != nil {
		return meta
	}
	if strings.TrimSpace(video.Title) != "" {
		meta.Title = video.Title
	}
	if strings.TrimSpace(video.Author) != "" {
		meta.ChannelName = video.Author
	}
	return meta
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (s *YouTubeService) fetchOEmbed(ctx context.Context, videoID string) (*oembedResponse, error) {
	oembedURL := "https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=" + videoID + "&format=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Status: resp.StatusCode, Body: "oEmbed lookup failed"}
	}

	var oembed oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&oembed); err != nil {
		return nil, err
	}
	return &oembed, nil
}
