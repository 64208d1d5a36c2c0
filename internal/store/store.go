// Package store holds the client-visible history of summaries for one user
// session: an ordered, most-recent-first collection backed by the remote
// archive.
package store

import (
	"context"
	"sync"

	"vidsum-backend/internal/models"
)

// HistoryFetcher loads the stored summaries for an owner identity.
// *services.ArchiveClient satisfies it.
type HistoryFetcher interface {
	FetchSummaries(ctx context.Context, ownerEmail string) ([]*models.Summary, error)
}

type Store struct {
	mu         sync.Mutex
	fetcher    HistoryFetcher
	ownerEmail string
	summaries  []*models.Summary
	loading    bool
}

func New(fetcher HistoryFetcher) *Store {
	return &Store{fetcher: fetcher}
}

// Load replaces the collection with the owner's remote history. An empty
// owner identity is a no-op: the network is never called with an empty key.
// On failure the previous contents are kept and the loading flag is cleared
// so the caller can retry.
//
// Local entries whose id is absent from the fetched snapshot are retained at
// the head of the collection: persistence is best-effort, so a refresh racing
// a recent submit must not silently drop what the user just saw.
func (s *Store) Load(ctx context.Context, ownerEmail string) error {
	if ownerEmail == "" {
		return nil
	}

	s.mu.Lock()
	s.ownerEmail = ownerEmail
	s.loading = true
	local := make([]*models.Summary, len(s.summaries))
	copy(local, s.summaries)
	s.mu.Unlock()

	fetched, err := s.fetcher.FetchSummaries(ctx, ownerEmail)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		return err
	}

	fetchedIDs := make(map[string]struct{}, len(fetched))
	for _, f := range fetched {
		fetchedIDs[f.ID] = struct{}{}
	}

	merged := make([]*models.Summary, 0, len(local)+len(fetched))
	for _, l := range local {
		if _, ok := fetchedIDs[l.ID]; !ok {
			merged = append(merged, l)
		}
	}
	merged = append(merged, fetched...)

	s.summaries = merged
	return nil
}

// Refresh re-runs Load with the last known owner identity.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	email := s.ownerEmail
	s.mu.Unlock()
	return s.Load(ctx, email)
}

// Append inserts at the head: newest first, completion order across racing
// submissions. No dedup by id.
func (s *Store) Append(summary *models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append([]*models.Summary{summary}, s.summaries...)
}

// Update merges the non-nil patch fields into the entry with the given id.
// Unknown ids are a silent no-op.
func (s *Store) Update(id string, patch models.SummaryPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.summaries {
		if entry.ID != id {
			continue
		}
		if patch.VideoTitle != nil {
			entry.VideoTitle = *patch.VideoTitle
		}
		if patch.SummaryText != nil {
			entry.SummaryText = *patch.SummaryText
		}
		if patch.Status != nil {
			entry.Status = *patch.Status
		}
		return
	}
}

// All returns a snapshot of the collection, most recent first.
func (s *Store) All() []*models.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Summary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.summaries)
}

// Loading reports whether a Load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Reset clears the collection and the remembered owner, e.g. on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerEmail = ""
	s.summaries = nil
	s.loading = false
}
