package services

import "fmt"

// Error kinds crossing the service boundary. Handlers map these to HTTP
// codes; nothing here is fatal to the process.

// ValidationError rejects bad input before any network call is made.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// RequestError means the summarizer webhook failed: a non-2xx status, an
// unparsable body, or a transport-level error (Status is 0 for the latter).
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("summarize request failed: %s", e.Body)
	}
	return fmt.Sprintf("summarize request failed with status %d: %s", e.Status, e.Body)
}

// PersistError means the persistence endpoint rejected a write. The summary
// the write was mirroring stays visible; callers log and move on.
type PersistError struct {
	Status int
	Body   string
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save summary (status %d): %s", e.Status, e.Body)
}

// FetchError means a history load failed; the store keeps its previous
// contents.
type FetchError struct{ Message string }

func (e *FetchError) Error() string { return e.Message }

// NotFoundError is returned for lookups of rows that do not exist.
type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }
