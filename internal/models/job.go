package models

import (
	"time"

	"github.com/google/uuid"
)

// Job tracks one asynchronous summarize request from enqueue to completion.
type Job struct {
	ID           uuid.UUID  `json:"id"`
	OwnerEmail   string     `json:"userEmail"`
	VideoURL     string     `json:"videoUrl"`
	Status       string     `json:"status"` // "pending" | "processing" | "completed" | "failed"
	SummaryID    *string    `json:"summaryId,omitempty"`
	RetryCount   int        `json:"retry_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// WebSocket message types pushed to connected clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type CompletedEvent struct {
	JobID   uuid.UUID `json:"job_id"`
	Summary *Summary  `json:"summary"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}
