package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidsum-backend/internal/models"
)

type SummaryRepo struct {
	pool *pgxpool.Pool
}

func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{pool: pool}
}

// Create inserts a stored summary. When the caller has no id (direct
// /api/summaries writes) a fresh uuid is assigned; webhook-generated
// "job-..." ids are kept so the client can correlate.
func (r *SummaryRepo) Create(ctx context.Context, s *models.Summary) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = models.StatusCompleted
	}

	query := `INSERT INTO summaries (id, owner_email, video_url, video_id, video_title, video_thumbnail, summary_text, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.OwnerEmail, s.VideoURL, s.VideoID, s.VideoTitle, s.VideoThumbnail, s.SummaryText, s.Status,
	).Scan(&s.CreatedAt)
}

// ListByEmail returns the owner's summaries, newest first. The remote store
// only holds completed items, so status is not filtered.
func (r *SummaryRepo) ListByEmail(ctx context.Context, ownerEmail string) ([]*models.Summary, error) {
	query := `SELECT id, owner_email, video_url, video_id, video_title, video_thumbnail, summary_text, status, created_at
		FROM summaries WHERE owner_email = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*models.Summary{}
	for rows.Next() {
		s := &models.Summary{}
		err := rows.Scan(
			&s.ID, &s.OwnerEmail, &s.VideoURL, &s.VideoID, &s.VideoTitle,
			&s.VideoThumbnail, &s.SummaryText, &s.Status, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func (r *SummaryRepo) GetByID(ctx context.Context, id string) (*models.Summary, error) {
	s := &models.Summary{}
	query := `SELECT id, owner_email, video_url, video_id, video_title, video_thumbnail, summary_text, status, created_at
		FROM summaries WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.OwnerEmail, &s.VideoURL, &s.VideoID, &s.VideoTitle,
		&s.VideoThumbnail, &s.SummaryText, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
