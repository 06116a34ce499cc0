package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/content-crm/internal/domain"
)

// ContentRepository stores the per-ticket content subcollection and its
// review score history.
type ContentRepository interface {
	GetContent(ctx context.Context, ticketID string) (*domain.TicketContent, error)
	UpsertContent(ctx context.Context, ticketID, content string) error
	AddReview(ctx context.Context, ticketID string, entry *domain.ReviewEntry) error
}

type contentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository instantiates repository.
func NewContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &contentRepository{pool: pool}
}

// GetContent returns the content and review history for a ticket. A
// ticket with no submitted content yet yields an empty document rather
// than an error.
func (r *contentRepository) GetContent(ctx context.Context, ticketID string) (*domain.TicketContent, error) {
	doc := &domain.TicketContent{TicketID: ticketID}

	const contentQuery = `SELECT content, updated_at FROM ticket_content WHERE ticket_id=$1`
	err := r.pool.QueryRow(ctx, contentQuery, ticketID).Scan(&doc.Content, &doc.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	const reviewQuery = `
        SELECT id, score, comment, reviewer, created_at
        FROM review_entries WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, reviewQuery, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.ReviewEntry
		if err := rows.Scan(&entry.ID, &entry.Score, &entry.Comment, &entry.Reviewer, &entry.CreatedAt); err != nil {
			return nil, err
		}
		doc.ReviewHistory = append(doc.ReviewHistory, entry)
	}
	return doc, rows.Err()
}

func (r *contentRepository) UpsertContent(ctx context.Context, ticketID, content string) error {
	const query = `
        INSERT INTO ticket_content (ticket_id, content, updated_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id) DO UPDATE SET content=EXCLUDED.content, updated_at=EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, query, ticketID, content, time.Now())
	return err
}

func (r *contentRepository) AddReview(ctx context.Context, ticketID string, entry *domain.ReviewEntry) error {
	const query = `
        INSERT INTO review_entries (ticket_id, score, comment, reviewer, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.pool.QueryRow(ctx, query,
		ticketID,
		entry.Score,
		entry.Comment,
		entry.Reviewer,
		entry.CreatedAt,
	).Scan(&entry.ID)
}
