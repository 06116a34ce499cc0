package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/content-crm/internal/domain"
)

// TimelineRepository stores the per-ticket audit aggregate and its
// append-only status-change log. Status changes are never updated or
// deleted individually; deleting a ticket removes its whole timeline as
// one unit.
type TimelineRepository interface {
	Create(ctx context.Context, timeline *domain.Timeline, created domain.StatusChange) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Timeline, error)
	DeleteByTicket(ctx context.Context, ticketID string) error
}

type timelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository instantiates repository.
func NewTimelineRepository(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepository{pool: pool}
}

// Create persists a fresh timeline together with its creation record.
func (r *timelineRepository) Create(ctx context.Context, timeline *domain.Timeline, created domain.StatusChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := insertTimeline(ctx, tx, timeline); err != nil {
		return err
	}
	if err := insertStatusChange(ctx, tx, timeline.TicketID, &created); err != nil {
		return err
	}
	timeline.Append(created)
	return tx.Commit(ctx)
}

func (r *timelineRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Timeline, error) {
	const aggregateQuery = `SELECT state_history, state_durations FROM timelines WHERE ticket_id=$1`

	var historyRaw, durationsRaw []byte
	if err := r.pool.QueryRow(ctx, aggregateQuery, ticketID).Scan(&historyRaw, &durationsRaw); err != nil {
		return nil, err
	}

	timeline := &domain.Timeline{TicketID: ticketID}
	if err := json.Unmarshal(historyRaw, &timeline.StateHistory); err != nil {
		return nil, fmt.Errorf("decode state history: %w", err)
	}
	if err := json.Unmarshal(durationsRaw, &timeline.StateDurations); err != nil {
		return nil, fmt.Errorf("decode state durations: %w", err)
	}

	const logQuery = `
        SELECT id, from_stage, to_stage, actor, note, is_system, created_at
        FROM status_changes WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, logQuery, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(
			&change.ID,
			&change.FromStage,
			&change.ToStage,
			&change.Actor,
			&change.Note,
			&change.System,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		timeline.Append(change)
	}
	return timeline, rows.Err()
}

func (r *timelineRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM status_changes WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM timelines WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// TransitionCommit bundles the three records a transition writes as one
// atomic unit: the ticket with its new stage and monetary fields, the
// updated timeline aggregates, and the status change to append.
type TransitionCommit struct {
	Ticket   *domain.Ticket
	Timeline *domain.Timeline
	Change   domain.StatusChange
}

// WorkflowStore applies transition commits all-or-nothing.
type WorkflowStore interface {
	CommitTransition(ctx context.Context, commit TransitionCommit) error
}

type workflowStore struct {
	pool *pgxpool.Pool
}

// NewWorkflowStore instantiates the store.
func NewWorkflowStore(pool *pgxpool.Pool) WorkflowStore {
	return &workflowStore{pool: pool}
}

// CommitTransition updates the ticket, rewrites the timeline aggregates
// and appends the status change inside a single transaction. If any
// write fails none of the three is applied.
func (s *workflowStore) CommitTransition(ctx context.Context, commit TransitionCommit) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ticket := commit.Ticket
	const ticketQuery = `
        UPDATE tickets SET stage=$1, total_cost=$2, cost_breakdown=$3, actual_revenue=$4, updated_at=$5
        WHERE id=$6`
	cmd, err := tx.Exec(ctx, ticketQuery,
		ticket.Stage,
		ticket.TotalCost,
		ticket.CostBreakdown,
		ticket.ActualRevenue,
		commit.Change.CreatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := updateTimeline(ctx, tx, commit.Timeline); err != nil {
		return err
	}
	if err := insertStatusChange(ctx, tx, ticket.ID, &commit.Change); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertTimeline(ctx context.Context, tx pgx.Tx, timeline *domain.Timeline) error {
	historyRaw, durationsRaw, err := encodeAggregates(timeline)
	if err != nil {
		return err
	}
	const query = `INSERT INTO timelines (ticket_id, state_history, state_durations) VALUES ($1,$2,$3)`
	_, err = tx.Exec(ctx, query, timeline.TicketID, historyRaw, durationsRaw)
	return err
}

func updateTimeline(ctx context.Context, tx pgx.Tx, timeline *domain.Timeline) error {
	historyRaw, durationsRaw, err := encodeAggregates(timeline)
	if err != nil {
		return err
	}
	const query = `UPDATE timelines SET state_history=$1, state_durations=$2 WHERE ticket_id=$3`
	cmd, err := tx.Exec(ctx, query, historyRaw, durationsRaw, timeline.TicketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func insertStatusChange(ctx context.Context, tx pgx.Tx, ticketID string, change *domain.StatusChange) error {
	const query = `
        INSERT INTO status_changes (ticket_id, from_stage, to_stage, actor, note, is_system, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return tx.QueryRow(ctx, query,
		ticketID,
		change.FromStage,
		change.ToStage,
		change.Actor,
		change.Note,
		change.System,
		change.CreatedAt,
	).Scan(&change.ID)
}

func encodeAggregates(timeline *domain.Timeline) ([]byte, []byte, error) {
	historyRaw, err := json.Marshal(timeline.StateHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("encode state history: %w", err)
	}
	durationsRaw, err := json.Marshal(timeline.StateDurations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode state durations: %w", err)
	}
	return historyRaw, durationsRaw, nil
}
