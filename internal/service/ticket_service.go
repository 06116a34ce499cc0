package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/content-crm/internal/domain"
	"github.com/spec-kit/content-crm/internal/events"
	"github.com/spec-kit/content-crm/internal/repository"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// TicketService manages ticket lifecycle outside of stage transitions:
// creation, field edits, privileged deletion and board queries.
type TicketService struct {
	tickets    repository.TicketRepository
	members    repository.MemberRepository
	clients    repository.ClientRepository
	content    repository.ContentRepository
	timelines  repository.TimelineRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	MemberRepo   repository.MemberRepository
	ClientRepo   repository.ClientRepository
	ContentRepo  repository.ContentRepository
	TimelineRepo repository.TimelineRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title            string
	ContentType      domain.ContentType
	Priority         domain.TicketPriority
	ClientID         string
	AssigneeID       *string
	ReviewerID       *string
	DueDate          *time.Time
	EstimatedRevenue *float64
}

// TicketUpdateInput describes a field edit. Nil members leave the field
// untouched.
type TicketUpdateInput struct {
	Title      *string
	Priority   *domain.TicketPriority
	AssigneeID *string
	ReviewerID *string
	DueDate    *time.Time
}

// BoardColumn is one kanban column as presented to a role.
type BoardColumn struct {
	Stage   domain.Stage
	Tickets []domain.Ticket
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		members:    deps.MemberRepo,
		clients:    deps.ClientRepo,
		content:    deps.ContentRepo,
		timelines:  deps.TimelineRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket creates a ticket in Backlog together with its timeline.
// Only managers and admins create tickets.
func (s *TicketService) CreateTicket(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
		return nil, apperrors.NewForbidden("insufficient role to create tickets")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if err := domain.ValidateAssignment(input.AssigneeID, input.ReviewerID); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	client, err := s.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("client", map[string]any{"client_id": input.ClientID})
		}
		return nil, apperrors.MapError(err)
	}
	if !client.Active {
		return nil, apperrors.NewConflict("client inactive", map[string]any{"client_id": client.ID})
	}

	ticket := &domain.Ticket{
		Title:            strings.TrimSpace(input.Title),
		ContentType:      input.ContentType,
		Priority:         input.Priority,
		AssigneeID:       normalizeID(input.AssigneeID),
		ReviewerID:       normalizeID(input.ReviewerID),
		ClientID:         input.ClientID,
		Stage:            domain.StageBacklog,
		DueDate:          input.DueDate,
		EstimatedRevenue: input.EstimatedRevenue,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	createdAt := ticket.CreatedAt
	timeline := domain.NewTimeline(ticket.ID, domain.StageBacklog, createdAt)
	created := domain.StatusChange{
		ToStage:   domain.StageBacklog,
		Actor:     actor.Name,
		System:    true,
		CreatedAt: createdAt,
	}
	if err := s.timelines.Create(ctx, timeline, created); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		Title:       ticket.Title,
		ContentType: ticket.ContentType,
		Priority:    ticket.Priority,
		ClientID:    ticket.ClientID,
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its timeline.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, *domain.Timeline, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	timeline, err := s.timelines.GetByTicket(ctx, ticketID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, timeline, nil
}

// UpdateTicket applies a field edit, enforcing the assignee/reviewer
// identity invariant at edit time.
func (s *TicketService) UpdateTicket(ctx context.Context, actor Actor, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	if actor.Role == domain.RoleContributor {
		return nil, apperrors.NewForbidden("contributors cannot edit tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		ticket.AssigneeID = normalizeID(input.AssigneeID)
	}
	if input.ReviewerID != nil {
		ticket.ReviewerID = normalizeID(input.ReviewerID)
	}
	if input.DueDate != nil {
		ticket.DueDate = input.DueDate
	}

	if err := domain.ValidateAssignment(ticket.AssigneeID, ticket.ReviewerID); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// DeleteTicket removes a ticket and its whole timeline as one unit.
// Admin only; the audit log is removed, never edited.
func (s *TicketService) DeleteTicket(ctx context.Context, actor Actor, ticketID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins can delete tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	if err := s.timelines.DeleteByTicket(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.EventTicketDeleted, ticketID, events.TicketDeletedPayload{Title: ticket.Title})
	return nil
}

// Board groups tickets into kanban columns for the actor's role.
// Non-admins see invoiced and paid tickets merged under Done and never
// see the monetization columns.
func (s *TicketService) Board(ctx context.Context, actor Actor, filter repository.TicketFilter) ([]BoardColumn, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byStage := make(map[domain.Stage][]domain.Ticket)
	for _, ticket := range tickets {
		stage := domain.BoardStage(actor.Role, ticket.Stage)
		byStage[stage] = append(byStage[stage], ticket)
	}

	columns := make([]BoardColumn, 0, len(domain.Stages))
	for _, stage := range domain.Stages {
		if stage.IsMonetization() && actor.Role != domain.RoleAdmin {
			continue
		}
		columns = append(columns, BoardColumn{Stage: stage, Tickets: byStage[stage]})
	}
	return columns, nil
}

// SubmitContent stores the drafted content for a ticket.
func (s *TicketService) SubmitContent(ctx context.Context, actor Actor, ticketID, content string) error {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	if err := s.content.UpsertContent(ctx, ticketID, content); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// AddReview records a review score for the current review session.
func (s *TicketService) AddReview(ctx context.Context, actor Actor, ticketID string, score int, comment string) (*domain.ReviewEntry, error) {
	if score < 1 || score > 10 {
		return nil, apperrors.NewValidationError("score must be between 1 and 10", nil)
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	entry := &domain.ReviewEntry{
		Score:     score,
		Comment:   comment,
		Reviewer:  actor.Name,
		CreatedAt: s.now(),
	}
	if err := s.content.AddReview(ctx, ticketID, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

func (s *TicketService) publish(ctx context.Context, actor Actor, eventType events.EventType, ticketID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.Actor{MemberID: actor.ID, Name: actor.Name, Role: actor.Role},
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
