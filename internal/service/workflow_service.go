package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/content-crm/internal/domain"
	"github.com/spec-kit/content-crm/internal/events"
	"github.com/spec-kit/content-crm/internal/observability"
	"github.com/spec-kit/content-crm/internal/repository"
	"github.com/spec-kit/content-crm/internal/workflow"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// Actor is the acting user as supplied by the identity collaborator.
type Actor struct {
	ID   string
	Name string
	Role domain.Role
}

// TransitionState describes the terminal or suspended state of one
// transition attempt.
type TransitionState string

const (
	TransitionCommitted     TransitionState = "committed"
	TransitionRejected      TransitionState = "rejected"
	TransitionAwaitingInput TransitionState = "awaiting_input"
	TransitionUnchanged     TransitionState = "unchanged"
	TransitionAbandoned     TransitionState = "abandoned"
)

// TransitionOutcome is what a transition attempt resolves to. Rejected
// outcomes carry the user-facing reason; awaiting-input outcomes carry
// the resumption token and the kind of figure required.
type TransitionOutcome struct {
	State  TransitionState
	Ticket *domain.Ticket
	Reason string
	Token  string
	Input  repository.PendingInputKind
}

// WorkflowService orchestrates a single transition attempt: permission
// check, ordered guards, monetary input resolution, atomic commit,
// best-effort notification.
type WorkflowService struct {
	tickets    repository.TicketRepository
	members    repository.MemberRepository
	clients    repository.ClientRepository
	timelines  repository.TimelineRepository
	store      repository.WorkflowStore
	pending    repository.PendingTransitionStore
	guards     *workflow.GuardEngine
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	TicketRepo   repository.TicketRepository
	MemberRepo   repository.MemberRepository
	ClientRepo   repository.ClientRepository
	ContentRepo  workflow.ContentReader
	TimelineRepo repository.TimelineRepository
	Store        repository.WorkflowStore
	PendingStore repository.PendingTransitionStore
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		tickets:    deps.TicketRepo,
		members:    deps.MemberRepo,
		clients:    deps.ClientRepo,
		timelines:  deps.TimelineRepo,
		store:      deps.Store,
		pending:    deps.PendingStore,
		guards:     workflow.NewGuardEngine(deps.ContentRepo),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestTransition runs one transition attempt for (ticket, target).
// It resolves to a committed, rejected, unchanged or awaiting-input
// outcome; only a commit writes anything.
func (s *WorkflowService) RequestTransition(ctx context.Context, actor Actor, ticketID string, target domain.Stage) (*TransitionOutcome, error) {
	if !target.IsValid() {
		return nil, apperrors.NewValidationError("unknown stage", map[string]any{"stage": target})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	// Requesting the current stage is a no-op: no status change, no
	// duration update.
	if ticket.Stage == target {
		return &TransitionOutcome{State: TransitionUnchanged, Ticket: ticket}, nil
	}

	// Authorization runs before any guard so an unauthorized actor
	// never observes content-dependent rejection reasons.
	if err := workflow.AuthorizeTransition(actor.Role, ticket.Stage, target); err != nil {
		s.recordRejection(target)
		return rejectedOutcome(ticket, err), nil
	}

	timeline, err := s.timelines.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.guards.Evaluate(ctx, ticket, timeline, target); err != nil {
		if apperrors.IsRejection(err) {
			s.recordRejection(target)
			return rejectedOutcome(ticket, err), nil
		}
		return nil, err
	}

	switch {
	case target == domain.StageDone:
		return s.resolveCompletion(ctx, actor, ticket, timeline)
	case target.IsMonetization():
		return s.resolveMonetization(ctx, actor, ticket, timeline, target)
	default:
		return s.commit(ctx, actor, ticket, timeline, target, nil, nil)
	}
}

// resolveCompletion decides whether moving to Done can commit now (all
// assigned parties fixed-rate) or must await an hours figure.
func (s *WorkflowService) resolveCompletion(ctx context.Context, actor Actor, ticket *domain.Ticket, timeline *domain.Timeline) (*TransitionOutcome, error) {
	assignee, reviewer, err := s.loadParties(ctx, ticket)
	if err != nil {
		return nil, err
	}

	if workflow.HoursRequired(assignee, reviewer) {
		return s.suspend(ctx, actor, ticket, domain.StageDone, repository.PendingInputHours)
	}

	breakdown := s.completionCost(ticket, assignee, reviewer, workflow.Hours{})
	return s.commit(ctx, actor, ticket, timeline, domain.StageDone, &breakdown, nil)
}

// resolveMonetization applies the client's flat rate automatically or
// suspends awaiting a pricing figure.
func (s *WorkflowService) resolveMonetization(ctx context.Context, actor Actor, ticket *domain.Ticket, timeline *domain.Timeline, target domain.Stage) (*TransitionOutcome, error) {
	client, err := s.clients.GetByID(ctx, ticket.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("client", map[string]any{"client_id": ticket.ClientID})
		}
		return nil, apperrors.MapError(err)
	}

	revenue, auto := workflow.MonetizationRevenue(client)
	if !auto {
		return s.suspend(ctx, actor, ticket, target, repository.PendingInputPricing)
	}
	return s.commit(ctx, actor, ticket, timeline, target, nil, &revenue)
}

// SupplyHours resumes a transition suspended on the hours dialog. The
// resuming actor is re-authorized against the target stage; holding the
// token does not confer the right to commit.
func (s *WorkflowService) SupplyHours(ctx context.Context, actor Actor, token string, assigneeHours, reviewerHours float64) (*TransitionOutcome, error) {
	pending, err := s.loadPending(ctx, token, repository.PendingInputHours)
	if err != nil {
		return nil, err
	}
	if assigneeHours < 0 || reviewerHours < 0 {
		return nil, apperrors.NewValidationError("hours must not be negative", nil)
	}

	ticket, timeline, outcome, err := s.reloadForResume(ctx, pending)
	if err != nil || outcome != nil {
		return outcome, err
	}

	if err := workflow.AuthorizeTransition(actor.Role, ticket.Stage, pending.TargetStage); err != nil {
		s.recordRejection(pending.TargetStage)
		return rejectedOutcome(ticket, err), nil
	}

	assignee, reviewer, err := s.loadParties(ctx, ticket)
	if err != nil {
		return nil, err
	}
	breakdown := s.completionCost(ticket, assignee, reviewer, workflow.Hours{
		Assignee: assigneeHours,
		Reviewer: reviewerHours,
	})

	result, err := s.commit(ctx, actor, ticket, timeline, pending.TargetStage, &breakdown, nil)
	if err != nil {
		return nil, err
	}
	s.discardPending(ctx, token)
	return result, nil
}

// SupplyPricing resumes a transition suspended on the pricing dialog.
// The resuming actor is re-authorized against the target stage; holding
// the token does not confer the right to commit.
func (s *WorkflowService) SupplyPricing(ctx context.Context, actor Actor, token string, actualRevenue float64) (*TransitionOutcome, error) {
	pending, err := s.loadPending(ctx, token, repository.PendingInputPricing)
	if err != nil {
		return nil, err
	}
	if actualRevenue < 0 {
		return nil, apperrors.NewValidationError("revenue must not be negative", nil)
	}

	ticket, timeline, outcome, err := s.reloadForResume(ctx, pending)
	if err != nil || outcome != nil {
		return outcome, err
	}

	if err := workflow.AuthorizeTransition(actor.Role, ticket.Stage, pending.TargetStage); err != nil {
		s.recordRejection(pending.TargetStage)
		return rejectedOutcome(ticket, err), nil
	}

	result, err := s.commit(ctx, actor, ticket, timeline, pending.TargetStage, nil, &actualRevenue)
	if err != nil {
		return nil, err
	}
	s.discardPending(ctx, token)
	return result, nil
}

// CancelPending abandons a suspended transition. Nothing was persisted,
// so cancellation only drops the pending record.
func (s *WorkflowService) CancelPending(ctx context.Context, token string) (*TransitionOutcome, error) {
	pending, err := s.pending.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrPendingNotFound) {
			return nil, apperrors.NewNotFound("pending transition", map[string]any{"token": token})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.pending.Delete(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket, err := s.tickets.GetByID(ctx, pending.TicketID)
	if err != nil {
		return &TransitionOutcome{State: TransitionAbandoned}, nil
	}
	return &TransitionOutcome{State: TransitionAbandoned, Ticket: ticket}, nil
}

func (s *WorkflowService) suspend(ctx context.Context, actor Actor, ticket *domain.Ticket, target domain.Stage, input repository.PendingInputKind) (*TransitionOutcome, error) {
	pending := &repository.PendingTransition{
		Token:       uuid.NewString(),
		TicketID:    ticket.ID,
		TargetStage: target,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Input:       input,
		CreatedAt:   s.now(),
	}
	if err := s.pending.Save(ctx, pending); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TransitionOutcome{
		State:  TransitionAwaitingInput,
		Ticket: ticket,
		Token:  pending.Token,
		Input:  input,
	}, nil
}

func (s *WorkflowService) loadPending(ctx context.Context, token string, want repository.PendingInputKind) (*repository.PendingTransition, error) {
	pending, err := s.pending.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrPendingNotFound) {
			return nil, apperrors.NewNotFound("pending transition", map[string]any{"token": token})
		}
		return nil, apperrors.MapError(err)
	}
	if pending.Input != want {
		return nil, apperrors.NewValidationError("pending transition awaits a different input", map[string]any{
			"expected": pending.Input,
		})
	}
	return pending, nil
}

// reloadForResume refreshes ticket and timeline state before a resumed
// commit. A ticket already moved to the pending target (last-write-wins
// on concurrent edits) resolves to an unchanged outcome.
func (s *WorkflowService) reloadForResume(ctx context.Context, pending *repository.PendingTransition) (*domain.Ticket, *domain.Timeline, *TransitionOutcome, error) {
	ticket, err := s.tickets.GetByID(ctx, pending.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": pending.TicketID})
		}
		return nil, nil, nil, apperrors.MapError(err)
	}
	if ticket.Stage == pending.TargetStage {
		s.discardPending(ctx, pending.Token)
		return nil, nil, &TransitionOutcome{State: TransitionUnchanged, Ticket: ticket}, nil
	}
	timeline, err := s.timelines.GetByTicket(ctx, pending.TicketID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return ticket, timeline, nil, nil
}

// commit applies the transition as one atomic unit and then notifies
// best-effort through the dispatcher.
func (s *WorkflowService) commit(ctx context.Context, actor Actor, ticket *domain.Ticket, timeline *domain.Timeline, target domain.Stage, breakdown *domain.CostBreakdown, revenue *float64) (*TransitionOutcome, error) {
	now := s.now()
	from := ticket.Stage

	timeline.RecordTransition(from, target, now)

	ticket.Stage = target
	ticket.UpdatedAt = now
	if breakdown != nil {
		total := breakdown.TotalCost
		ticket.CostBreakdown = breakdown
		ticket.TotalCost = &total
	}
	if revenue != nil {
		ticket.ActualRevenue = revenue
	}

	change := domain.StatusChange{
		FromStage: &from,
		ToStage:   target,
		Actor:     actor.Name,
		CreatedAt: now,
	}

	if err := s.store.CommitTransition(ctx, repository.TransitionCommit{
		Ticket:   ticket,
		Timeline: timeline,
		Change:   change,
	}); err != nil {
		return nil, apperrors.NewCommitFailure(err)
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(string(from), string(target))
	}
	s.logger.Info("transition committed",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor", actor.Name))

	s.publishStageChanged(ctx, actor, ticket, from, target)
	return &TransitionOutcome{State: TransitionCommitted, Ticket: ticket}, nil
}

func (s *WorkflowService) publishStageChanged(ctx context.Context, actor Actor, ticket *domain.Ticket, from, to domain.Stage) {
	if s.dispatcher == nil {
		return
	}
	payload := events.TicketStageChangedPayload{
		Title:     ticket.Title,
		FromStage: from,
		ToStage:   to,
		TotalCost: ticket.TotalCost,
		Revenue:   ticket.ActualRevenue,
	}
	if client, err := s.clients.GetByID(ctx, ticket.ClientID); err == nil {
		payload.ClientName = client.Name
	}
	if ticket.AssigneeID != nil {
		if assignee, err := s.members.GetByID(ctx, *ticket.AssigneeID); err == nil {
			payload.Assignee = assignee.Name
		}
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketStageChanged,
		TicketID:  ticket.ID,
		Actor:     events.Actor{MemberID: actor.ID, Name: actor.Name, Role: actor.Role},
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func (s *WorkflowService) loadParties(ctx context.Context, ticket *domain.Ticket) (*domain.TeamMember, *domain.TeamMember, error) {
	var assignee, reviewer *domain.TeamMember
	if ticket.AssigneeID != nil && *ticket.AssigneeID != "" {
		member, err := s.members.GetByID(ctx, *ticket.AssigneeID)
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
		assignee = member
	}
	if ticket.ReviewerID != nil && *ticket.ReviewerID != "" {
		member, err := s.members.GetByID(ctx, *ticket.ReviewerID)
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
		reviewer = member
	}
	return assignee, reviewer, nil
}

func (s *WorkflowService) completionCost(ticket *domain.Ticket, assignee, reviewer *domain.TeamMember, hours workflow.Hours) domain.CostBreakdown {
	breakdown, warnings := workflow.CompletionCost(ticket.ContentType, assignee, reviewer, hours)
	for _, warning := range warnings {
		// Likely a misconfigured compensation structure upstream.
		s.logger.Warn("fixed rate fallback",
			zap.String("ticket_id", ticket.ID),
			zap.String("detail", warning))
	}
	return breakdown
}

func (s *WorkflowService) discardPending(ctx context.Context, token string) {
	if err := s.pending.Delete(ctx, token); err != nil {
		s.logger.Warn("failed to delete pending transition", zap.String("token", token), zap.Error(err))
	}
}

func (s *WorkflowService) recordRejection(target domain.Stage) {
	if s.metrics != nil {
		s.metrics.RecordRejection(string(target))
	}
}

func rejectedOutcome(ticket *domain.Ticket, err error) *TransitionOutcome {
	return &TransitionOutcome{
		State:  TransitionRejected,
		Ticket: ticket,
		Reason: apperrors.ToDomainError(err).Message,
	}
}
