package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/content-crm/internal/domain"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// ContentReader exposes the read-only content subcollection queries the
// guards need.
type ContentReader interface {
	GetContent(ctx context.Context, ticketID string) (*domain.TicketContent, error)
}

// GuardEngine evaluates transition preconditions in a fixed order; the
// first failing guard wins and its message is surfaced to the actor.
type GuardEngine struct {
	content ContentReader
}

// NewGuardEngine constructs the engine.
func NewGuardEngine(content ContentReader) *GuardEngine {
	return &GuardEngine{content: content}
}

// Evaluate runs the ordered guards for a candidate transition. A nil
// return means the ticket is clear to commit (pending any monetary
// input the orchestrator still requires).
func (g *GuardEngine) Evaluate(ctx context.Context, ticket *domain.Ticket, timeline *domain.Timeline, target domain.Stage) error {
	if err := monetizationEntryGuard(ticket.Stage, target); err != nil {
		return err
	}
	if err := assignmentGuard(ticket, target); err != nil {
		return err
	}

	needsContent := contentSubmissionApplies(ticket.Stage, target)
	needsFreshReview := freshReviewApplies(ticket.Stage, target)
	if !needsContent && !needsFreshReview {
		return nil
	}

	content, err := g.content.GetContent(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	if needsContent {
		if err := contentSubmissionGuard(content, target); err != nil {
			return err
		}
	}
	if needsFreshReview {
		if err := freshReviewGuard(content, timeline); err != nil {
			return err
		}
	}
	return nil
}

// monetizationEntryGuard: the monetization stages sit behind completion.
// Invoiced is reachable only from Done; Paid only from Done or Invoiced.
func monetizationEntryGuard(from, to domain.Stage) error {
	switch to {
	case domain.StageInvoiced:
		if from != domain.StageDone {
			return apperrors.NewGuardRejection("tickets can be invoiced only from Done", nil)
		}
	case domain.StagePaid:
		if from != domain.StageDone && from != domain.StageInvoiced {
			return apperrors.NewGuardRejection("tickets can be marked Paid only from Done or Invoiced", nil)
		}
	}
	return nil
}

// assignmentGuard: a ticket may not leave Backlog without an assignee.
func assignmentGuard(ticket *domain.Ticket, target domain.Stage) error {
	if target == domain.StageBacklog {
		return nil
	}
	if ticket.AssigneeID == nil || strings.TrimSpace(*ticket.AssigneeID) == "" {
		return apperrors.NewGuardRejection("tickets cannot leave Backlog unassigned", nil)
	}
	return nil
}

func contentSubmissionApplies(from, to domain.Stage) bool {
	return from == domain.StageInternalReview &&
		(to == domain.StageClientReview || to == domain.StageDone)
}

// contentSubmissionGuard: moving out of internal review towards the
// client or completion requires submitted content.
func contentSubmissionGuard(content *domain.TicketContent, target domain.Stage) error {
	if content != nil && strings.TrimSpace(content.Content) != "" {
		return nil
	}
	return apperrors.NewGuardRejection(
		fmt.Sprintf("content must be submitted before moving to %s", target.Label()), nil)
}

func freshReviewApplies(from, to domain.Stage) bool {
	return from == domain.StageInternalReview &&
		(to == domain.StageInProgress || to == domain.StageClientReview)
}

// freshReviewGuard: leaving internal review requires a review score
// recorded after the ticket most recently entered internal review. A
// score from a previous review visit does not count.
func freshReviewGuard(content *domain.TicketContent, timeline *domain.Timeline) error {
	enteredAt, ok := timeline.EntryTime(domain.StageInternalReview)
	if ok && content.HasReviewAfter(enteredAt) {
		return nil
	}
	return apperrors.NewGuardRejection(
		"a new review score is required for the current review session", nil)
}
