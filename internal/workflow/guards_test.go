package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/content-crm/internal/domain"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

type stubContentReader struct {
	doc   *domain.TicketContent
	calls int
}

func (s *stubContentReader) GetContent(ctx context.Context, ticketID string) (*domain.TicketContent, error) {
	s.calls++
	if s.doc != nil {
		return s.doc, nil
	}
	return &domain.TicketContent{TicketID: ticketID}, nil
}

func assigneeID(id string) *string { return &id }

func guardTicket(stage domain.Stage, assignee *string) *domain.Ticket {
	return &domain.Ticket{ID: "t1", Stage: stage, AssigneeID: assignee}
}

func rejectionMessage(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected a guard rejection")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "GUARD_REJECTED" {
		t.Fatalf("code = %s, want GUARD_REJECTED", domainErr.Code)
	}
	return domainErr.Message
}

func TestEvaluate_UnassignedTicketCannotLeaveBacklog(t *testing.T) {
	reader := &stubContentReader{}
	engine := NewGuardEngine(reader)

	err := engine.Evaluate(context.Background(), guardTicket(domain.StageBacklog, nil), &domain.Timeline{}, domain.StageInProgress)
	if got := rejectionMessage(t, err); got != "tickets cannot leave Backlog unassigned" {
		t.Errorf("message = %q", got)
	}
	if reader.calls != 0 {
		t.Errorf("content reads = %d, want 0; assignment guard fails first", reader.calls)
	}
}

func TestEvaluate_ContentRequiredBeforeDone(t *testing.T) {
	engine := NewGuardEngine(&stubContentReader{})
	ticket := guardTicket(domain.StageInternalReview, assigneeID("m1"))

	err := engine.Evaluate(context.Background(), ticket, &domain.Timeline{}, domain.StageDone)
	if got := rejectionMessage(t, err); got != "content must be submitted before moving to Done" {
		t.Errorf("message = %q", got)
	}
}

func TestEvaluate_WhitespaceContentDoesNotCount(t *testing.T) {
	reader := &stubContentReader{doc: &domain.TicketContent{TicketID: "t1", Content: "   \n\t"}}
	engine := NewGuardEngine(reader)
	ticket := guardTicket(domain.StageInternalReview, assigneeID("m1"))

	err := engine.Evaluate(context.Background(), ticket, &domain.Timeline{}, domain.StageClientReview)
	if got := rejectionMessage(t, err); got != "content must be submitted before moving to Client Review" {
		t.Errorf("message = %q", got)
	}
}

func TestEvaluate_StaleReviewRejected(t *testing.T) {
	entered := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reader := &stubContentReader{doc: &domain.TicketContent{
		TicketID: "t1",
		Content:  "draft body",
		ReviewHistory: []domain.ReviewEntry{
			{Score: 8, CreatedAt: entered.Add(-48 * time.Hour)},
		},
	}}
	engine := NewGuardEngine(reader)
	ticket := guardTicket(domain.StageInternalReview, assigneeID("m1"))
	timeline := &domain.Timeline{StateHistory: map[domain.Stage]time.Time{domain.StageInternalReview: entered}}

	err := engine.Evaluate(context.Background(), ticket, timeline, domain.StageClientReview)
	if got := rejectionMessage(t, err); got != "a new review score is required for the current review session" {
		t.Errorf("message = %q", got)
	}
}

func TestEvaluate_FreshReviewPasses(t *testing.T) {
	entered := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reader := &stubContentReader{doc: &domain.TicketContent{
		TicketID: "t1",
		Content:  "draft body",
		ReviewHistory: []domain.ReviewEntry{
			{Score: 5, CreatedAt: entered.Add(-48 * time.Hour)},
			{Score: 9, CreatedAt: entered.Add(2 * time.Hour)},
		},
	}}
	engine := NewGuardEngine(reader)
	ticket := guardTicket(domain.StageInternalReview, assigneeID("m1"))
	timeline := &domain.Timeline{StateHistory: map[domain.Stage]time.Time{domain.StageInternalReview: entered}}

	if err := engine.Evaluate(context.Background(), ticket, timeline, domain.StageClientReview); err != nil {
		t.Errorf("expected pass, got %v", err)
	}
	if reader.calls != 1 {
		t.Errorf("content reads = %d, want 1 shared across guards", reader.calls)
	}
}

func TestEvaluate_BackToInProgressNeedsFreshReviewButNotContent(t *testing.T) {
	entered := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	// No submitted content, but a fresh review: returning work to the
	// writer is allowed without a draft, not without a verdict.
	reader := &stubContentReader{doc: &domain.TicketContent{
		TicketID:      "t1",
		ReviewHistory: []domain.ReviewEntry{{Score: 3, CreatedAt: entered.Add(time.Hour)}},
	}}
	engine := NewGuardEngine(reader)
	ticket := guardTicket(domain.StageInternalReview, assigneeID("m1"))
	timeline := &domain.Timeline{StateHistory: map[domain.Stage]time.Time{domain.StageInternalReview: entered}}

	if err := engine.Evaluate(context.Background(), ticket, timeline, domain.StageInProgress); err != nil {
		t.Errorf("expected pass, got %v", err)
	}
}

func TestEvaluate_InvoicedReachableOnlyFromDone(t *testing.T) {
	reader := &stubContentReader{}
	engine := NewGuardEngine(reader)

	for _, from := range []domain.Stage{domain.StageBacklog, domain.StageInProgress, domain.StageInternalReview, domain.StageClientReview, domain.StagePaid} {
		err := engine.Evaluate(context.Background(), guardTicket(from, assigneeID("m1")), &domain.Timeline{}, domain.StageInvoiced)
		if got := rejectionMessage(t, err); got != "tickets can be invoiced only from Done" {
			t.Errorf("from %s: message = %q", from, got)
		}
	}
	if reader.calls != 0 {
		t.Errorf("content reads = %d, want 0", reader.calls)
	}

	err := engine.Evaluate(context.Background(), guardTicket(domain.StageDone, assigneeID("m1")), &domain.Timeline{}, domain.StageInvoiced)
	if err != nil {
		t.Errorf("done -> invoiced should pass, got %v", err)
	}
}

func TestEvaluate_PaidReachableOnlyFromDoneOrInvoiced(t *testing.T) {
	engine := NewGuardEngine(&stubContentReader{})

	for _, from := range []domain.Stage{domain.StageBacklog, domain.StageInProgress, domain.StageInternalReview, domain.StageClientReview} {
		err := engine.Evaluate(context.Background(), guardTicket(from, assigneeID("m1")), &domain.Timeline{}, domain.StagePaid)
		if got := rejectionMessage(t, err); got != "tickets can be marked Paid only from Done or Invoiced" {
			t.Errorf("from %s: message = %q", from, got)
		}
	}

	for _, from := range []domain.Stage{domain.StageDone, domain.StageInvoiced} {
		if err := engine.Evaluate(context.Background(), guardTicket(from, assigneeID("m1")), &domain.Timeline{}, domain.StagePaid); err != nil {
			t.Errorf("%s -> paid should pass, got %v", from, err)
		}
	}
}

func TestEvaluate_IrrelevantTransitionSkipsContentFetch(t *testing.T) {
	reader := &stubContentReader{}
	engine := NewGuardEngine(reader)
	ticket := guardTicket(domain.StageInProgress, assigneeID("m1"))

	if err := engine.Evaluate(context.Background(), ticket, &domain.Timeline{}, domain.StageInternalReview); err != nil {
		t.Errorf("expected pass, got %v", err)
	}
	if reader.calls != 0 {
		t.Errorf("content reads = %d, want 0", reader.calls)
	}
}
