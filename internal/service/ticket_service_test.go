package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/content-crm/internal/domain"
	"github.com/spec-kit/content-crm/internal/events"
	"github.com/spec-kit/content-crm/internal/repository"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

type fakeContentRepo struct {
	docs map[string]*domain.TicketContent
}

func (f *fakeContentRepo) GetContent(ctx context.Context, ticketID string) (*domain.TicketContent, error) {
	if doc, ok := f.docs[ticketID]; ok {
		return doc, nil
	}
	return &domain.TicketContent{TicketID: ticketID}, nil
}

func (f *fakeContentRepo) UpsertContent(ctx context.Context, ticketID, content string) error {
	doc, ok := f.docs[ticketID]
	if !ok {
		doc = &domain.TicketContent{TicketID: ticketID}
		f.docs[ticketID] = doc
	}
	doc.Content = content
	doc.UpdatedAt = time.Now()
	return nil
}

func (f *fakeContentRepo) AddReview(ctx context.Context, ticketID string, entry *domain.ReviewEntry) error {
	doc, ok := f.docs[ticketID]
	if !ok {
		doc = &domain.TicketContent{TicketID: ticketID}
		f.docs[ticketID] = doc
	}
	doc.ReviewHistory = append(doc.ReviewHistory, *entry)
	return nil
}

type ticketFixture struct {
	svc       *TicketService
	tickets   *fakeTicketRepo
	clients   *fakeClientRepo
	content   *fakeContentRepo
	timelines *fakeTimelineRepo
}

func newTicketFixture() *ticketFixture {
	f := &ticketFixture{
		tickets:   &fakeTicketRepo{tickets: map[string]domain.Ticket{}},
		clients:   &fakeClientRepo{clients: map[string]domain.Client{}},
		content:   &fakeContentRepo{docs: map[string]*domain.TicketContent{}},
		timelines: &fakeTimelineRepo{timelines: map[string]*domain.Timeline{}},
	}
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:   f.tickets,
		MemberRepo:   &fakeMemberRepo{members: map[string]domain.TeamMember{}},
		ClientRepo:   f.clients,
		ContentRepo:  f.content,
		TimelineRepo: f.timelines,
		Dispatcher:   events.NewInMemoryDispatcher(),
	})
	return f
}

var contributor = Actor{ID: "c1", Name: "Casey", Role: domain.RoleContributor}

func TestCreateTicket_ContributorForbidden(t *testing.T) {
	f := newTicketFixture()

	_, err := f.svc.CreateTicket(context.Background(), contributor, TicketCreateInput{Title: "Post", ClientID: "client-1"})
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN", apperrors.ToDomainError(err).Code)
	}
}

func TestCreateTicket_InactiveClientRejected(t *testing.T) {
	f := newTicketFixture()
	f.clients.clients["client-1"] = domain.Client{ID: "client-1", Name: "Acme", Active: false}

	_, err := f.svc.CreateTicket(context.Background(), manager, TicketCreateInput{Title: "Post", ClientID: "client-1"})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Errorf("code = %s, want CONFLICT", apperrors.ToDomainError(err).Code)
	}
}

func TestCreateTicket_SameAssigneeReviewerRejected(t *testing.T) {
	f := newTicketFixture()
	f.clients.clients["client-1"] = domain.Client{ID: "client-1", Name: "Acme", Active: true}
	member := "m1"

	_, err := f.svc.CreateTicket(context.Background(), manager, TicketCreateInput{
		Title:      "Post",
		ClientID:   "client-1",
		AssigneeID: &member,
		ReviewerID: &member,
	})
	if err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestCreateTicket_StartsInBacklogWithTimeline(t *testing.T) {
	f := newTicketFixture()
	f.clients.clients["client-1"] = domain.Client{ID: "client-1", Name: "Acme", Active: true}

	ticket, err := f.svc.CreateTicket(context.Background(), manager, TicketCreateInput{
		Title:       "  Launch post  ",
		ContentType: domain.ContentTypeBlog,
		ClientID:    "client-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Stage != domain.StageBacklog {
		t.Errorf("stage = %s, want backlog", ticket.Stage)
	}
	if ticket.Title != "Launch post" {
		t.Errorf("title = %q, want trimmed", ticket.Title)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Errorf("priority = %s, want default medium", ticket.Priority)
	}

	timeline := f.timelines.timelines[ticket.ID]
	if timeline == nil {
		t.Fatal("timeline should be created with the ticket")
	}
	if len(timeline.Log) != 1 || !timeline.Log[0].System {
		t.Errorf("log = %+v, want one system creation entry", timeline.Log)
	}
	if _, ok := timeline.StateHistory[domain.StageBacklog]; !ok {
		t.Error("state history should record the backlog entry")
	}
}

func TestUpdateTicket_MergedEditCannotCollideAssigneeReviewer(t *testing.T) {
	f := newTicketFixture()
	alice := "alice"
	bob := "bob"
	f.tickets.tickets["t1"] = domain.Ticket{ID: "t1", Title: "Post", ClientID: "client-1", Stage: domain.StageBacklog, AssigneeID: &alice, ReviewerID: &bob}

	// Moving the reviewer onto the current assignee must fail even
	// though the request touches only one field.
	_, err := f.svc.UpdateTicket(context.Background(), manager, "t1", TicketUpdateInput{ReviewerID: &alice})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if got := f.tickets.tickets["t1"].ReviewerID; got == nil || *got != bob {
		t.Error("reviewer should be unchanged after a rejected edit")
	}
}

func TestUpdateTicket_ContributorForbidden(t *testing.T) {
	f := newTicketFixture()
	f.tickets.tickets["t1"] = domain.Ticket{ID: "t1", Title: "Post", Stage: domain.StageBacklog}

	_, err := f.svc.UpdateTicket(context.Background(), contributor, "t1", TicketUpdateInput{})
	if err == nil {
		t.Fatal("expected forbidden")
	}
}

func TestBoard_NonAdminSeesMonetizationUnderDone(t *testing.T) {
	f := newTicketFixture()
	f.tickets.tickets["t1"] = domain.Ticket{ID: "t1", Stage: domain.StageInvoiced}
	f.tickets.tickets["t2"] = domain.Ticket{ID: "t2", Stage: domain.StagePaid}
	f.tickets.tickets["t3"] = domain.Ticket{ID: "t3", Stage: domain.StageInProgress}

	columns, err := f.svc.Board(context.Background(), manager, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(columns) != 5 {
		t.Fatalf("columns = %d, want 5 (no invoiced or paid for managers)", len(columns))
	}
	for _, column := range columns {
		if column.Stage.IsMonetization() {
			t.Errorf("manager board should not contain %s column", column.Stage)
		}
		if column.Stage == domain.StageDone && len(column.Tickets) != 2 {
			t.Errorf("done column has %d tickets, want 2 merged", len(column.Tickets))
		}
	}
}

func TestBoard_AdminSeesAllColumns(t *testing.T) {
	f := newTicketFixture()
	f.tickets.tickets["t1"] = domain.Ticket{ID: "t1", Stage: domain.StageInvoiced}

	columns, err := f.svc.Board(context.Background(), admin, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(columns) != len(domain.Stages) {
		t.Fatalf("columns = %d, want %d", len(columns), len(domain.Stages))
	}
	for _, column := range columns {
		if column.Stage == domain.StageInvoiced && len(column.Tickets) != 1 {
			t.Errorf("invoiced column has %d tickets, want 1", len(column.Tickets))
		}
	}
}

func TestAddReview_ScoreBounds(t *testing.T) {
	f := newTicketFixture()
	f.tickets.tickets["t1"] = domain.Ticket{ID: "t1", Stage: domain.StageInternalReview}

	if _, err := f.svc.AddReview(context.Background(), admin, "t1", 0, ""); err == nil {
		t.Error("score 0 should be rejected")
	}
	if _, err := f.svc.AddReview(context.Background(), admin, "t1", 11, ""); err == nil {
		t.Error("score 11 should be rejected")
	}
	entry, err := f.svc.AddReview(context.Background(), admin, "t1", 7, "solid draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Reviewer != admin.Name {
		t.Errorf("reviewer = %q, want %q", entry.Reviewer, admin.Name)
	}
	if len(f.content.docs["t1"].ReviewHistory) != 1 {
		t.Errorf("history = %d entries, want 1", len(f.content.docs["t1"].ReviewHistory))
	}
}
