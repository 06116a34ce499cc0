package handlers

import (
	"testing"

	"github.com/spec-kit/content-crm/internal/domain"
)

func TestBoardTicketSummary_MasksMonetizationStagesForNonAdmins(t *testing.T) {
	invoiced := &domain.Ticket{ID: "t1", Stage: domain.StageInvoiced}
	paid := &domain.Ticket{ID: "t2", Stage: domain.StagePaid}

	for _, role := range []domain.Role{domain.RoleManager, domain.RoleContributor} {
		if got := boardTicketSummary(role, invoiced).Stage; got != domain.StageDone {
			t.Errorf("%s view of invoiced ticket = %s, want done", role, got)
		}
		if got := boardTicketSummary(role, paid).Stage; got != domain.StageDone {
			t.Errorf("%s view of paid ticket = %s, want done", role, got)
		}
	}
}

func TestBoardTicketSummary_AdminSeesAuthoritativeStage(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", Stage: domain.StageInvoiced}
	if got := boardTicketSummary(domain.RoleAdmin, ticket).Stage; got != domain.StageInvoiced {
		t.Errorf("admin view = %s, want invoiced", got)
	}
}

func TestBoardTicketSummary_NonMonetizationStagesUnchanged(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", Stage: domain.StageInProgress}
	if got := boardTicketSummary(domain.RoleContributor, ticket).Stage; got != domain.StageInProgress {
		t.Errorf("contributor view = %s, want in_progress", got)
	}
}
