package workflow

import (
	"testing"

	"github.com/spec-kit/content-crm/internal/domain"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

func TestCanInitiateTransition_Admin(t *testing.T) {
	for _, from := range domain.Stages {
		for _, to := range domain.Stages {
			if !CanInitiateTransition(domain.RoleAdmin, from, to) {
				t.Errorf("admin should initiate %s -> %s", from, to)
			}
		}
	}
}

func TestCanInitiateTransition_Manager(t *testing.T) {
	for _, from := range domain.Stages {
		for _, to := range domain.Stages {
			got := CanInitiateTransition(domain.RoleManager, from, to)
			want := !to.IsMonetization()
			if got != want {
				t.Errorf("manager %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanInitiateTransition_Contributor(t *testing.T) {
	for _, from := range domain.Stages {
		for _, to := range domain.Stages {
			if CanInitiateTransition(domain.RoleContributor, from, to) {
				t.Errorf("contributor should never initiate %s -> %s", from, to)
			}
		}
	}
}

func TestAuthorizeTransition_ManagerMonetizationMessage(t *testing.T) {
	err := AuthorizeTransition(domain.RoleManager, domain.StageDone, domain.StageInvoiced)
	if err == nil {
		t.Fatal("expected denial")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "TRANSITION_FORBIDDEN" {
		t.Errorf("code = %s, want TRANSITION_FORBIDDEN", domainErr.Code)
	}
	if domainErr.Message != MsgMonetizationDenied {
		t.Errorf("message = %q, want %q", domainErr.Message, MsgMonetizationDenied)
	}
}

func TestAuthorizeTransition_ContributorMessage(t *testing.T) {
	err := AuthorizeTransition(domain.RoleContributor, domain.StageBacklog, domain.StageInProgress)
	if err == nil {
		t.Fatal("expected denial")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Message != MsgContributorDenied {
		t.Errorf("message = %q, want %q", domainErr.Message, MsgContributorDenied)
	}
	if !apperrors.IsRejection(err) {
		t.Error("authorization denial should classify as a rejection")
	}
}

func TestAuthorizeTransition_AllowedReturnsNil(t *testing.T) {
	if err := AuthorizeTransition(domain.RoleManager, domain.StageBacklog, domain.StageInProgress); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
