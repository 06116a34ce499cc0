package workflow

import (
	"github.com/spec-kit/content-crm/internal/domain"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// Fixed authorization rejection messages, surfaced verbatim.
const (
	MsgMonetizationDenied = "Only admins can move tickets to Invoiced or Paid"
	MsgContributorDenied  = "Contributors cannot move tickets between stages"
)

// CanInitiateTransition decides whether a role may initiate a transition
// between two stages. It is a total function over the closed
// role/stage/stage product, independent of ticket content, and must be
// consulted before any content-dependent guard runs.
func CanInitiateTransition(role domain.Role, from, to domain.Stage) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return !to.IsMonetization()
	default:
		return false
	}
}

// AuthorizeTransition wraps CanInitiateTransition into the error the
// orchestrator surfaces on denial.
func AuthorizeTransition(role domain.Role, from, to domain.Stage) error {
	if CanInitiateTransition(role, from, to) {
		return nil
	}
	if role == domain.RoleManager && to.IsMonetization() {
		return apperrors.NewTransitionForbidden(MsgMonetizationDenied)
	}
	return apperrors.NewTransitionForbidden(MsgContributorDenied)
}
