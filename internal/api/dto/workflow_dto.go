package dto

import "github.com/spec-kit/content-crm/internal/domain"

// TransitionRequest payload.
type TransitionRequest struct {
	TargetStage domain.Stage `json:"target_stage"`
}

// SupplyPricingRequest payload for resuming a pricing sub-workflow.
type SupplyPricingRequest struct {
	ActualRevenue float64 `json:"actual_revenue"`
}

// SupplyHoursRequest payload for resuming an hours sub-workflow. Hours
// for fixed-rate parties are ignored.
type SupplyHoursRequest struct {
	AssigneeHours float64 `json:"assignee_hours"`
	ReviewerHours float64 `json:"reviewer_hours"`
}

// TransitionOutcomeResponse reports how the attempt resolved.
type TransitionOutcomeResponse struct {
	State  string         `json:"state"`
	Reason string         `json:"reason,omitempty"`
	Token  string         `json:"token,omitempty"`
	Input  string         `json:"input,omitempty"`
	Ticket *TicketSummary `json:"ticket,omitempty"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	MemberID  string      `json:"member_id"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
}
