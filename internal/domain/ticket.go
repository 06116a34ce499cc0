package domain

import (
	"errors"
	"time"
)

// Stage enumerates pipeline stages for content tickets.
type Stage string

const (
	StageBacklog        Stage = "backlog"
	StageInProgress     Stage = "in_progress"
	StageInternalReview Stage = "internal_review"
	StageClientReview   Stage = "client_review"
	StageDone           Stage = "done"
	StageInvoiced       Stage = "invoiced"
	StagePaid           Stage = "paid"
)

// Stages lists every pipeline stage in board order.
var Stages = []Stage{
	StageBacklog,
	StageInProgress,
	StageInternalReview,
	StageClientReview,
	StageDone,
	StageInvoiced,
	StagePaid,
}

// IsValid reports whether the stage is one of the known pipeline stages.
func (s Stage) IsValid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// IsMonetization reports whether the stage is one of the admin-only
// monetization stages.
func (s Stage) IsMonetization() bool {
	return s == StageInvoiced || s == StagePaid
}

// Label returns the user-facing name of the stage.
func (s Stage) Label() string {
	switch s {
	case StageBacklog:
		return "Backlog"
	case StageInProgress:
		return "In Progress"
	case StageInternalReview:
		return "Internal Review"
	case StageClientReview:
		return "Client Review"
	case StageDone:
		return "Done"
	case StageInvoiced:
		return "Invoiced"
	case StagePaid:
		return "Paid"
	default:
		return string(s)
	}
}

// BoardStage maps the authoritative stage to the stage a role sees on the
// board. Non-admins see tickets in invoiced/paid merged under Done; the
// authoritative stage value never changes.
func BoardStage(role Role, actual Stage) Stage {
	if role != RoleAdmin && actual.IsMonetization() {
		return StageDone
	}
	return actual
}

// ContentType enumerates supported kinds of content work.
type ContentType string

const (
	ContentTypeBlog        ContentType = "blog"
	ContentTypeTutorial    ContentType = "tutorial"
	ContentTypeNewsletter  ContentType = "newsletter"
	ContentTypeCaseStudy   ContentType = "case_study"
	ContentTypeSocialMedia ContentType = "social_media"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// CostBreakdown is derived at completion time and stored on the ticket.
type CostBreakdown struct {
	AssigneeCost float64 `json:"assignee_cost"`
	ReviewerCost float64 `json:"reviewer_cost"`
	AssigneeRate Rate    `json:"assignee_rate"`
	ReviewerRate Rate    `json:"reviewer_rate"`
	TotalCost    float64 `json:"total_cost"`
}

// Ticket is the aggregate for a unit of content work.
type Ticket struct {
	ID               string
	Title            string
	ContentType      ContentType
	Priority         TicketPriority
	AssigneeID       *string
	ReviewerID       *string
	ClientID         string
	Stage            Stage
	DueDate          *time.Time
	TotalCost        *float64
	CostBreakdown    *CostBreakdown
	ActualRevenue    *float64
	EstimatedRevenue *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ErrSameAssigneeReviewer is returned when an edit would leave the same
// identity as both assignee and reviewer.
var ErrSameAssigneeReviewer = errors.New("assignee and reviewer must be different members")

// ValidateAssignment enforces the assignee/reviewer identity invariant.
// Applied at edit time, not just at transition time.
func ValidateAssignment(assigneeID, reviewerID *string) error {
	if assigneeID == nil || reviewerID == nil {
		return nil
	}
	if *assigneeID != "" && *assigneeID == *reviewerID {
		return ErrSameAssigneeReviewer
	}
	return nil
}
