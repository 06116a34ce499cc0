package dto

import (
	"time"

	"github.com/spec-kit/content-crm/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title            string                `json:"title"`
	ContentType      domain.ContentType    `json:"content_type"`
	Priority         domain.TicketPriority `json:"priority"`
	ClientID         string                `json:"client_id"`
	AssigneeID       *string               `json:"assignee_id"`
	ReviewerID       *string               `json:"reviewer_id"`
	DueDate          *time.Time            `json:"due_date"`
	EstimatedRevenue *float64              `json:"estimated_revenue"`
}

// UpdateTicketRequest payload. Omitted fields are left untouched.
type UpdateTicketRequest struct {
	Title      *string                `json:"title"`
	Priority   *domain.TicketPriority `json:"priority"`
	AssigneeID *string                `json:"assignee_id"`
	ReviewerID *string                `json:"reviewer_id"`
	DueDate    *time.Time             `json:"due_date"`
}

// SubmitContentRequest payload.
type SubmitContentRequest struct {
	Content string `json:"content"`
}

// AddReviewRequest payload.
type AddReviewRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	ContentType domain.ContentType    `json:"content_type"`
	Priority    domain.TicketPriority `json:"priority"`
	AssigneeID  *string               `json:"assignee_id"`
	ReviewerID  *string               `json:"reviewer_id"`
	ClientID    string                `json:"client_id"`
	Stage       domain.Stage          `json:"stage"`
	DueDate     *time.Time            `json:"due_date"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including monetary
// fields. Monetary fields are stripped for non-admin callers.
type TicketDetailResponse struct {
	TicketSummary
	TotalCost        *float64              `json:"total_cost,omitempty"`
	CostBreakdown    *domain.CostBreakdown `json:"cost_breakdown,omitempty"`
	ActualRevenue    *float64              `json:"actual_revenue,omitempty"`
	EstimatedRevenue *float64              `json:"estimated_revenue,omitempty"`
	Timeline         *TimelineResponse     `json:"timeline,omitempty"`
}

// TimelineResponse mirrors the per-ticket audit aggregate.
type TimelineResponse struct {
	StateHistory   map[domain.Stage]time.Time `json:"state_history"`
	StateDurations map[domain.Stage]float64   `json:"state_durations"`
	Log            []StatusChangeResponse     `json:"log"`
}

// StatusChangeResponse is one audit record.
type StatusChangeResponse struct {
	ID        string        `json:"id"`
	FromStage *domain.Stage `json:"from_status"`
	ToStage   domain.Stage  `json:"to_status"`
	Actor     string        `json:"actor"`
	Note      string        `json:"note,omitempty"`
	System    bool          `json:"system"`
	CreatedAt time.Time     `json:"created_at"`
}

// BoardColumnResponse is one kanban column.
type BoardColumnResponse struct {
	Stage   domain.Stage    `json:"stage"`
	Label   string          `json:"label"`
	Tickets []TicketSummary `json:"tickets"`
}
