package events

import (
	"time"

	"github.com/spec-kit/content-crm/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketStageChanged EventType = "ticket_stage_changed"
	EventTicketDeleted      EventType = "ticket_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	MemberID string      `json:"member_id"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title       string                `json:"title"`
	ContentType domain.ContentType    `json:"content_type"`
	Priority    domain.TicketPriority `json:"priority"`
	ClientID    string                `json:"client_id"`
}

// TicketStageChangedPayload payload.
type TicketStageChangedPayload struct {
	Title      string       `json:"title"`
	ClientName string       `json:"client_name"`
	Assignee   string       `json:"assignee,omitempty"`
	FromStage  domain.Stage `json:"from_stage"`
	ToStage    domain.Stage `json:"to_stage"`
	TotalCost  *float64     `json:"total_cost,omitempty"`
	Revenue    *float64     `json:"revenue,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title string `json:"title"`
}
