package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-crm/internal/api/dto"
	"github.com/spec-kit/content-crm/internal/auth"
	"github.com/spec-kit/content-crm/internal/domain"
	"github.com/spec-kit/content-crm/internal/repository"
	"github.com/spec-kit/content-crm/internal/service"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// TicketsHandler manages ticket CRUD and board endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.ClientID == "" {
		return apperrors.NewValidationError("title and client_id required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		Title:            req.Title,
		ContentType:      req.ContentType,
		Priority:         req.Priority,
		ClientID:         req.ClientID,
		AssigneeID:       req.AssigneeID,
		ReviewerID:       req.ReviewerID,
		DueDate:          req.DueDate,
		EstimatedRevenue: req.EstimatedRevenue,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, timeline, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, timeline, principal.Role)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.Context(), actor, c.Params("id"), service.TicketUpdateInput{
		Title:      req.Title,
		Priority:   req.Priority,
		AssigneeID: req.AssigneeID,
		ReviewerID: req.ReviewerID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Board GET /board.
func (h *TicketsHandler) Board(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	filter := repository.TicketFilter{Limit: 500}
	if clientID := c.Query("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if assigneeID := c.Query("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}

	columns, err := h.service.Board(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	response := make([]dto.BoardColumnResponse, 0, len(columns))
	for _, column := range columns {
		tickets := make([]dto.TicketSummary, 0, len(column.Tickets))
		for i := range column.Tickets {
			tickets = append(tickets, boardTicketSummary(actor.Role, &column.Tickets[i]))
		}
		response = append(response, dto.BoardColumnResponse{
			Stage:   column.Stage,
			Label:   column.Stage.Label(),
			Tickets: tickets,
		})
	}
	return c.JSON(fiber.Map{"data": response})
}

// SubmitContent PUT /tickets/:id/content.
func (h *TicketsHandler) SubmitContent(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.SubmitContentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.SubmitContent(c.Context(), actor, c.Params("id"), req.Content); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddReview POST /tickets/:id/reviews.
func (h *TicketsHandler) AddReview(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AddReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.AddReview(c.Context(), actor, c.Params("id"), req.Score, strings.TrimSpace(req.Comment))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": entry})
}

func requireActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Member == nil {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{
		ID:   principal.Member.ID,
		Name: principal.Member.Name,
		Role: principal.Role,
	}, nil
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		Title:       ticket.Title,
		ContentType: ticket.ContentType,
		Priority:    ticket.Priority,
		AssigneeID:  ticket.AssigneeID,
		ReviewerID:  ticket.ReviewerID,
		ClientID:    ticket.ClientID,
		Stage:       ticket.Stage,
		DueDate:     ticket.DueDate,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// boardTicketSummary renders a ticket for the board: non-admins see the
// merged view stage, never the authoritative invoiced/paid value.
func boardTicketSummary(role domain.Role, ticket *domain.Ticket) dto.TicketSummary {
	summary := ticketSummary(ticket)
	summary.Stage = domain.BoardStage(role, ticket.Stage)
	return summary
}

// ticketDetail strips monetary figures for non-admin callers: the only
// non-privileged view of completion omits money and asks for hours.
func ticketDetail(ticket *domain.Ticket, timeline *domain.Timeline, role domain.Role) dto.TicketDetailResponse {
	detail := dto.TicketDetailResponse{TicketSummary: ticketSummary(ticket)}
	if role == domain.RoleAdmin {
		detail.TotalCost = ticket.TotalCost
		detail.CostBreakdown = ticket.CostBreakdown
		detail.ActualRevenue = ticket.ActualRevenue
		detail.EstimatedRevenue = ticket.EstimatedRevenue
	}
	if timeline != nil {
		response := &dto.TimelineResponse{
			StateHistory:   timeline.StateHistory,
			StateDurations: timeline.StateDurations,
		}
		for _, change := range timeline.Log {
			response.Log = append(response.Log, dto.StatusChangeResponse{
				ID:        change.ID,
				FromStage: change.FromStage,
				ToStage:   change.ToStage,
				Actor:     change.Actor,
				Note:      change.Note,
				System:    change.System,
				CreatedAt: change.CreatedAt,
			})
		}
		detail.Timeline = response
	}
	return detail
}
