package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-crm/internal/api/dto"
	"github.com/spec-kit/content-crm/internal/service"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// WorkflowHandler exposes transition attempts and their resumption
// dialogs over HTTP.
type WorkflowHandler struct {
	service *service.WorkflowService
}

// NewWorkflowHandler constructs handler.
func NewWorkflowHandler(workflowService *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: workflowService}
}

// RequestTransition POST /tickets/:id/transitions.
func (h *WorkflowHandler) RequestTransition(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	outcome, err := h.service.RequestTransition(c.Context(), actor, c.Params("id"), req.TargetStage)
	if err != nil {
		return err
	}
	return writeOutcome(c, outcome)
}

// SupplyHours POST /transitions/:token/hours.
func (h *WorkflowHandler) SupplyHours(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.SupplyHoursRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	outcome, err := h.service.SupplyHours(c.Context(), actor, c.Params("token"), req.AssigneeHours, req.ReviewerHours)
	if err != nil {
		return err
	}
	return writeOutcome(c, outcome)
}

// SupplyPricing POST /transitions/:token/pricing.
func (h *WorkflowHandler) SupplyPricing(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.SupplyPricingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	outcome, err := h.service.SupplyPricing(c.Context(), actor, c.Params("token"), req.ActualRevenue)
	if err != nil {
		return err
	}
	return writeOutcome(c, outcome)
}

// CancelPending DELETE /transitions/:token.
func (h *WorkflowHandler) CancelPending(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	outcome, err := h.service.CancelPending(c.Context(), c.Params("token"))
	if err != nil {
		return err
	}
	return writeOutcome(c, outcome)
}

// writeOutcome maps a transition outcome to a response. Rejections come
// back as 200 with state=rejected rather than an error status: the
// request itself succeeded, the workflow said no.
func writeOutcome(c *fiber.Ctx, outcome *service.TransitionOutcome) error {
	response := dto.TransitionOutcomeResponse{
		State:  string(outcome.State),
		Reason: outcome.Reason,
		Token:  outcome.Token,
		Input:  string(outcome.Input),
	}
	if outcome.Ticket != nil {
		summary := ticketSummary(outcome.Ticket)
		response.Ticket = &summary
	}
	status := http.StatusOK
	if outcome.State == service.TransitionAwaitingInput {
		status = http.StatusAccepted
	}
	return c.Status(status).JSON(fiber.Map{"data": response})
}
