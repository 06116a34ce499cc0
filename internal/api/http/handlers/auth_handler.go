package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-crm/internal/api/dto"
	"github.com/spec-kit/content-crm/internal/domain"
	"github.com/spec-kit/content-crm/internal/service"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// AuthHandler serves login and member registration.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
		MemberID:  result.Member.ID,
		Name:      result.Member.Name,
		Role:      result.Member.Role,
	}})
}

// RegisterMemberRequest payload.
type RegisterMemberRequest struct {
	Name         string                        `json:"name"`
	Email        string                        `json:"email"`
	Password     string                        `json:"password"`
	Role         domain.Role                   `json:"role"`
	Compensation *domain.CompensationStructure `json:"compensation"`
}

// RegisterMember POST /members.
func (h *AuthHandler) RegisterMember(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req RegisterMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return apperrors.NewValidationError("name, email and a password of at least 8 characters required", nil)
	}

	member := &domain.TeamMember{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Compensation: req.Compensation,
	}
	if err := h.service.RegisterMember(c.Context(), actor, member, req.Password); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":    member.ID,
		"name":  member.Name,
		"email": member.Email,
		"role":  member.Role,
	}})
}
