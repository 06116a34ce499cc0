package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/content-crm/internal/auth"
	"github.com/spec-kit/content-crm/internal/config"
	"github.com/spec-kit/content-crm/internal/domain"
	"github.com/spec-kit/content-crm/internal/repository"
	apperrors "github.com/spec-kit/content-crm/pkg/util"
)

// AuthService authenticates team members and issues role-carrying
// tokens. The workflow core consumes only the resulting role label.
type AuthService struct {
	members repository.MemberRepository
	tokens  *auth.TokenManager
	hasher  *auth.PasswordHasher
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	MemberRepo repository.MemberRepository
}

// LoginResult carries the issued token and its subject.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Member    *domain.TeamMember
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		members: deps.MemberRepo,
		tokens:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		hasher:  auth.NewPasswordHasher(cfg.Auth.BcryptCost),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	member, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !member.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if !s.hasher.Verify(member.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(member.ID, member.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Member: member}, nil
}

// RegisterMember creates a team member account. Admin only.
func (s *AuthService) RegisterMember(ctx context.Context, actor Actor, member *domain.TeamMember, password string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins can register members")
	}
	if !member.Role.IsValid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": member.Role})
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.MapError(err)
	}
	member.PasswordHash = hash
	member.Active = true
	if err := s.members.Create(ctx, member); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
