package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/content-crm/internal/domain"
)

// PendingInputKind names the blocking sub-dialog a suspended transition
// is waiting on.
type PendingInputKind string

const (
	PendingInputPricing PendingInputKind = "pricing"
	PendingInputHours   PendingInputKind = "hours"
)

// PendingTransition is a transition attempt suspended in AwaitingInput.
// Nothing about the ticket has been persisted yet; the attempt resumes
// only on explicit submission or cancellation.
type PendingTransition struct {
	Token       string           `json:"token"`
	TicketID    string           `json:"ticket_id"`
	TargetStage domain.Stage     `json:"target_stage"`
	ActorID     string           `json:"actor_id"`
	ActorName   string           `json:"actor_name"`
	ActorRole   domain.Role      `json:"actor_role"`
	Input       PendingInputKind `json:"input"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ErrPendingNotFound is returned when a resumption token is unknown.
var ErrPendingNotFound = errors.New("pending transition not found")

// PendingTransitionStore keeps suspended transition attempts. The wait
// has no timeout, so entries carry no expiry.
type PendingTransitionStore interface {
	Save(ctx context.Context, pending *PendingTransition) error
	Get(ctx context.Context, token string) (*PendingTransition, error)
	Delete(ctx context.Context, token string) error
}

type pendingTransitionStore struct {
	client *redis.Client
}

// NewPendingTransitionStore instantiates the Redis-backed store.
func NewPendingTransitionStore(client *redis.Client) PendingTransitionStore {
	return &pendingTransitionStore{client: client}
}

func pendingKey(token string) string {
	return "pending_transition:" + token
}

func (s *pendingTransitionStore) Save(ctx context.Context, pending *PendingTransition) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending transition: %w", err)
	}
	return s.client.Set(ctx, pendingKey(pending.Token), raw, 0).Err()
}

func (s *pendingTransitionStore) Get(ctx context.Context, token string) (*PendingTransition, error) {
	raw, err := s.client.Get(ctx, pendingKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	var pending PendingTransition
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("decode pending transition: %w", err)
	}
	return &pending, nil
}

func (s *pendingTransitionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, pendingKey(token)).Err()
}
