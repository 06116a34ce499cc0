package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_DeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventTicketStageChanged, func(ctx context.Context, event Event) error {
		got = append(got, event.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		t.Error("created handler should not fire for stage changes")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketStageChanged, TicketID: "t1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0] != "t1" {
		t.Errorf("delivered = %v, want [t1]", got)
	}
}

func TestDispatcher_HandlerErrorsNeverPropagate(t *testing.T) {
	d := NewInMemoryDispatcher()
	d.Subscribe(EventTicketStageChanged, func(ctx context.Context, event Event) error {
		return errors.New("sink unavailable")
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketStageChanged}); err != nil {
		t.Errorf("publish returned %v, want nil; delivery is best-effort", err)
	}
}

func TestDispatcher_NoSubscribersIsFine(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketDeleted}); err != nil {
		t.Errorf("publish returned %v, want nil", err)
	}
}
