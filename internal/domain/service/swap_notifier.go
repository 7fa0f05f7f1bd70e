package service

import (
	"context"
	"time"

	"rewear/internal/domain/entity"
)

type SwapEventType string

const (
	SwapEventCreated   SwapEventType = "swap.created"
	SwapEventAccepted  SwapEventType = "swap.accepted"
	SwapEventRejected  SwapEventType = "swap.rejected"
	SwapEventCompleted SwapEventType = "swap.completed"
	SwapEventCancelled SwapEventType = "swap.cancelled"
	SwapEventMessage   SwapEventType = "swap.message"
	SwapEventRated     SwapEventType = "swap.rated"
)

// SwapEvent is published after a swap change has been committed.
type SwapEvent struct {
	Type    SwapEventType       `json:"type"`
	SwapID  string              `json:"swap_id"`
	ActorID string              `json:"actor_id"`
	Status  entity.SwapStatus   `json:"status"`
	Message *entity.SwapMessage `json:"message,omitempty"`
	At      time.Time           `json:"timestamp"`

	Recipients []string `json:"-"`
}

// SwapNotifier receives committed swap events. Implementations must not block the caller.
type SwapNotifier interface {
	Notify(ctx context.Context, event SwapEvent)
}

type multiNotifier []SwapNotifier

// NewMultiNotifier fans an event out to every non-nil notifier.
func NewMultiNotifier(notifiers ...SwapNotifier) SwapNotifier {
	var m multiNotifier
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m multiNotifier) Notify(ctx context.Context, event SwapEvent) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}

type nopNotifier struct{}

func NopNotifier() SwapNotifier { return nopNotifier{} }

func (nopNotifier) Notify(context.Context, SwapEvent) {}
