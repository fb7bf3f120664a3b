package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/careerpoint/institute-api/internal/models"
)

// Payment status transition events
const (
	EventReceivePartial = "receive_partial"
	EventSettle         = "settle"
)

// PaymentStatusFSM wraps the enrollment payment status state machine.
// Status only moves forward: due -> partial -> paid. There is no refund
// or reversal event.
type PaymentStatusFSM struct {
	fsm *fsm.FSM
}

// NewPaymentStatusFSM creates a state machine seeded with the current status
func NewPaymentStatusFSM(current string) *PaymentStatusFSM {
	return &PaymentStatusFSM{
		fsm: fsm.NewFSM(
			current,
			fsm.Events{
				{Name: EventReceivePartial, Src: []string{models.PaymentStatusDue, models.PaymentStatusPartial}, Dst: models.PaymentStatusPartial},
				{Name: EventSettle, Src: []string{models.PaymentStatusDue, models.PaymentStatusPartial}, Dst: models.PaymentStatusPaid},
			},
			fsm.Callbacks{},
		),
	}
}

// Current returns the current status
func (p *PaymentStatusFSM) Current() string {
	return p.fsm.Current()
}

// Can reports whether the named event may fire from the current status
func (p *PaymentStatusFSM) Can(event string) bool {
	return p.fsm.Can(event)
}

// Fire triggers an event
func (p *PaymentStatusFSM) Fire(ctx context.Context, event string) error {
	return p.fsm.Event(ctx, event)
}

// TransitionTo moves the machine to the target status, choosing the event
// that lands there. Staying on the current status is a no-op. A target
// behind the current status is rejected.
func (p *PaymentStatusFSM) TransitionTo(ctx context.Context, target string) error {
	current := p.fsm.Current()
	if current == target {
		return nil
	}
	var event string
	switch target {
	case models.PaymentStatusPartial:
		event = EventReceivePartial
	case models.PaymentStatusPaid:
		event = EventSettle
	default:
		return fmt.Errorf("invalid payment status transition: %s -> %s", current, target)
	}
	if !p.fsm.Can(event) {
		return fmt.Errorf("invalid payment status transition: %s -> %s", current, target)
	}
	return p.fsm.Event(ctx, event)
}

// ValidStatuses returns all recognised payment statuses
func ValidStatuses() []string {
	return []string{models.PaymentStatusDue, models.PaymentStatusPartial, models.PaymentStatusPaid}
}
