package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpoint/institute-api/internal/models"
)

func TestPaymentStatusFSM_ForwardTransitions(t *testing.T) {
	ctx := context.Background()

	m := NewPaymentStatusFSM(models.PaymentStatusDue)
	require.NoError(t, m.TransitionTo(ctx, models.PaymentStatusPartial))
	assert.Equal(t, models.PaymentStatusPartial, m.Current())

	require.NoError(t, m.TransitionTo(ctx, models.PaymentStatusPaid))
	assert.Equal(t, models.PaymentStatusPaid, m.Current())
}

func TestPaymentStatusFSM_DueDirectlyToPaid(t *testing.T) {
	m := NewPaymentStatusFSM(models.PaymentStatusDue)
	require.NoError(t, m.TransitionTo(context.Background(), models.PaymentStatusPaid))
	assert.Equal(t, models.PaymentStatusPaid, m.Current())
}

func TestPaymentStatusFSM_SameStatusNoOp(t *testing.T) {
	m := NewPaymentStatusFSM(models.PaymentStatusPartial)
	require.NoError(t, m.TransitionTo(context.Background(), models.PaymentStatusPartial))
	assert.Equal(t, models.PaymentStatusPartial, m.Current())
}

func TestPaymentStatusFSM_NoReversal(t *testing.T) {
	ctx := context.Background()

	m := NewPaymentStatusFSM(models.PaymentStatusPaid)
	assert.Error(t, m.TransitionTo(ctx, models.PaymentStatusPartial))
	assert.Equal(t, models.PaymentStatusPaid, m.Current())

	m = NewPaymentStatusFSM(models.PaymentStatusPartial)
	assert.Error(t, m.TransitionTo(ctx, models.PaymentStatusDue))
}

func TestPaymentStatusFSM_InvalidTarget(t *testing.T) {
	m := NewPaymentStatusFSM(models.PaymentStatusDue)
	assert.Error(t, m.TransitionTo(context.Background(), "refunded"))
}
