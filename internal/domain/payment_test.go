package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    AttemptState
		to      AttemptState
		allowed bool
	}{
		{"select to collecting", AttemptSelectMethod, AttemptCollectingInput, true},
		{"collecting back to select", AttemptCollectingInput, AttemptSelectMethod, true},
		{"collecting to submitting", AttemptCollectingInput, AttemptSubmitting, true},
		{"submitting to confirmed", AttemptSubmitting, AttemptConfirmed, true},
		{"submitting to awaiting", AttemptSubmitting, AttemptAwaitingConfirm, true},
		{"submitting to failed", AttemptSubmitting, AttemptFailed, true},
		{"awaiting to confirmed", AttemptAwaitingConfirm, AttemptConfirmed, true},
		{"awaiting to failed", AttemptAwaitingConfirm, AttemptFailed, true},
		{"awaiting to timed out", AttemptAwaitingConfirm, AttemptTimedOut, true},
		{"select cannot submit directly", AttemptSelectMethod, AttemptSubmitting, false},
		{"submitting cannot time out", AttemptSubmitting, AttemptTimedOut, false},
		{"no backwards from submitting", AttemptSubmitting, AttemptCollectingInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminals := []AttemptState{AttemptConfirmed, AttemptFailed, AttemptTimedOut}
	all := []AttemptState{
		AttemptSelectMethod, AttemptCollectingInput, AttemptSubmitting,
		AttemptAwaitingConfirm, AttemptConfirmed, AttemptFailed, AttemptTimedOut,
	}

	for _, from := range terminals {
		assert.True(t, from.IsTerminal())
		for _, to := range all {
			assert.False(t, CanTransitionTo(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestPaymentMethodIsMobile(t *testing.T) {
	assert.True(t, MethodMpesa.IsMobile())
	assert.True(t, MethodAirtel.IsMobile())
	assert.False(t, MethodCash.IsMobile())
	assert.False(t, MethodCard.IsMobile())
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.True(t, PaymentSuccess.IsTerminal())
	assert.True(t, PaymentFailed.IsTerminal())
	assert.False(t, PaymentPending.IsTerminal())
	assert.False(t, PaymentProcessing.IsTerminal())
}
