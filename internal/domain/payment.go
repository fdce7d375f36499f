package domain

// PaymentMethod is the wire value sent to the backend.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodMpesa  PaymentMethod = "mpesa"
	MethodAirtel PaymentMethod = "airtel"
	MethodCard   PaymentMethod = "card"
)

// IsMobile reports whether the method settles asynchronously via an STK push
// and therefore requires confirmation polling.
func (m PaymentMethod) IsMobile() bool {
	return m == MethodMpesa || m == MethodAirtel
}

// PaymentStatus is the backend-reported status of a payment record.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSuccess    PaymentStatus = "success"
	PaymentFailed     PaymentStatus = "failed"
)

// IsTerminal reports whether the backend will not change this status again.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// AttemptState is the client-side state of one payment attempt.
type AttemptState string

const (
	AttemptSelectMethod    AttemptState = "SELECT_METHOD"
	AttemptCollectingInput AttemptState = "COLLECTING_INPUT"
	AttemptSubmitting      AttemptState = "SUBMITTING"
	AttemptAwaitingConfirm AttemptState = "AWAITING_CONFIRMATION"
	AttemptConfirmed       AttemptState = "CONFIRMED"
	AttemptFailed          AttemptState = "FAILED"
	AttemptTimedOut        AttemptState = "TIMED_OUT"
)

var attemptTransitions = map[AttemptState][]AttemptState{
	AttemptSelectMethod:    {AttemptCollectingInput},
	AttemptCollectingInput: {AttemptSelectMethod, AttemptSubmitting},
	AttemptSubmitting:      {AttemptConfirmed, AttemptAwaitingConfirm, AttemptFailed},
	AttemptAwaitingConfirm: {AttemptConfirmed, AttemptFailed, AttemptTimedOut},
}

// CanTransitionTo reports whether the state machine allows from -> to.
func CanTransitionTo(from, to AttemptState) bool {
	for _, next := range attemptTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s AttemptState) IsTerminal() bool {
	return s == AttemptConfirmed || s == AttemptFailed || s == AttemptTimedOut
}

// String representation (for logging)
func (s AttemptState) String() string {
	return string(s)
}
