// Package payment drives a single payment attempt from submission to a
// terminal state: synchronous confirmation for cash and card, confirmation
// polling with a deadline for mobile money.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/api"
	"github.com/oliversimiyu/pos-system/internal/domain"
)

var (
	ErrInsufficientPayment = errors.New("amount paid is less than total")
	ErrInvalidPhoneNumber  = errors.New("invalid phone number")
	ErrInvalidCardNumber   = errors.New("invalid card number")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrPaymentTimeout      = errors.New("payment confirmation timed out")
	ErrSuperseded          = errors.New("payment attempt superseded")
	ErrCancelled           = errors.New("payment attempt cancelled")
	ErrUnsupportedMethod   = errors.New("unsupported payment method")
)

// Gateway is the slice of the API client the flow needs.
type Gateway interface {
	InitiatePayment(ctx context.Context, req api.InitiatePaymentRequest) (*api.PaymentStatusResponse, error)
	VerifyPayment(ctx context.Context, id int64) (*api.PaymentStatusResponse, error)
}

// Request carries the method-specific input collected on the till.
type Request struct {
	Method      domain.PaymentMethod
	Total       float64
	AmountPaid  float64 // cash only
	PhoneNumber string  // mpesa / airtel
	CardNumber  string  // card
}

// Result is handed to the completion callback exactly once per confirmed
// attempt. Change is informational; only Amount is persisted with the sale.
type Result struct {
	Method    domain.PaymentMethod
	Amount    float64
	Change    float64
	PaymentID int64
	Reference string
}

// CompletionFunc consumes a confirmed payment (the sale finalizer).
type CompletionFunc func(Result)

// Attempt is one payment attempt. Method selection and input collection
// happen on the till, so the controller picks the machine up at SUBMITTING.
type Attempt struct {
	mu        sync.Mutex
	reference string
	method    domain.PaymentMethod
	amount    float64
	change    float64
	paymentID int64
	state     domain.AttemptState
	err       error
	cancel    context.CancelFunc
}

// State returns the attempt's current machine state.
func (a *Attempt) State() domain.AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the terminal error, if any.
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Reference returns the terminal-generated transaction reference.
func (a *Attempt) Reference() string {
	return a.reference
}

// Change is the cash change due; zero for other methods.
func (a *Attempt) Change() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.change
}

// transition applies the state machine. Illegal transitions (including any
// move out of a terminal state) are rejected, which is what makes late poll
// results and duplicate completions harmless.
func (a *Attempt) transition(to domain.AttemptState, err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !domain.CanTransitionTo(a.state, to) {
		return false
	}
	a.state = to
	a.err = err
	return true
}

func (a *Attempt) result() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Result{
		Method:    a.method,
		Amount:    a.amount,
		Change:    a.change,
		PaymentID: a.paymentID,
		Reference: a.reference,
	}
}

// abort cancels the attempt's poll loop and fails it if not yet terminal.
func (a *Attempt) abort(reason error) {
	a.transition(domain.AttemptFailed, reason)
	if a.cancel != nil {
		a.cancel()
	}
}

// Flow owns at most one live attempt at a time. Submitting a new attempt or
// closing the payment dialog cancels the previous attempt's poll loop and
// deadline before anything else happens.
type Flow struct {
	gateway      Gateway
	pollInterval time.Duration
	pollTimeout  time.Duration
	onComplete   CompletionFunc
	log          *zap.Logger

	mu      sync.Mutex
	current *Attempt
}

// NewFlow wires the controller. pollInterval/pollTimeout govern mobile-money
// confirmation (3s / 2min in production).
func NewFlow(gateway Gateway, pollInterval, pollTimeout time.Duration, onComplete CompletionFunc, log *zap.Logger) *Flow {
	return &Flow{
		gateway:      gateway,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		onComplete:   onComplete,
		log:          log,
	}
}

// Current returns the live attempt, or nil.
func (f *Flow) Current() *Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Cancel aborts the live attempt (payment dialog closed). The cart is left
// untouched; the cashier may start over.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		f.current.abort(ErrCancelled)
	}
}

// Submit validates the request, supersedes any live attempt, and runs the
// method-specific submission. Validation failures make no network call. For
// mobile money the returned attempt may still be AWAITING_CONFIRMATION; the
// caller observes the terminal state via Current().
func (f *Flow) Submit(req Request) (*Attempt, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	attempt := &Attempt{
		reference: uuid.NewString(),
		method:    req.Method,
		amount:    req.Total,
		state:     domain.AttemptSubmitting,
		cancel:    cancel,
	}
	if req.Method == domain.MethodCash {
		attempt.amount = req.AmountPaid
		attempt.change = req.AmountPaid - req.Total
	}

	f.mu.Lock()
	if f.current != nil {
		f.current.abort(ErrSuperseded)
	}
	f.current = attempt
	f.mu.Unlock()

	initReq := api.InitiatePaymentRequest{
		Method:      req.Method,
		Amount:      req.Total,
		PhoneNumber: req.PhoneNumber,
		CardNumber:  req.CardNumber,
		Reference:   attempt.reference,
	}
	resp, err := f.gateway.InitiatePayment(ctx, initReq)
	if err != nil {
		attempt.transition(domain.AttemptFailed, err)
		return attempt, err
	}
	attempt.mu.Lock()
	attempt.paymentID = resp.ID
	attempt.mu.Unlock()

	switch resp.Status {
	case domain.PaymentSuccess:
		f.confirm(attempt)
		return attempt, nil
	case domain.PaymentFailed:
		errFail := failure(resp.ErrMessage)
		attempt.transition(domain.AttemptFailed, errFail)
		return attempt, errFail
	}

	// pending / processing: only mobile money settles asynchronously.
	if !req.Method.IsMobile() {
		errFail := failure("unexpected non-terminal status " + string(resp.Status))
		attempt.transition(domain.AttemptFailed, errFail)
		return attempt, errFail
	}

	if attempt.transition(domain.AttemptAwaitingConfirm, nil) {
		f.log.Info("awaiting payment confirmation",
			zap.Int64("payment_id", resp.ID),
			zap.String("method", string(req.Method)),
		)
		go f.poll(ctx, attempt)
	}
	return attempt, nil
}

// poll re-checks the backend until a terminal status or the deadline. Only
// one poll loop exists per attempt; cancelling ctx stops it.
func (f *Flow) poll(ctx context.Context, a *Attempt) {
	ticker := time.NewTicker(f.pollInterval)
	deadline := time.NewTimer(f.pollTimeout)
	defer ticker.Stop()
	defer deadline.Stop()

	for {
		select {
		case <-ticker.C:
			resp, err := f.gateway.VerifyPayment(ctx, a.paymentID)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				// Transient verify failures keep the loop alive; the
				// deadline bounds the total wait.
				f.log.Warn("payment verify failed", zap.Int64("payment_id", a.paymentID), zap.Error(err))
				continue
			}
			switch resp.Status {
			case domain.PaymentSuccess:
				f.confirm(a)
				return
			case domain.PaymentFailed:
				a.transition(domain.AttemptFailed, failure(resp.ErrMessage))
				return
			}
		case <-deadline.C:
			if a.transition(domain.AttemptTimedOut, ErrPaymentTimeout) {
				f.log.Warn("payment confirmation timed out", zap.Int64("payment_id", a.paymentID))
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

// confirm moves the attempt to CONFIRMED and fires the completion callback.
// The transition gate guarantees at-most-once even with a racing abort.
func (f *Flow) confirm(a *Attempt) {
	if !a.transition(domain.AttemptConfirmed, nil) {
		return
	}
	f.log.Info("payment confirmed",
		zap.String("method", string(a.method)),
		zap.Int64("payment_id", a.paymentID),
	)
	if f.onComplete != nil {
		f.onComplete(a.result())
	}
}

func validate(req Request) error {
	switch req.Method {
	case domain.MethodCash:
		if req.AmountPaid < req.Total {
			return ErrInsufficientPayment
		}
	case domain.MethodMpesa, domain.MethodAirtel:
		if len(req.PhoneNumber) < 10 {
			return ErrInvalidPhoneNumber
		}
	case domain.MethodCard:
		if len(req.CardNumber) != 16 {
			return ErrInvalidCardNumber
		}
	default:
		return ErrUnsupportedMethod
	}
	return nil
}

func failure(msg string) error {
	if msg == "" {
		return ErrPaymentFailed
	}
	return fmt.Errorf("%w: %s", ErrPaymentFailed, msg)
}
