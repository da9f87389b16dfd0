// Package moderation submits approval decisions and edit drafts for pending
// articles and videos.
//
// A decision moves through Idle, Validating, Submitting and then Succeeded or
// Failed. Validation failures never reach the network; a failed submission
// keeps the entered status and reason so the operator can retry. Nothing is
// retried automatically.
package moderation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	apperrors "github.com/sikiya/sikiya-console/internal/services/console/platform/errors"
	"github.com/sikiya/sikiya-console/internal/services/console/routepath"
)

// State is a step of the decision workflow.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Errors carry catalog keys so pages can show them inline.
var (
	ErrStatusRequired   = apperrors.EK(apperrors.KindValidation, "moderation.status_required", "select approve or reject")
	ErrReasonRequired   = apperrors.EK(apperrors.KindValidation, "moderation.reason_required", "a reason is required to reject")
	ErrUnknownStatus    = apperrors.EK(apperrors.KindValidation, "moderation.status_required", "unknown approval status")
	ErrSubmitInProgress = apperrors.EK(apperrors.KindConflict, "moderation.in_progress", "a decision for this item is already being submitted")
)

// Message keys shown after a decision.
const (
	KeyApproved = "moderation.approved"
	KeyRejected = "moderation.rejected"
)

// Decision is the operator's input as entered.
type Decision struct {
	Status string
	Reason string
}

// Validate checks the decision without side effects.
func (d Decision) Validate() error {
	switch strings.TrimSpace(d.Status) {
	case "":
		return ErrStatusRequired
	case newsapi.StatusApproved:
		return nil
	case newsapi.StatusRejected:
		if strings.TrimSpace(d.Reason) == "" {
			return ErrReasonRequired
		}
		return nil
	default:
		return ErrUnknownStatus
	}
}

// IsValidationError reports whether err was raised before any request.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrStatusRequired) || errors.Is(err, ErrReasonRequired) || errors.Is(err, ErrUnknownStatus)
}

func (d Decision) wire() newsapi.Decision {
	out := newsapi.Decision{Status: strings.TrimSpace(d.Status)}
	if reason := strings.TrimSpace(d.Reason); reason != "" {
		out.Reason = reason
	}
	return out
}

// DecisionSender delivers one decision. newsapi.Session satisfies it.
type DecisionSender interface {
	SubmitDecision(ctx context.Context, kind newsapi.Kind, id string, decision newsapi.Decision) error
}

// Outcome describes where one submission ended.
type Outcome struct {
	State    State
	Decision Decision
	Err      error
	// MessageKey and Redirect are set when State is StateSucceeded.
	MessageKey string
	Redirect   string
}

// Submitter runs decisions and rejects overlapping submissions for one item.
type Submitter struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	// observe, when set, sees every state the workflow enters.
	observe func(State)
}

// NewSubmitter builds a Submitter.
func NewSubmitter() *Submitter {
	return &Submitter{inFlight: map[string]struct{}{}}
}

// Submit validates decision and, when valid, sends exactly one request.
func (s *Submitter) Submit(ctx context.Context, sender DecisionSender, kind newsapi.Kind, id string, decision Decision) Outcome {
	s.enter(StateValidating)
	if err := decision.Validate(); err != nil {
		return s.fail(decision, err)
	}
	if sender == nil {
		return s.fail(decision, errors.New("decision sender is required"))
	}
	if !kind.Valid() {
		return s.fail(decision, errors.New("unknown content kind"))
	}

	key := string(kind) + "/" + id
	if !s.acquire(key) {
		return s.fail(decision, ErrSubmitInProgress)
	}
	defer s.release(key)

	s.enter(StateSubmitting)
	wire := decision.wire()
	if err := sender.SubmitDecision(ctx, kind, id, wire); err != nil {
		return s.fail(decision, err)
	}

	s.enter(StateSucceeded)
	messageKey := KeyApproved
	if wire.Status == newsapi.StatusRejected {
		messageKey = KeyRejected
	}
	return Outcome{
		State:      StateSucceeded,
		Decision:   decision,
		MessageKey: messageKey,
		Redirect:   routepath.Pending(string(kind)),
	}
}

// InFlight reports whether a decision for the item is being submitted.
func (s *Submitter) InFlight(kind newsapi.Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[string(kind)+"/"+id]
	return ok
}

func (s *Submitter) fail(decision Decision, err error) Outcome {
	s.enter(StateFailed)
	s.enter(StateIdle)
	return Outcome{State: StateFailed, Decision: decision, Err: err}
}

func (s *Submitter) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = map[string]struct{}{}
	}
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *Submitter) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

func (s *Submitter) enter(state State) {
	if s.observe != nil {
		s.observe(state)
	}
}
