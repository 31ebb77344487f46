// Package notify fans session resolution outcomes out to delivery sinks.
// The engine reports outcomes; sinks decide how the user (or an operator)
// hears about them.
package notify

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

// Outcome kinds recognised by downstream sinks.
const (
	KindDenied  = "denied"
	KindPending = "pending"
)

// OutcomePayload captures the canonical data emitted for a resolution outcome.
type OutcomePayload struct {
	Kind       string
	Code       apperrors.ErrorCode
	Message    string
	OccurredAt time.Time
}

// Sink describes a destination capable of consuming resolution outcomes.
type Sink interface {
	SendOutcome(ctx context.Context, payload OutcomePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload OutcomePayload) error

// SendOutcome implements the Sink interface.
func (f SinkFunc) SendOutcome(ctx context.Context, payload OutcomePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// Notifier implements ports.Notifier over a set of sinks. Sink failures are
// logged and never propagate back into resolution.
type Notifier struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewNotifier constructs a notifier. With no sinks it only logs.
func NewNotifier(logger *slog.Logger, sinks ...Sink) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sinks:  sinks,
		logger: logger.With("component", "session_notifier"),
		now:    time.Now,
	}
}

// SessionDenied reports a denied resolution outcome.
func (n *Notifier) SessionDenied(ctx context.Context, cause error) {
	n.send(ctx, KindDenied, cause)
}

// SessionPending reports a signed-in-but-unmapped outcome.
func (n *Notifier) SessionPending(ctx context.Context, cause error) {
	n.send(ctx, KindPending, cause)
}

func (n *Notifier) send(ctx context.Context, kind string, cause error) {
	payload := OutcomePayload{
		Kind:       kind,
		Code:       apperrors.CodeOf(cause),
		OccurredAt: n.now(),
	}
	if cause != nil {
		payload.Message = cause.Error()
	}

	n.logger.InfoContext(ctx, "session outcome",
		"kind", payload.Kind,
		"code", payload.Code,
		"message", payload.Message,
	)

	for _, sink := range n.sinks {
		if err := sink.SendOutcome(ctx, payload); err != nil {
			n.logger.WarnContext(ctx, "outcome sink failed", "kind", kind, "error", err)
		}
	}
}
