package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dshills/mcpizza/internal/logger"
)

// Kind classifies an interaction event
type Kind string

const (
	KindToolCall     Kind = "tool_call"
	KindToolResponse Kind = "tool_response"
	KindStateChange  Kind = "state_change"
	KindError        Kind = "error"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindToolCall, KindToolResponse, KindStateChange, KindError:
		return true
	}
	return false
}

// Event is one immutable interaction log entry
type Event struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	SessionID string          `json:"session_id"`
	OrderID   string          `json:"order_id,omitempty"`
	Name      string          `json:"name"` // tool name or state type
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	At        time.Time       `json:"at"`
}

// Sink receives interaction events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Record(ctx context.Context, e Event) error
	Close() error
}

// NopSink discards events
type NopSink struct{}

func (NopSink) Record(context.Context, Event) error { return nil }
func (NopSink) Close() error                        { return nil }

// MultiSink fans an event out to every sink, joining their errors
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to the structured logger
type LogSink struct {
	Log logger.Logger
}

func (s LogSink) Record(_ context.Context, e Event) error {
	fields := []logger.Field{
		logger.String("event_id", e.ID),
		logger.String("kind", string(e.Kind)),
		logger.String("session_id", e.SessionID),
		logger.String("name", e.Name),
	}
	if e.OrderID != "" {
		fields = append(fields, logger.String("order_id", e.OrderID))
	}
	if len(e.Payload) > 0 {
		fields = append(fields, logger.String("payload", string(e.Payload)))
	}

	if e.Kind == KindError {
		s.Log.Error("interaction", errors.New(e.Error), fields...)
		return nil
	}
	if e.Error != "" {
		fields = append(fields, logger.String("error", e.Error))
	}
	s.Log.Info("interaction", fields...)
	return nil
}

func (LogSink) Close() error { return nil }
