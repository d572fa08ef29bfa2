package audit

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/mcpizza/internal/logger"
)

const (
	responsePreviewLen = 500
	stateValueLen      = 200
)

// Recorder builds events and hands them to a Sink. Sink failures are logged
// and swallowed: the interaction log never fails an order operation.
type Recorder struct {
	sink Sink
	log  logger.Logger
	now  func() time.Time
}

// NewRecorder wraps sink. A nil sink records nothing.
func NewRecorder(sink Sink, log logger.Logger) *Recorder {
	if sink == nil {
		sink = NopSink{}
	}
	if log == nil {
		log = logger.NewNoop()
	}
	return &Recorder{sink: sink, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// ToolCall records an incoming tool invocation
func (r *Recorder) ToolCall(ctx context.Context, sessionID, tool string, args map[string]interface{}) {
	r.emit(ctx, Event{
		Kind:      KindToolCall,
		SessionID: sessionID,
		Name:      tool,
		Payload:   r.marshal(map[string]interface{}{"arguments": redact(args)}),
	})
}

// ToolResponse records the outcome returned to the caller
func (r *Recorder) ToolResponse(ctx context.Context, sessionID, tool string, success bool, response string, err error) {
	e := Event{
		Kind:      KindToolResponse,
		SessionID: sessionID,
		Name:      tool,
		Payload: r.marshal(map[string]interface{}{
			"success":          success,
			"response_preview": truncate(response, responsePreviewLen),
		}),
	}
	if err != nil {
		e.Error = err.Error()
	}
	r.emit(ctx, e)
}

// StateChange records an order state transition
func (r *Recorder) StateChange(ctx context.Context, sessionID, orderID, stateType, oldValue, newValue string) {
	r.emit(ctx, Event{
		Kind:      KindStateChange,
		SessionID: sessionID,
		OrderID:   orderID,
		Name:      stateType,
		Payload: r.marshal(map[string]interface{}{
			"old_value": truncate(oldValue, stateValueLen),
			"new_value": truncate(newValue, stateValueLen),
		}),
	})
}

// Error records a failure with optional context
func (r *Recorder) Error(ctx context.Context, sessionID, errorType string, err error, details map[string]interface{}) {
	e := Event{
		Kind:      KindError,
		SessionID: sessionID,
		Name:      errorType,
		Payload:   r.marshal(map[string]interface{}{"context": redact(details)}),
	}
	if err != nil {
		e.Error = err.Error()
	}
	r.emit(ctx, e)
}

func (r *Recorder) emit(ctx context.Context, e Event) {
	e.ID = uuid.NewString()
	e.At = r.now()
	// a cancelled tool call still gets its log entry
	if err := r.sink.Record(context.WithoutCancel(ctx), e); err != nil {
		r.log.Warn("interaction log write failed",
			logger.String("kind", string(e.Kind)),
			logger.String("name", e.Name),
			logger.Err(err))
	}
}

func (r *Recorder) marshal(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("interaction payload not serializable", logger.Err(err))
		return nil
	}
	return b
}

// sensitiveKeys never reach the interaction log
var sensitiveKeys = map[string]bool{
	"card_number": true,
	"card_cvv":    true,
	"card_expiry": true,
}

func redact(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		if sensitiveKeys[k] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v
	}
	return out
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
