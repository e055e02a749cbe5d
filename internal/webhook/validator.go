// Package webhook validates and records call lifecycle events from the voice
// platform. Events are always acknowledged, valid or not, so the platform
// never retries.
package webhook

import (
	"context"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin/binding"
	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/lapu-lapu-poc/server/internal/observers"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
	"github.com/rs/zerolog"
)

// CallLog is where every received event ends up.
type CallLog interface {
	Append(event, callID string, data any) model.CallLogEntry
}

// Outcome describes how one webhook delivery was handled.
type Outcome struct {
	Parsed         bool
	Classification string
	CallID         string
	Event          *model.CallEvent
	Err            error
}

type Validator struct {
	calls   CallLog
	metrics *observers.Metrics
	log     zerolog.Logger
}

// NewValidator returns a Validator recording into calls. metrics may be nil.
func NewValidator(calls CallLog, metrics *observers.Metrics) *Validator {
	return &Validator{calls: calls, metrics: metrics, log: logx.Component("webhook")}
}

// Handle parses raw, logs diagnostics and appends exactly one call-log entry.
func (v *Validator) Handle(ctx context.Context, raw []byte) Outcome {
	var ev model.CallEvent
	if err := binding.JSON.BindBody(raw, &ev); err != nil {
		return v.unparsed(raw, errx.Validation(err))
	}

	v.diagnose(&ev)
	v.calls.Append(ev.Event, ev.Call.CallID, ev)
	v.metrics.WebhookEvent(ev.Event)
	return Outcome{
		Parsed:         true,
		Classification: ev.Event,
		CallID:         ev.Call.CallID,
		Event:          &ev,
	}
}

func (v *Validator) unparsed(raw []byte, err error) Outcome {
	var body any
	if decodeErr := sonic.Unmarshal(raw, &body); decodeErr != nil {
		body = string(raw)
	}
	callID := callIDOf(body)

	v.log.Warn().Err(err).Str("call_id", callID).Str("raw", string(raw)).Msg("webhook failed validation, acknowledging anyway")
	v.calls.Append(model.EventUnknown, callID, body)
	v.metrics.WebhookEvent(model.EventUnknown)
	return Outcome{
		Classification: model.EventUnknown,
		CallID:         callID,
		Err:            err,
	}
}

// callIDOf digs call.call_id out of an undecoded-to-struct body.
func callIDOf(body any) string {
	root, ok := body.(map[string]any)
	if !ok {
		return model.UnknownCallID
	}
	call, ok := root["call"].(map[string]any)
	if !ok {
		return model.UnknownCallID
	}
	id, ok := call["call_id"].(string)
	if !ok || id == "" {
		return model.UnknownCallID
	}
	return id
}

func (v *Validator) diagnose(ev *model.CallEvent) {
	c := ev.Call
	l := v.log.With().Str("call_id", c.CallID).Str("agent_id", c.AgentID).Logger()

	switch ev.Event {
	case model.EventCallStarted:
		l.Info().
			Str("from", orUnknown(c.FromNumber)).
			Str("to", orUnknown(c.ToNumber)).
			Str("direction", orUnknown(c.Direction)).
			Msg("call started")
	case model.EventCallEnded:
		e := l.Info().Str("status", c.CallStatus)
		if c.Transcript != "" {
			e = e.Int("transcript_chars", len(c.Transcript))
		}
		if c.RecordingURL != "" {
			e = e.Str("recording_url", c.RecordingURL)
		}
		e.Msg("call ended")
	case model.EventCallAnalyzed:
		e := l.Info()
		if a := c.CallAnalysis; a != nil {
			successful := "N/A"
			if a.CallSuccessful != nil {
				successful = strconv.FormatBool(*a.CallSuccessful)
			}
			e = e.Str("summary", orNA(a.CallSummary)).
				Str("sentiment", orNA(a.UserSentiment)).
				Str("successful", successful)
		}
		e.Msg("call analyzed")
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
