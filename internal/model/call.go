package model

import "time"

// Call lifecycle event names sent by the voice platform.
const (
	EventCallStarted  = "call_started"
	EventCallEnded    = "call_ended"
	EventCallAnalyzed = "call_analyzed"
)

// Classifications recorded in the call log besides the lifecycle events.
const (
	EventUnknown           = "unknown"
	EventTransferRequested = "transfer_requested"
)

// UnknownCallID is recorded when no call id could be recovered from a payload.
const UnknownCallID = "unknown"

// CallEvent is a validated lifecycle webhook. Binding tags are enforced by the
// HTTP engine's validator.
type CallEvent struct {
	Event string `json:"event" binding:"required,oneof=call_started call_ended call_analyzed"`
	Call  Call   `json:"call" binding:"required"`
}

// Call is the call object embedded in lifecycle events. Timestamps are epoch
// milliseconds and may arrive in exponent form such as 1.7e12.
type Call struct {
	CallID         string        `json:"call_id" binding:"required"`
	AgentID        string        `json:"agent_id" binding:"required"`
	CallStatus     string        `json:"call_status" binding:"required"`
	StartTimestamp *float64      `json:"start_timestamp,omitempty"`
	EndTimestamp   *float64      `json:"end_timestamp,omitempty"`
	Transcript     string        `json:"transcript,omitempty"`
	RecordingURL   string        `json:"recording_url,omitempty"`
	FromNumber     string        `json:"from_number,omitempty"`
	ToNumber       string        `json:"to_number,omitempty"`
	Direction      string        `json:"direction,omitempty" binding:"omitempty,oneof=inbound outbound"`
	CallAnalysis   *CallAnalysis `json:"call_analysis,omitempty"`
}

// CallAnalysis is attached by the platform to call_analyzed events.
type CallAnalysis struct {
	CallSummary        string         `json:"call_summary,omitempty"`
	UserSentiment      string         `json:"user_sentiment,omitempty"`
	CallSuccessful     *bool          `json:"call_successful,omitempty"`
	CustomAnalysisData map[string]any `json:"custom_analysis_data,omitempty"`
}

// CallLogEntry is one append-only record of the call log.
type CallLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	CallID    string    `json:"call_id"`
	Data      any       `json:"data"`
}

// TransferRequest is the payload recorded when the agent asks for a human.
type TransferRequest struct {
	Reason     string `json:"reason,omitempty"`
	Department string `json:"department,omitempty"`
	CallID     string `json:"call_id"`
}
