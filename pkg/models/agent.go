package models

import "time"

// InvocationStatus represents the current state of a single agent subprocess
// invocation within a running session.
type InvocationStatus string

const (
	// InvocationStarting indicates the subprocess has been prepared but not yet spawned.
	InvocationStarting InvocationStatus = "starting"
	// InvocationRunning indicates the subprocess is alive and its event stream is being read.
	InvocationRunning InvocationStatus = "running"
	// InvocationDone indicates the subprocess exited after emitting a result event.
	InvocationDone InvocationStatus = "done"
	// InvocationFailed indicates the subprocess exited without a result event, or errored.
	InvocationFailed InvocationStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s InvocationStatus) Valid() bool {
	switch s {
	case InvocationStarting, InvocationRunning, InvocationDone, InvocationFailed:
		return true
	default:
		return false
	}
}

// Invocation describes the single agent subprocess backing a running
// session. It is never persisted. The Runner does not build one; it keeps
// the claimed-completion count and token totals in local variables.
type Invocation struct {
	// SessionID is the session this invocation belongs to.
	SessionID int64 `json:"session_id"`
	// CorrelationID is a process-unique id, distinct from the integer
	// session id.
	CorrelationID string `json:"correlation_id"`
	Status        InvocationStatus `json:"status"`
	// PID is the process id of the running subprocess, zero for the
	// direct-API invoker which has none.
	PID int `json:"pid,omitempty"`
	// Model is the model shorthand reported by the system-init event.
	Model string `json:"model,omitempty"`
	// BatchIDs are the feature ids assigned to this invocation.
	BatchIDs []int64 `json:"batch_ids"`
	// ClaimedCompletions counts feature_status(id, completed) tool calls
	// observed on the event stream. Informational only; the verified count
	// is the change in completed features over the session.
	ClaimedCompletions int       `json:"claimed_completions"`
	StartedAt          time.Time `json:"started_at"`
}
