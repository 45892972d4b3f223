package logging

import "github.com/google/uuid"

// NewTraceID mints a fresh correlation id for an event chain (for example, a
// single shoot command through to its delta-sync broadcast). Callers that
// want to correlate a burst of events across a command's lifetime should
// generate one id and attach it to each Event via the TraceID field.
func NewTraceID() string {
	return uuid.NewString()
}
