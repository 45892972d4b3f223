package tick

import "time"

// Command is a single staged client intent waiting to be applied on the
// next tick. Type discriminates the payload shape (move, shoot, reload,
// switch_weapon, leave); Payload carries the type-specific fields decoded
// by the ingress layer.
type Command struct {
	ID         uint64
	ActorID    string
	Type       string
	Payload    any
	EnqueuedAt time.Time
}

// Logger is the minimal structured-logging surface the loop needs for
// backpressure diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}
