package simulation

import (
	"context"

	"crossfire/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a lobby's tick loop takes longer than its fixed-rate budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventTickSkipped is emitted when sustained overrun forces the loop to skip catch-up ticks rather than spiral.
	EventTickSkipped logging.EventType = "simulation.tick_skipped"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// TickBudgetOverrun publishes a warning when a lobby's tick loop exceeds its configured budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}

// TickSkippedPayload captures how many catch-up ticks were dropped to recover real-time pacing.
type TickSkippedPayload struct {
	SkippedTicks uint64 `json:"skippedTicks"`
	Streak       uint64 `json:"streak"`
}

// TickSkipped publishes an error event when the loop sheds catch-up ticks under sustained overrun.
func TickSkipped(ctx context.Context, pub logging.Publisher, tick uint64, payload TickSkippedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickSkipped,
		Tick:     tick,
		Severity: logging.SeverityError,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}
