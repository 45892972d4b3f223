package tick

import (
	"sync"
	"time"

	"crossfire/server/logging"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to per-actor
	// queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the lobby's command buffer is saturated.
	CommandRejectQueueFull = "queue_full"
)

// Deps bundles the dependencies an Engine needs injected rather than
// constructed internally, so lobby engines stay testable without a live
// logging router or clock.
type Deps struct {
	Logger    Logger
	Metrics   telemetryMetrics
	Clock     logging.Clock
	Publisher logging.Publisher
}

// Engine is the fixed-timestep simulation a Loop drives. A lobby's tick
// loop implements this by coalescing staged commands, advancing reload
// timers and sweeping inactive players, and producing a patch set describing
// what changed since the last tick.
type Engine interface {
	Deps() Deps
	// Apply folds the tick's staged commands into engine state. Commands
	// are delivered in FIFO order; a coalescing engine may keep only the
	// most recent move per actor while preserving order for fire/reload/
	// switch-weapon commands.
	Apply(cmds []Command) error
	// Step advances engine-internal timers (reload countdowns, inactivity
	// timeouts) by one tick.
	Step()
	// DrainPatches returns the per-field deltas accumulated since the last
	// call and resets the accumulator.
	DrainPatches() []Patch
}

// LoopHooks lets the caller observe loop events without subclassing Loop.
type LoopHooks struct {
	Prepare        func(LoopTickContext)
	NextTick       func() uint64
	AfterStep      func(LoopStepResult)
	OnQueueWarning func(length int)
	OnCommandDrop  func(reason string, cmd Command)
}

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
}

// LoopTickContext describes the tick a call to Advance is executing.
type LoopTickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// LoopStepResult reports what happened during one Advance call.
type LoopStepResult struct {
	Tick           uint64
	Now            time.Time
	Delta          float64
	Duration       time.Duration
	Budget         time.Duration
	ClampedDelta   bool
	MaxDelta       float64
	Patches        []Patch
	Commands       []Command
	RemovedPlayers []string
}

// Loop coordinates command ingestion and the fixed-timestep simulation
// runner for a single lobby.
type Loop struct {
	core    Engine
	buffer  *CommandBuffer
	hooks   LoopHooks
	config  LoopConfig
	logger  Logger
	metrics telemetryMetrics

	queueMu       sync.Mutex
	perActorCount map[string]int
	dropCounts    map[string]uint64
}

// NewLoop wraps the provided engine with a ring-buffer command queue and a
// fixed-timestep runner.
func NewLoop(core Engine, cfg LoopConfig, hooks LoopHooks) *Loop {
	if core == nil {
		return nil
	}
	deps := core.Deps()
	buffer := NewCommandBuffer(cfg.CommandCapacity, deps.Metrics)
	return &Loop{
		core:          core,
		buffer:        buffer,
		hooks:         hooks,
		config:        cfg,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		perActorCount: make(map[string]int),
		dropCounts:    make(map[string]uint64),
	}
}

// Deps returns the injected dependencies for the underlying engine.
func (l *Loop) Deps() Deps {
	if l == nil {
		return Deps{}
	}
	return l.core.Deps()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// DrainCommands clears the staged command queue without advancing the engine.
func (l *Loop) DrainCommands() []Command {
	if l == nil {
		return nil
	}
	return l.drainCommands()
}

// Enqueue stages a command, enforcing per-actor throttling and capacity limits.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	reason := ""
	var dropCount uint64
	l.queueMu.Lock()
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		count := l.perActorCount[cmd.ActorID]
		if count >= l.config.PerActorLimit {
			reason = CommandRejectQueueLimit
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else {
			l.perActorCount[cmd.ActorID] = count + 1
		}
	}
	if reason == "" {
		if !l.buffer.Push(cmd) {
			reason = CommandRejectQueueFull
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else if l.config.WarningStep > 0 {
			length := l.buffer.Len()
			if length >= l.config.WarningStep && length%l.config.WarningStep == 0 {
				l.queueMu.Unlock()
				l.warnQueue(length)
				return true, ""
			}
		}
	}
	l.queueMu.Unlock()
	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	return true, ""
}

// Advance executes a single simulation tick using the staged commands.
func (l *Loop) Advance(ctx LoopTickContext) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	commands := l.drainCommands()
	if l.hooks.Prepare != nil {
		l.hooks.Prepare(ctx)
	}
	_ = l.core.Apply(commands)
	l.core.Step()
	return LoopStepResult{
		Tick:           ctx.Tick,
		Now:            ctx.Now,
		Delta:          ctx.Delta,
		Patches:        l.core.DrainPatches(),
		Commands:       commands,
		RemovedPlayers: l.removedPlayers(),
	}
}

// Run drives the fixed-timestep loop until the stop channel closes. Unlike
// a replication engine that must catch up lockstep, a dropped tick here
// simply means this tick's coalesced inputs are folded into the next one —
// there's no keyframe history to reconcile against.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	if tickRate <= 0 {
		tickRate = 50
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	deps := l.core.Deps()
	clock := deps.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}
	last := clock.Now()
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}
	budgetDuration := time.Second / time.Duration(tickRate)

	var tick uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now

			if l.hooks.NextTick != nil {
				tick = l.hooks.NextTick()
			} else {
				tick++
			}

			start := clock.Now()
			result := l.Advance(LoopTickContext{Tick: tick, Now: now, Delta: dt})
			result.Duration = clock.Now().Sub(start)
			result.Budget = budgetDuration
			result.ClampedDelta = clamped
			result.MaxDelta = maxDt

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}

func (l *Loop) removedPlayers() []string {
	if reporter, ok := l.core.(interface{ RemovedPlayers() []string }); ok {
		removed := reporter.RemovedPlayers()
		if len(removed) > 0 {
			copied := make([]string, len(removed))
			copy(copied, removed)
			return copied
		}
	}
	return nil
}

func (l *Loop) incrementDropLocked(actorID string) uint64 {
	if actorID == "" {
		return 0
	}
	count := l.dropCounts[actorID] + 1
	l.dropCounts[actorID] = count
	return count
}

func (l *Loop) warnQueue(length int) {
	if l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(length)
	}
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	if reason == CommandRejectQueueLimit && count > 0 && count&(count-1) == 0 {
		if l.logger != nil {
			l.logger.Printf(
				"[backpressure] dropping command actor=%s type=%s count=%d limit=%d",
				cmd.ActorID,
				cmd.Type,
				count,
				l.config.PerActorLimit,
			)
		}
	}
}

// Ensure Loop satisfies the same shape an Engine exposes for composition.
var _ interface {
	Deps() Deps
	Pending() int
} = (*Loop)(nil)
