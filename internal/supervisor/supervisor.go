// Package supervisor owns lobby lifecycle: creating a lobby's simulation
// state and tick goroutine, registering it, and tearing it down once it
// empties out.
package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"crossfire/server/internal/broadcast"
	"crossfire/server/internal/combat"
	"crossfire/server/internal/ingress"
	"crossfire/server/internal/lobby"
	"crossfire/server/internal/metrics"
	"crossfire/server/internal/registry"
	"crossfire/server/internal/scene"
	"crossfire/server/internal/tick"
	"crossfire/server/internal/weapon"
	"crossfire/server/logging"
	lifecyclelog "crossfire/server/logging/lifecycle"
	simlog "crossfire/server/logging/simulation"
)

// ErrLobbyExists is returned when CreateLobby is called with a code that's
// already registered.
var ErrLobbyExists = errors.New("supervisor: lobby code already exists")

// ErrUnknownScene is returned when CreateLobby names a scene the catalog
// doesn't have.
var ErrUnknownScene = errors.New("supervisor: unknown scene id")

// Config tunes every lobby the supervisor creates.
type Config struct {
	TickRate        int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
	CatchupMaxTicks int
	InactiveTimeout time.Duration
}

// Supervisor creates, tracks, and tears down lobbies.
type Supervisor struct {
	cfg        Config
	registry   *registry.Registry
	weapons    *weapon.Catalog
	scenes     *scene.Catalog
	rules      *combat.Rules
	publisher  logging.Publisher
	metrics    *metrics.Metrics
	ingress    *ingress.Router
	broadcaster *broadcast.Broadcaster

	playerSeq atomic.Uint64
}

// New constructs a Supervisor wired to its collaborators.
func New(
	cfg Config,
	reg *registry.Registry,
	weapons *weapon.Catalog,
	scenes *scene.Catalog,
	publisher logging.Publisher,
	metricsReg *metrics.Metrics,
	ingressRouter *ingress.Router,
	broadcaster *broadcast.Broadcaster,
) *Supervisor {
	return &Supervisor{
		cfg:         cfg,
		registry:    reg,
		weapons:     weapons,
		scenes:      scenes,
		rules:       combat.NewRules(weapons),
		publisher:   publisher,
		metrics:     metricsReg,
		ingress:     ingressRouter,
		broadcaster: broadcaster,
	}
}

// NextPlayerID allocates a monotonic player id for a join.
func (s *Supervisor) NextPlayerID() string {
	return formatPlayerID(s.playerSeq.Add(1))
}

func formatPlayerID(seq uint64) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if seq == 0 {
		return "p0"
	}
	buf := make([]byte, 0, 16)
	for seq > 0 {
		buf = append([]byte{alphabet[seq%uint64(len(alphabet))]}, buf...)
		seq /= uint64(len(alphabet))
	}
	return "p" + string(buf)
}

// CreateLobby registers a new lobby, starts its tick goroutine, and
// returns ErrLobbyExists on a duplicate code or ErrUnknownScene if the
// scene id isn't in the catalog.
func (s *Supervisor) CreateLobby(code string, maxPlayers int, sceneID string) error {
	sceneDef, ok := s.scenes.Get(sceneID)
	if !ok {
		return ErrUnknownScene
	}

	lobbyCfg := lobby.Config{
		Code:            code,
		MaxPlayers:      maxPlayers,
		SceneID:         sceneID,
		InactiveTimeout: s.cfg.InactiveTimeout,
	}
	deps := tick.Deps{
		Metrics:   s.metrics.ForLobby(code),
		Clock:     logging.SystemClock{},
		Publisher: s.publisher,
	}
	lob := lobby.New(lobbyCfg, sceneDef, s.rules, deps)

	var tickCounter atomic.Uint64
	var overrunStreak atomic.Uint64
	budget := time.Second / time.Duration(max(s.cfg.TickRate, 1))

	hooks := tick.LoopHooks{
		NextTick: func() uint64 { return tickCounter.Add(1) },
		AfterStep: func(result tick.LoopStepResult) {
			if result.Duration > budget {
				streak := overrunStreak.Add(1)
				simlog.TickBudgetOverrun(context.Background(), s.publisher, result.Tick, simlog.TickBudgetOverrunPayload{
					DurationMillis: result.Duration.Milliseconds(),
					BudgetMillis:   budget.Milliseconds(),
					Ratio:          float64(result.Duration) / float64(budget),
					Streak:         streak,
				}, nil)
				if result.ClampedDelta && streak >= uint64(max(s.cfg.CatchupMaxTicks, 1)) {
					simlog.TickSkipped(context.Background(), s.publisher, result.Tick, simlog.TickSkippedPayload{
						SkippedTicks: uint64(max(s.cfg.CatchupMaxTicks-1, 0)),
						Streak:       streak,
					}, nil)
				}
			} else {
				overrunStreak.Store(0)
			}
			s.metrics.TickDuration.WithLabelValues(code).Observe(result.Duration.Seconds())

			if len(result.Patches) > 0 {
				recipients := s.ingress.Recipients(code)
				_ = s.broadcaster.Broadcast(code, result.Tick, result.Patches, recipients)
			}
			if len(result.RemovedPlayers) > 0 {
				s.metrics.PlayersActive.Sub(float64(len(result.RemovedPlayers)))
				if lob.PlayerCount() == 0 {
					go s.RemoveLobby(code, "empty")
				}
			}
		},
	}

	loop := tick.NewLoop(lob, tick.LoopConfig{
		TickRate:        s.cfg.TickRate,
		CatchupMaxTicks: s.cfg.CatchupMaxTicks,
		CommandCapacity: s.cfg.CommandCapacity,
		PerActorLimit:   s.cfg.PerActorLimit,
		WarningStep:     s.cfg.WarningStep,
	}, hooks)

	handle := &registry.Handle{Code: code, Lobby: lob, Loop: loop, Stop: make(chan struct{})}
	if !s.registry.Insert(handle) {
		return ErrLobbyExists
	}

	go loop.Run(handle.Stop)

	s.metrics.LobbiesActive.Inc()
	lifecyclelog.LobbyCreated(context.Background(), s.publisher, 0, lifecyclelog.LobbyCreatedPayload{
		LobbyCode: code, SceneID: sceneID, MaxPlayers: maxPlayers,
	}, nil)
	return nil
}

// JoinLobby allocates a player id and synchronously creates the player
// inside the target lobby, so GetLobby reflects the new member immediately.
func (s *Supervisor) JoinLobby(code, name string) (string, lobby.Snapshot, error) {
	handle, ok := s.registry.Get(code)
	if !ok {
		return "", lobby.Snapshot{}, errors.New("supervisor: unknown lobby")
	}
	playerID := s.NextPlayerID()
	snap, added := handle.Lobby.AddPlayer(playerID, name)
	if !added {
		return "", lobby.Snapshot{}, errors.New("supervisor: lobby is full")
	}
	s.metrics.PlayersActive.Inc()
	return playerID, snap, nil
}

// GetLobby returns a lobby's current player snapshots.
func (s *Supervisor) GetLobby(code string) ([]lobby.Snapshot, bool) {
	handle, ok := s.registry.Get(code)
	if !ok {
		return nil, false
	}
	return handle.Lobby.Snapshot(), true
}

// ListLobbies returns every registered lobby code.
func (s *Supervisor) ListLobbies() []string {
	return s.registry.Codes()
}

// RemoveLobby stops a lobby's tick goroutine and removes it from the
// registry. It is the single choke point for teardown so ingress never
// observes a half-removed lobby.
func (s *Supervisor) RemoveLobby(code, reason string) {
	handle, ok := s.registry.Remove(code)
	if !ok {
		return
	}
	close(handle.Stop)
	s.ingress.Forget(code)
	s.metrics.LobbiesActive.Dec()
	lifecyclelog.LobbyRemoved(context.Background(), s.publisher, 0, lifecyclelog.LobbyRemovedPayload{
		LobbyCode: code, Reason: reason,
	}, nil)
}
