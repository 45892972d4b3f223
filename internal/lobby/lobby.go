package lobby

import (
	"context"
	"sync"
	"time"

	"crossfire/server/internal/combat"
	"crossfire/server/internal/scene"
	"crossfire/server/internal/tick"
	"crossfire/server/logging"
	combatlog "crossfire/server/logging/combat"
	lifecyclelog "crossfire/server/logging/lifecycle"
)

// Config tunes one lobby's gameplay parameters.
type Config struct {
	Code            string
	MaxPlayers      int
	SceneID         string
	InactiveTimeout time.Duration
}

// Lobby holds authoritative state for one arena instance and implements
// tick.Engine. Players is guarded by mu because the control plane adds
// players synchronously (on join) from a goroutine other than the tick
// loop; Apply/Step/DrainPatches all run exclusively on the tick goroutine
// but still take the lock for the brief critical sections that touch the
// map, since a join can land mid-tick.
type Lobby struct {
	cfg   Config
	scene scene.Definition
	rules *combat.Rules

	deps tick.Deps

	mu       sync.RWMutex
	players  map[string]*Player
	baseline map[string]tick.FieldSnapshot
	joined   []string
	left     []string
	removed  []string

	spawnCursor int
}

// New constructs an empty lobby ready to be wrapped in a tick.Loop.
func New(cfg Config, sceneDef scene.Definition, rules *combat.Rules, deps tick.Deps) *Lobby {
	return &Lobby{
		cfg:      cfg,
		scene:    sceneDef,
		rules:    rules,
		deps:     deps,
		players:  make(map[string]*Player),
		baseline: make(map[string]tick.FieldSnapshot),
	}
}

// Deps implements tick.Engine.
func (l *Lobby) Deps() tick.Deps { return l.deps }

// Code returns the lobby's join code.
func (l *Lobby) Code() string { return l.cfg.Code }

// PlayerCount reports the number of currently connected players.
func (l *Lobby) PlayerCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.players)
}

// Full reports whether the lobby has reached its configured capacity.
func (l *Lobby) Full() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg.MaxPlayers > 0 && len(l.players) >= l.cfg.MaxPlayers
}

// Snapshot returns a point-in-time copy of every connected player, sorted
// by nothing in particular (callers that need stable order sort it).
func (l *Lobby) Snapshot() []Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Snapshot, 0, len(l.players))
	for _, p := range l.players {
		out = append(out, p.Snapshot())
	}
	return out
}

// AddPlayer creates a new player entry synchronously, used by the control
// plane's join handler so a just-joined player is immediately visible to
// GetLobby without waiting for the first UDP command.
func (l *Lobby) AddPlayer(id, name string) (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cfg.MaxPlayers > 0 && len(l.players) >= l.cfg.MaxPlayers {
		return Snapshot{}, false
	}
	spawn := l.nextSpawnLocked()
	p := &Player{
		ID:           id,
		Name:         name,
		X:            spawn.X,
		Y:            spawn.Y,
		Health:       100,
		MaxHealth:    100,
		Connected:    true,
		LastActiveAt: time.Now(),
	}
	l.rules.EquipDefault(p)
	l.players[id] = p
	l.joined = append(l.joined, id)
	lifecyclelog.PlayerJoined(context.Background(), l.deps.Publisher, 0,
		logging.EntityRef{ID: id, Kind: "player"},
		lifecyclelog.PlayerJoinedPayload{LobbyCode: l.cfg.Code, SpawnX: spawn.X, SpawnY: spawn.Y}, nil)
	return p.Snapshot(), true
}

func (l *Lobby) nextSpawnLocked() scene.SpawnPoint {
	if len(l.scene.SpawnPoints) == 0 {
		return scene.SpawnPoint{}
	}
	point := l.scene.SpawnPoints[l.spawnCursor%len(l.scene.SpawnPoints)]
	l.spawnCursor++
	return point
}

// Apply implements tick.Engine. It folds this tick's coalesced commands
// into player state: the most recent Move per actor, then every stateful
// command (Shoot/Reload/SwitchWeapon/Leave) in arrival order.
func (l *Lobby) Apply(cmds []tick.Command) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	latestMove := make(map[string]MovePayload)
	for _, cmd := range cmds {
		if cmd.Type == CommandMove {
			if payload, ok := cmd.Payload.(MovePayload); ok {
				latestMove[cmd.ActorID] = payload
			}
		}
	}
	for actorID, move := range latestMove {
		p, ok := l.players[actorID]
		if !ok {
			continue
		}
		p.X = move.X
		p.Y = move.Y
		p.Rotation = move.Rotation
		p.LastActiveAt = time.Now()
	}

	for _, cmd := range cmds {
		p, ok := l.players[cmd.ActorID]
		if !ok {
			continue
		}
		p.LastActiveAt = time.Now()
		switch cmd.Type {
		case CommandShoot:
			l.applyShootLocked(p)
		case CommandReload:
			l.applyReloadLocked(p)
		case CommandSwitchWeapon:
			if payload, ok := cmd.Payload.(SwitchWeaponPayload); ok {
				l.applySwitchWeaponLocked(p, payload.WeaponID)
			}
		case CommandLeave:
			lifecyclelog.PlayerLeft(context.Background(), l.deps.Publisher, 0,
				logging.EntityRef{ID: cmd.ActorID, Kind: "player"},
				lifecyclelog.PlayerLeftPayload{LobbyCode: l.cfg.Code}, nil)
			l.removePlayerLocked(cmd.ActorID)
		}
	}
	return nil
}

func (l *Lobby) applyShootLocked(p *Player) {
	actor := logging.EntityRef{ID: p.ID, Kind: "player"}
	now := time.Now()
	outcome := l.rules.Fire(p, now)
	if outcome != combat.ShotFired {
		combatlog.ShotRejected(context.Background(), l.deps.Publisher, 0, actor,
			combatlog.ShotRejectedPayload{WeaponID: p.WeaponID, Reason: shotRejectedReason(outcome)}, nil)
		return
	}
	combatlog.ShotFired(context.Background(), l.deps.Publisher, 0, actor,
		combatlog.ShotFiredPayload{WeaponID: p.WeaponID, AmmoInMag: p.AmmoInMag, MagCapacity: p.MagCapacity}, nil)

	for _, target := range l.players {
		if target.ID == p.ID || !target.IsAlive() {
			continue
		}
		// Authoritative hit detection beyond line-of-sight/range bounds
		// checking is out of scope; any live target in the lobby is a
		// valid recipient of a fired shot.
		damage := l.rules.Damage(p.WeaponID)
		target.ApplyHealthDelta(-damage)
		targetRef := logging.EntityRef{ID: target.ID, Kind: "player"}
		combatlog.DamageApplied(context.Background(), l.deps.Publisher, 0, actor, targetRef,
			combatlog.DamageAppliedPayload{WeaponID: p.WeaponID, Amount: damage, TargetHealth: target.Health}, nil)
		if !target.IsAlive() {
			combatlog.PlayerEliminated(context.Background(), l.deps.Publisher, 0, actor, targetRef,
				combatlog.PlayerEliminatedPayload{WeaponID: p.WeaponID}, nil)
			l.removePlayerLocked(target.ID)
		}
		break
	}
}

func shotRejectedReason(outcome combat.ShotOutcome) combatlog.ShotRejectedReason {
	switch outcome {
	case combat.ShotRejectedEmptyMag:
		return combatlog.ShotRejectedEmptyMag
	case combat.ShotRejectedReloading:
		return combatlog.ShotRejectedReloading
	default:
		return combatlog.ShotRejectedRateLimited
	}
}

func (l *Lobby) applyReloadLocked(p *Player) {
	actor := logging.EntityRef{ID: p.ID, Kind: "player"}
	duration, ok := l.rules.StartReload(p, time.Now())
	if !ok {
		return
	}
	combatlog.ReloadStarted(context.Background(), l.deps.Publisher, 0, actor,
		combatlog.ReloadStartedPayload{WeaponID: p.WeaponID, DurationMs: duration.Milliseconds(), AmmoRemaining: p.AmmoInMag}, nil)
}

func (l *Lobby) applySwitchWeaponLocked(p *Player, weaponID string) {
	actor := logging.EntityRef{ID: p.ID, Kind: "player"}
	from := p.WeaponID
	wasReloading := p.IsReloading
	if !l.rules.SwitchWeapon(p, weaponID) {
		return
	}
	combatlog.WeaponSwitched(context.Background(), l.deps.Publisher, 0, actor,
		combatlog.WeaponSwitchedPayload{FromWeaponID: from, ToWeaponID: p.WeaponID, CancelledReload: wasReloading}, nil)
}

func (l *Lobby) removePlayerLocked(playerID string) {
	if _, ok := l.players[playerID]; !ok {
		return
	}
	delete(l.players, playerID)
	delete(l.baseline, playerID)
	l.rules.ReleasePlayer(playerID)
	l.left = append(l.left, playerID)
	l.removed = append(l.removed, playerID)
}

// Step implements tick.Engine: advances reload timers and sweeps inactive
// players.
func (l *Lobby) Step() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	for _, p := range l.players {
		if l.rules.AdvanceReload(p, now) {
			combatlog.ReloadFinished(context.Background(), l.deps.Publisher, 0,
				logging.EntityRef{ID: p.ID, Kind: "player"},
				combatlog.ReloadFinishedPayload{WeaponID: p.WeaponID, AmmoInMag: p.AmmoInMag, MagCapacity: p.MagCapacity}, nil)
		}
	}
	if l.cfg.InactiveTimeout > 0 {
		for id, p := range l.players {
			if idle := now.Sub(p.LastActiveAt); idle > l.cfg.InactiveTimeout {
				lifecyclelog.PlayerEvicted(context.Background(), l.deps.Publisher, 0,
					logging.EntityRef{ID: id, Kind: "player"},
					lifecyclelog.PlayerEvictedPayload{LobbyCode: l.cfg.Code, IdleDuration: idle.Milliseconds()}, nil)
				l.removePlayerLocked(id)
			}
		}
	}
}

// DrainPatches implements tick.Engine: computes a per-player field diff
// against the last broadcast baseline and returns one patch per changed
// field group, plus join/leave announcements.
func (l *Lobby) DrainPatches() []tick.Patch {
	l.mu.Lock()
	defer l.mu.Unlock()

	var patches []tick.Patch
	for _, id := range l.joined {
		patches = append(patches, tick.Patch{Kind: tick.PatchPlayerJoined, PlayerID: id})
	}
	for _, id := range l.left {
		patches = append(patches, tick.Patch{Kind: tick.PatchPlayerLeft, PlayerID: id})
	}
	l.joined = nil
	l.left = nil

	for id, p := range l.players {
		next := tick.FieldSnapshot{
			X: p.X, Y: p.Y, Rotation: p.Rotation,
			Health: p.Health, MaxHealth: p.MaxHealth,
			WeaponID: p.WeaponID, AmmoInMag: p.AmmoInMag, MagCapacity: p.MagCapacity,
			IsReloading: p.IsReloading,
		}
		prev, ok := l.baseline[id]
		if !ok {
			// New player's first tick: every field is "changed" against zero value.
			prev = tick.FieldSnapshot{}
		}
		patches = append(patches, tick.Diff(id, prev, next)...)
		l.baseline[id] = next
	}
	return patches
}

// RemovedPlayers reports ids removed during the most recent Apply/Step,
// consumed by tick.Loop to report eliminations to the caller.
func (l *Lobby) RemovedPlayers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.removed) == 0 {
		return nil
	}
	removed := l.removed
	l.removed = nil
	return removed
}

var _ tick.Engine = (*Lobby)(nil)
