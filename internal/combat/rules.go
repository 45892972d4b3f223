// Package combat implements the authoritative fire-rate gate, damage,
// reload, and weapon-switch rules applied during a lobby's tick.
package combat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"crossfire/server/internal/lobby"
	"crossfire/server/internal/weapon"
)

// ShotOutcome reports what happened when Rules.Fire was evaluated.
type ShotOutcome int

const (
	// ShotFired means the shot passed the fire-rate gate and consumed ammo.
	ShotFired ShotOutcome = iota
	// ShotRejectedRateLimited means the fire-rate gate refused the shot.
	ShotRejectedRateLimited
	// ShotRejectedEmptyMag means the magazine is empty and not melee.
	ShotRejectedEmptyMag
	// ShotRejectedReloading means a reload is in progress.
	ShotRejectedReloading
)

// Rules evaluates combat commands against the weapon catalog. One Rules
// instance is shared by every lobby; it keeps a per-player fire-rate
// limiter keyed by (player, weapon) so switching weapons picks up the new
// weapon's cadence immediately.
type Rules struct {
	catalog *weapon.Catalog

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	weaponID string
	limiter  *rate.Limiter
}

// NewRules constructs a Rules evaluator backed by the given weapon catalog.
func NewRules(catalog *weapon.Catalog) *Rules {
	return &Rules{
		catalog:  catalog,
		limiters: make(map[string]*limiterEntry),
	}
}

// EquipDefault sets a freshly joined player's weapon to the catalog's
// default and fills their magazine.
func (r *Rules) EquipDefault(p *lobby.Player) {
	r.equip(p, r.catalog.Default())
}

// SwitchWeapon equips a new weapon, cancels any in-progress reload, and
// refills the magazine to the new weapon's capacity. Reports false if the
// weapon id is not in the catalog.
func (r *Rules) SwitchWeapon(p *lobby.Player, weaponID string) bool {
	if _, ok := r.catalog.Get(weaponID); !ok {
		return false
	}
	r.equip(p, weaponID)
	return true
}

func (r *Rules) equip(p *lobby.Player, weaponID string) {
	def, ok := r.catalog.Get(weaponID)
	if !ok {
		return
	}
	p.WeaponID = def.ID
	p.MagCapacity = def.MagazineSize
	p.AmmoInMag = def.MagazineSize
	p.IsReloading = false
	p.ReloadEndsAt = time.Time{}
}

// Fire evaluates a shoot command for a player at the given time, applying
// the fire-rate gate and ammo check. On ShotFired it decrements the
// player's magazine, except for melee weapons, which track no ammo.
func (r *Rules) Fire(p *lobby.Player, now time.Time) ShotOutcome {
	def, ok := r.catalog.Get(p.WeaponID)
	if !ok {
		return ShotRejectedRateLimited
	}
	if p.IsReloading {
		return ShotRejectedReloading
	}
	if !def.IsMelee() && p.AmmoInMag <= 0 {
		return ShotRejectedEmptyMag
	}
	if !r.limiterFor(p.ID, def).AllowN(now, 1) {
		return ShotRejectedRateLimited
	}
	if !def.IsMelee() {
		p.AmmoInMag--
	}
	p.LastShotAt = now
	return ShotFired
}

// Damage returns the weapon's configured damage for a direct hit.
func (r *Rules) Damage(weaponID string) float64 {
	def, ok := r.catalog.Get(weaponID)
	if !ok {
		return 0
	}
	return def.Damage
}

// StartReload begins a reload for the player's equipped weapon, returning
// false if the magazine is already full, the weapon is melee, or a reload
// is already underway.
func (r *Rules) StartReload(p *lobby.Player, now time.Time) (time.Duration, bool) {
	def, ok := r.catalog.Get(p.WeaponID)
	if !ok || def.IsMelee() {
		return 0, false
	}
	if p.IsReloading || p.AmmoInMag >= p.MagCapacity {
		return 0, false
	}
	duration := time.Duration(def.ReloadSeconds * float64(time.Second))
	p.IsReloading = true
	p.ReloadEndsAt = now.Add(duration)
	return duration, true
}

// AdvanceReload completes any in-progress reload whose timer has elapsed.
// Called once per tick for every player.
func (r *Rules) AdvanceReload(p *lobby.Player, now time.Time) bool {
	if !p.IsReloading {
		return false
	}
	if now.Before(p.ReloadEndsAt) {
		return false
	}
	p.IsReloading = false
	p.ReloadEndsAt = time.Time{}
	p.AmmoInMag = p.MagCapacity
	return true
}

func (r *Rules) limiterFor(playerID string, def weapon.Definition) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.limiters[playerID]
	if ok && entry.weaponID == def.ID {
		return entry.limiter
	}
	burst := 1
	limiter := rate.NewLimiter(rate.Limit(def.FireRate), burst)
	r.limiters[playerID] = &limiterEntry{weaponID: def.ID, limiter: limiter}
	return limiter
}

// ReleasePlayer drops the per-player limiter state, called when a player
// leaves the lobby so the map doesn't grow unbounded over a long session.
func (r *Rules) ReleasePlayer(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.limiters, playerID)
}
