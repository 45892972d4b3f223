package combat

import (
	"context"

	"crossfire/server/logging"
)

const (
	// EventShotFired is emitted when a fire command passes the fire-rate gate and ammo check.
	EventShotFired logging.EventType = "combat.shot_fired"
	// EventShotRejected is emitted when a fire command is refused (rate-limited, empty magazine, reloading).
	EventShotRejected logging.EventType = "combat.shot_rejected"
	// EventDamageApplied is emitted when a shot's damage is applied to a target.
	EventDamageApplied logging.EventType = "combat.damage_applied"
	// EventPlayerEliminated is emitted when a player's health reaches zero.
	EventPlayerEliminated logging.EventType = "combat.player_eliminated"
	// EventReloadStarted is emitted when a player begins a reload.
	EventReloadStarted logging.EventType = "combat.reload_started"
	// EventReloadFinished is emitted when a reload timer completes and the magazine refills.
	EventReloadFinished logging.EventType = "combat.reload_finished"
	// EventWeaponSwitched is emitted when a player equips a different weapon.
	EventWeaponSwitched logging.EventType = "combat.weapon_switched"
)

// ShotFiredPayload captures the weapon and remaining ammo after a shot leaves the gun.
type ShotFiredPayload struct {
	WeaponID    string `json:"weaponId"`
	AmmoInMag   int    `json:"ammoInMag"`
	MagCapacity int    `json:"magCapacity"`
}

// ShotRejectedReason enumerates why a fire command was refused.
type ShotRejectedReason string

const (
	ShotRejectedRateLimited ShotRejectedReason = "rate_limited"
	ShotRejectedEmptyMag    ShotRejectedReason = "empty_magazine"
	ShotRejectedReloading   ShotRejectedReason = "reloading"
)

// ShotRejectedPayload captures why a fire command did not produce a shot.
type ShotRejectedPayload struct {
	WeaponID string             `json:"weaponId"`
	Reason   ShotRejectedReason `json:"reason"`
}

// DamageAppliedPayload captures the amount dealt to a single target.
type DamageAppliedPayload struct {
	WeaponID     string  `json:"weaponId"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// PlayerEliminatedPayload describes the context for a fatal hit.
type PlayerEliminatedPayload struct {
	WeaponID string `json:"weaponId"`
}

// ReloadStartedPayload captures the weapon and expected duration of a reload.
type ReloadStartedPayload struct {
	WeaponID      string  `json:"weaponId"`
	DurationMs    int64   `json:"durationMs"`
	AmmoRemaining int     `json:"ammoRemaining"`
	ReloadSpeed   float64 `json:"reloadSpeed,omitempty"`
}

// ReloadFinishedPayload captures the magazine state once a reload completes.
type ReloadFinishedPayload struct {
	WeaponID    string `json:"weaponId"`
	AmmoInMag   int    `json:"ammoInMag"`
	MagCapacity int    `json:"magCapacity"`
}

// WeaponSwitchedPayload captures the previous and newly equipped weapon.
type WeaponSwitchedPayload struct {
	FromWeaponID string `json:"fromWeaponId,omitempty"`
	ToWeaponID   string `json:"toWeaponId"`
	CancelledReload bool `json:"cancelledReload"`
}

// ShotFired publishes a successful shot event.
func ShotFired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ShotFiredPayload, extra map[string]any) {
	publish(ctx, pub, EventShotFired, tick, actor, nil, logging.SeverityDebug, payload, extra)
}

// ShotRejected publishes a rejected fire command.
func ShotRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ShotRejectedPayload, extra map[string]any) {
	publish(ctx, pub, EventShotRejected, tick, actor, nil, logging.SeverityDebug, payload, extra)
}

// DamageApplied publishes a damage event for a single target.
func DamageApplied(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload DamageAppliedPayload, extra map[string]any) {
	publish(ctx, pub, EventDamageApplied, tick, actor, []logging.EntityRef{target}, logging.SeverityInfo, payload, extra)
}

// PlayerEliminated publishes an elimination event for the defeated player.
func PlayerEliminated(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload PlayerEliminatedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerEliminated, tick, actor, []logging.EntityRef{target}, logging.SeverityInfo, payload, extra)
}

// ReloadStarted publishes a reload-begin event.
func ReloadStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReloadStartedPayload, extra map[string]any) {
	publish(ctx, pub, EventReloadStarted, tick, actor, nil, logging.SeverityDebug, payload, extra)
}

// ReloadFinished publishes a reload-complete event.
func ReloadFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReloadFinishedPayload, extra map[string]any) {
	publish(ctx, pub, EventReloadFinished, tick, actor, nil, logging.SeverityDebug, payload, extra)
}

// WeaponSwitched publishes a weapon-switch event.
func WeaponSwitched(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload WeaponSwitchedPayload, extra map[string]any) {
	publish(ctx, pub, EventWeaponSwitched, tick, actor, nil, logging.SeverityDebug, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, sev logging.Severity, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: sev,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}
