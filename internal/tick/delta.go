package tick

// PatchKind identifies the type of diff entry in a broadcast delta.
type PatchKind string

const (
	// PatchPlayerPos updates a player's position and facing.
	PatchPlayerPos PatchKind = "player_pos"
	// PatchPlayerHealth updates a player's health pool.
	PatchPlayerHealth PatchKind = "player_health"
	// PatchPlayerAmmo updates a player's magazine contents.
	PatchPlayerAmmo PatchKind = "player_ammo"
	// PatchPlayerWeapon updates a player's equipped weapon.
	PatchPlayerWeapon PatchKind = "player_weapon"
	// PatchPlayerReloading updates a player's reload-in-progress flag.
	PatchPlayerReloading PatchKind = "player_reloading"
	// PatchPlayerJoined announces a new player to existing lobby members.
	PatchPlayerJoined PatchKind = "player_joined"
	// PatchPlayerLeft announces a player's departure.
	PatchPlayerLeft PatchKind = "player_left"
)

// Patch is a single field-level delta destined for the per-lobby broadcast.
type Patch struct {
	Kind     PatchKind `json:"kind"`
	PlayerID string    `json:"playerId"`
	Payload  any       `json:"payload,omitempty"`
}

// PositionPayload captures the coordinates and facing for a position patch.
type PositionPayload struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// HealthPayload captures the health pool for a health patch.
type HealthPayload struct {
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
}

// AmmoPayload captures the magazine contents for an ammo patch.
type AmmoPayload struct {
	AmmoInMag   int `json:"ammoInMag"`
	MagCapacity int `json:"magCapacity"`
}

// WeaponPayload captures the equipped weapon id for a weapon patch.
type WeaponPayload struct {
	WeaponID string `json:"weaponId"`
}

// ReloadingPayload captures the reload-in-progress flag for a reloading patch.
type ReloadingPayload struct {
	IsReloading bool `json:"isReloading"`
}

// FieldSnapshot is the comparable subset of a player's state the delta
// computation diffs tick over tick. A coalescing engine keeps one of these
// per player as its "last broadcast" baseline.
type FieldSnapshot struct {
	X           float64
	Y           float64
	Rotation    float64
	Health      float64
	MaxHealth   float64
	WeaponID    string
	AmmoInMag   int
	MagCapacity int
	IsReloading bool
}

// Diff compares a player's current field snapshot against the last
// broadcast baseline and returns one Patch per changed field group. Only
// position coalesces (a single patch regardless of how many fields moved);
// every other field is independently significant so each gets its own
// patch, matching the teacher's one-patch-per-concern granularity.
func Diff(playerID string, prev, next FieldSnapshot) []Patch {
	var patches []Patch

	if next.X != prev.X || next.Y != prev.Y || next.Rotation != prev.Rotation {
		patches = append(patches, Patch{
			Kind:     PatchPlayerPos,
			PlayerID: playerID,
			Payload:  PositionPayload{X: next.X, Y: next.Y, Rotation: next.Rotation},
		})
	}
	if next.Health != prev.Health || next.MaxHealth != prev.MaxHealth {
		patches = append(patches, Patch{
			Kind:     PatchPlayerHealth,
			PlayerID: playerID,
			Payload:  HealthPayload{Health: next.Health, MaxHealth: next.MaxHealth},
		})
	}
	if next.AmmoInMag != prev.AmmoInMag || next.MagCapacity != prev.MagCapacity {
		patches = append(patches, Patch{
			Kind:     PatchPlayerAmmo,
			PlayerID: playerID,
			Payload:  AmmoPayload{AmmoInMag: next.AmmoInMag, MagCapacity: next.MagCapacity},
		})
	}
	if next.WeaponID != prev.WeaponID {
		patches = append(patches, Patch{
			Kind:     PatchPlayerWeapon,
			PlayerID: playerID,
			Payload:  WeaponPayload{WeaponID: next.WeaponID},
		})
	}
	if next.IsReloading != prev.IsReloading {
		patches = append(patches, Patch{
			Kind:     PatchPlayerReloading,
			PlayerID: playerID,
			Payload:  ReloadingPayload{IsReloading: next.IsReloading},
		})
	}

	return patches
}
