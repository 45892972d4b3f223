package tick

import "testing"

func TestDiffNoChangeEmitsNoPatches(t *testing.T) {
	snap := FieldSnapshot{X: 10, Y: 20, Health: 100, MaxHealth: 100, WeaponID: "pistol", AmmoInMag: 12, MagCapacity: 12}
	if patches := Diff("p1", snap, snap); len(patches) != 0 {
		t.Fatalf("expected no patches for identical snapshots, got %d", len(patches))
	}
}

func TestDiffPositionChangeCoalescesToOnePatch(t *testing.T) {
	prev := FieldSnapshot{X: 0, Y: 0, Rotation: 0}
	next := FieldSnapshot{X: 5, Y: 5, Rotation: 1.5}

	patches := Diff("p1", prev, next)
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch for combined position change, got %d", len(patches))
	}
	if patches[0].Kind != PatchPlayerPos {
		t.Fatalf("expected kind %q, got %q", PatchPlayerPos, patches[0].Kind)
	}
	payload, ok := patches[0].Payload.(PositionPayload)
	if !ok {
		t.Fatalf("expected PositionPayload, got %T", patches[0].Payload)
	}
	if payload.X != 5 || payload.Y != 5 || payload.Rotation != 1.5 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDiffEmitsOnePatchPerChangedGroup(t *testing.T) {
	prev := FieldSnapshot{Health: 100, MaxHealth: 100, AmmoInMag: 12, MagCapacity: 12, WeaponID: "pistol", IsReloading: false}
	next := FieldSnapshot{Health: 80, MaxHealth: 100, AmmoInMag: 12, MagCapacity: 12, WeaponID: "smg", IsReloading: true}

	patches := Diff("p1", prev, next)
	kinds := make(map[PatchKind]bool)
	for _, p := range patches {
		kinds[p.Kind] = true
		if p.PlayerID != "p1" {
			t.Fatalf("expected playerID p1, got %s", p.PlayerID)
		}
	}
	if !kinds[PatchPlayerHealth] || !kinds[PatchPlayerWeapon] || !kinds[PatchPlayerReloading] {
		t.Fatalf("expected health, weapon and reloading patches, got %+v", kinds)
	}
	if kinds[PatchPlayerAmmo] || kinds[PatchPlayerPos] {
		t.Fatalf("expected no ammo/position patches, got %+v", kinds)
	}
	if len(patches) != 3 {
		t.Fatalf("expected exactly 3 patches, got %d", len(patches))
	}
}

func TestDiffAmmoChangeIndependentOfWeapon(t *testing.T) {
	prev := FieldSnapshot{WeaponID: "pistol", AmmoInMag: 12, MagCapacity: 12}
	next := FieldSnapshot{WeaponID: "pistol", AmmoInMag: 11, MagCapacity: 12}

	patches := Diff("p1", prev, next)
	if len(patches) != 1 || patches[0].Kind != PatchPlayerAmmo {
		t.Fatalf("expected single ammo patch, got %+v", patches)
	}
}
