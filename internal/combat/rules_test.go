package combat

import (
	"testing"
	"time"

	"crossfire/server/internal/lobby"
	"crossfire/server/internal/weapon"
)

func testCatalog(t *testing.T) *weapon.Catalog {
	t.Helper()
	cat, err := weapon.LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error loading catalog: %v", err)
	}
	return cat
}

func TestEquipDefaultFillsMagazine(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}

	rules.EquipDefault(p)

	def, ok := cat.Get(p.WeaponID)
	if !ok {
		t.Fatalf("expected player to be equipped with a catalog weapon, got %q", p.WeaponID)
	}
	if p.AmmoInMag != def.MagazineSize || p.MagCapacity != def.MagazineSize {
		t.Fatalf("expected full magazine %d, got ammo=%d cap=%d", def.MagazineSize, p.AmmoInMag, p.MagCapacity)
	}
}

func TestFireConsumesAmmo(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")

	now := time.Now()
	outcome := rules.Fire(p, now)
	if outcome != ShotFired {
		t.Fatalf("expected first shot to fire, got %v", outcome)
	}
	if p.AmmoInMag != 11 {
		t.Fatalf("expected ammo to decrement to 11, got %d", p.AmmoInMag)
	}
}

func TestFireRejectsWhenRateLimited(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")

	now := time.Now()
	if outcome := rules.Fire(p, now); outcome != ShotFired {
		t.Fatalf("expected first shot to fire, got %v", outcome)
	}
	if outcome := rules.Fire(p, now); outcome != ShotRejectedRateLimited {
		t.Fatalf("expected immediate second shot to be rate limited, got %v", outcome)
	}
}

func TestFireRejectsEmptyMagazine(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")
	p.AmmoInMag = 0

	if outcome := rules.Fire(p, time.Now()); outcome != ShotRejectedEmptyMag {
		t.Fatalf("expected empty magazine rejection, got %v", outcome)
	}
}

func TestFireRejectsWhileReloading(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")
	p.AmmoInMag = 5

	now := time.Now()
	if _, ok := rules.StartReload(p, now); !ok {
		t.Fatalf("expected reload to start")
	}
	if outcome := rules.Fire(p, now); outcome != ShotRejectedReloading {
		t.Fatalf("expected reloading rejection, got %v", outcome)
	}
}

func TestMeleeWeaponNeverEmptiesMagazine(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "knife")

	now := time.Now()
	for i := 0; i < 3; i++ {
		outcome := rules.Fire(p, now)
		if outcome == ShotRejectedEmptyMag {
			t.Fatalf("expected melee weapon never to reject on empty magazine")
		}
		if p.AmmoInMag != 0 {
			t.Fatalf("expected melee ammo to remain 0, got %d", p.AmmoInMag)
		}
		// Space calls out so the fire-rate limiter doesn't reject them.
		now = now.Add(time.Second)
	}
}

func TestStartReloadRejectsWhenMagazineFull(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")

	if _, ok := rules.StartReload(p, time.Now()); ok {
		t.Fatalf("expected reload to be rejected when magazine is already full")
	}
}

func TestStartReloadRejectsForMeleeWeapon(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "knife")

	if _, ok := rules.StartReload(p, time.Now()); ok {
		t.Fatalf("expected reload to be rejected for melee weapon")
	}
}

func TestAdvanceReloadCompletesAfterDuration(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")
	p.AmmoInMag = 3

	now := time.Now()
	duration, ok := rules.StartReload(p, now)
	if !ok {
		t.Fatalf("expected reload to start")
	}

	if rules.AdvanceReload(p, now.Add(duration/2)) {
		t.Fatalf("expected reload not to complete before duration elapses")
	}
	if !p.IsReloading {
		t.Fatalf("expected player to still be reloading")
	}

	if !rules.AdvanceReload(p, now.Add(duration+time.Millisecond)) {
		t.Fatalf("expected reload to complete after duration elapses")
	}
	if p.IsReloading {
		t.Fatalf("expected reload flag to clear after completion")
	}
	if p.AmmoInMag != p.MagCapacity {
		t.Fatalf("expected magazine to refill, got %d/%d", p.AmmoInMag, p.MagCapacity)
	}
}

func TestSwitchWeaponCancelsReloadAndRefillsMagazine(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")
	p.AmmoInMag = 2
	rules.StartReload(p, time.Now())

	if ok := rules.SwitchWeapon(p, "rifle"); !ok {
		t.Fatalf("expected switch to a valid weapon to succeed")
	}
	if p.WeaponID != "rifle" {
		t.Fatalf("expected weapon id to update to rifle, got %q", p.WeaponID)
	}
	if p.IsReloading {
		t.Fatalf("expected reload to be cancelled on weapon switch")
	}
	if p.AmmoInMag != p.MagCapacity {
		t.Fatalf("expected new weapon's magazine to start full")
	}
}

func TestSwitchWeaponRejectsUnknownID(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")

	if ok := rules.SwitchWeapon(p, "railgun"); ok {
		t.Fatalf("expected switch to unknown weapon id to fail")
	}
	if p.WeaponID != "pistol" {
		t.Fatalf("expected weapon to remain unchanged after rejected switch")
	}
}

func TestFireRateResetsAfterWeaponSwitch(t *testing.T) {
	cat := testCatalog(t)
	rules := NewRules(cat)
	p := &lobby.Player{ID: "p1"}
	rules.SwitchWeapon(p, "pistol")

	now := time.Now()
	rules.Fire(p, now)
	rules.SwitchWeapon(p, "rifle")

	if outcome := rules.Fire(p, now); outcome != ShotFired {
		t.Fatalf("expected fresh limiter for the new weapon to allow an immediate shot, got %v", outcome)
	}
}
