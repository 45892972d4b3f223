package weapon

import "testing"

func TestLoadDefaultCatalog(t *testing.T) {
	cat, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error loading default catalog: %v", err)
	}
	if len(cat.Definitions()) == 0 {
		t.Fatalf("expected non-empty default catalog")
	}
	if _, ok := cat.Get("pistol"); !ok {
		t.Fatalf("expected default catalog to contain pistol")
	}
}

func TestDefaultPrefersNonMeleeWeapon(t *testing.T) {
	cat, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def, ok := cat.Get(cat.Default())
	if !ok {
		t.Fatalf("expected Default() to return a catalog id")
	}
	if def.IsMelee() {
		t.Fatalf("expected default loadout to be a firearm, got melee weapon %q", def.ID)
	}
}

func TestMeleeWeaponHasZeroMagazine(t *testing.T) {
	cat, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def, ok := cat.Get("knife")
	if !ok {
		t.Fatalf("expected catalog to contain knife")
	}
	if !def.IsMelee() {
		t.Fatalf("expected knife to be melee")
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	_, err := build([]Definition{
		{ID: "a", FireRate: 1},
		{ID: "a", FireRate: 1},
	})
	if err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestBuildRejectsMissingID(t *testing.T) {
	_, err := build([]Definition{{ID: "", FireRate: 1}})
	if err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestBuildRejectsNonPositiveFireRate(t *testing.T) {
	_, err := build([]Definition{{ID: "a", FireRate: 0}})
	if err == nil {
		t.Fatalf("expected error for non-positive fire_rate")
	}
}

func TestBuildRejectsEmptyCatalog(t *testing.T) {
	_, err := build(nil)
	if err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}

func TestExistsReportsMissingFile(t *testing.T) {
	if Exists("/nonexistent/path/catalog.toml") {
		t.Fatalf("expected Exists to report false for missing file")
	}
	if Exists("") {
		t.Fatalf("expected Exists to report false for empty path")
	}
}
