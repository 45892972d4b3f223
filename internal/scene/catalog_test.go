package scene

import "testing"

func TestLoadDefaultCatalog(t *testing.T) {
	cat, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error loading default catalog: %v", err)
	}
	def, ok := cat.Get("warehouse")
	if !ok {
		t.Fatalf("expected default catalog to contain warehouse")
	}
	if len(def.SpawnPoints) != 4 {
		t.Fatalf("expected warehouse to have 4 spawn points, got %d", len(def.SpawnPoints))
	}
}

func TestDefaultReturnsLexicographicallyFirstID(t *testing.T) {
	cat, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cat.Default(); got != "rooftops" {
		t.Fatalf("expected default scene id %q, got %q", "rooftops", got)
	}
}

func TestBuildRejectsSceneWithoutSpawnPoints(t *testing.T) {
	_, err := build([]Definition{{ID: "a"}})
	if err == nil {
		t.Fatalf("expected error for scene with no spawn points")
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	def := Definition{ID: "a", SpawnPoints: []SpawnPoint{{X: 1, Y: 1}}}
	_, err := build([]Definition{def, def})
	if err == nil {
		t.Fatalf("expected error for duplicate scene id")
	}
}

func TestGetOnNilCatalogIsSafe(t *testing.T) {
	var cat *Catalog
	if _, ok := cat.Get("warehouse"); ok {
		t.Fatalf("expected nil catalog lookup to miss")
	}
}
