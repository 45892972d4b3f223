// Package scene loads the catalog of playable scenes (arena bounds and
// spawn points) referenced by lobby creation.
package scene

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SpawnPoint is one candidate location a newly joined player may be placed at.
type SpawnPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Definition describes one scene's playable bounds and spawn points.
type Definition struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Width       float64      `yaml:"width"`
	Height      float64      `yaml:"height"`
	SpawnPoints []SpawnPoint `yaml:"spawn_points"`
}

type catalogFile struct {
	Scenes []Definition `yaml:"scenes"`
}

// Catalog is an immutable lookup of scene definitions keyed by id.
type Catalog struct {
	byID map[string]Definition
}

// Load reads a YAML scene catalog file and builds a Catalog from it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read catalog %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("scene: decode catalog %s: %w", path, err)
	}
	return build(file.Scenes)
}

// LoadDefault parses the embedded fallback scene catalog.
func LoadDefault() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal([]byte(defaultCatalogYAML), &file); err != nil {
		return nil, fmt.Errorf("scene: decode default catalog: %w", err)
	}
	return build(file.Scenes)
}

func build(defs []Definition) (*Catalog, error) {
	byID := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("scene: catalog entry missing id")
		}
		if len(def.SpawnPoints) == 0 {
			return nil, fmt.Errorf("scene: %q has no spawn points", def.ID)
		}
		if _, exists := byID[def.ID]; exists {
			return nil, fmt.Errorf("scene: duplicate catalog id %q", def.ID)
		}
		byID[def.ID] = def
	}
	if len(byID) == 0 {
		return nil, fmt.Errorf("scene: catalog is empty")
	}
	return &Catalog{byID: byID}, nil
}

// Get looks up a scene definition by id.
func (c *Catalog) Get(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	def, ok := c.byID[id]
	return def, ok
}

// Default returns the lexicographically first scene id.
func (c *Catalog) Default() string {
	if c == nil || len(c.byID) == 0 {
		return ""
	}
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0]
}

const defaultCatalogYAML = `
scenes:
  - id: warehouse
    name: Warehouse District
    width: 80
    height: 80
    spawn_points:
      - {x: 4, y: 4}
      - {x: 76, y: 4}
      - {x: 4, y: 76}
      - {x: 76, y: 76}
  - id: rooftops
    name: Rooftop Crossing
    width: 120
    height: 60
    spawn_points:
      - {x: 6, y: 30}
      - {x: 114, y: 30}
`
