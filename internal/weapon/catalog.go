// Package weapon loads and serves the immutable weapon catalog: per-weapon
// fire rate, magazine size, reload duration, and damage, keyed by id.
package weapon

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// Definition describes the authoritative combat stats for one weapon.
// MagazineSize of zero marks a melee weapon: it never reloads and FireRate
// is interpreted as swing rate rather than rounds per second.
type Definition struct {
	ID            string  `toml:"id"`
	Name          string  `toml:"name"`
	FireRate      float64 `toml:"fire_rate"`
	MagazineSize  int     `toml:"magazine_size"`
	ReloadSeconds float64 `toml:"reload_seconds"`
	Damage        float64 `toml:"damage"`
}

// IsMelee reports whether this weapon skips ammo and reload bookkeeping.
func (d Definition) IsMelee() bool {
	return d.MagazineSize == 0
}

type catalogFile struct {
	Weapons []Definition `toml:"weapon"`
}

// Catalog is an immutable, concurrency-safe lookup of weapon definitions
// keyed by id, built once at startup.
type Catalog struct {
	byID map[string]Definition
}

// Load reads a TOML weapon catalog file and builds a Catalog from it.
func Load(path string) (*Catalog, error) {
	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("weapon: decode catalog %s: %w", path, err)
	}
	return build(file.Weapons)
}

// LoadDefault parses the embedded fallback catalog used when no catalog
// file path is configured.
func LoadDefault() (*Catalog, error) {
	var file catalogFile
	if _, err := toml.Decode(defaultCatalogTOML, &file); err != nil {
		return nil, fmt.Errorf("weapon: decode default catalog: %w", err)
	}
	return build(file.Weapons)
}

func build(defs []Definition) (*Catalog, error) {
	byID := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("weapon: catalog entry missing id")
		}
		if _, exists := byID[def.ID]; exists {
			return nil, fmt.Errorf("weapon: duplicate catalog id %q", def.ID)
		}
		if def.FireRate <= 0 {
			return nil, fmt.Errorf("weapon: %q has non-positive fire_rate", def.ID)
		}
		byID[def.ID] = def
	}
	if len(byID) == 0 {
		return nil, fmt.Errorf("weapon: catalog is empty")
	}
	return &Catalog{byID: byID}, nil
}

// Get looks up a weapon definition by id.
func (c *Catalog) Get(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	def, ok := c.byID[id]
	return def, ok
}

// Default returns the id new players are equipped with before their first
// weapon-switch command: the lexicographically first non-melee weapon, or
// the lexicographically first weapon if the catalog is all melee.
func (c *Catalog) Default() string {
	if c == nil || len(c.byID) == 0 {
		return ""
	}
	ids := c.ids()
	for _, id := range ids {
		if !c.byID[id].IsMelee() {
			return id
		}
	}
	return ids[0]
}

func (c *Catalog) ids() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definitions returns every catalog entry sorted by id.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	ids := c.ids()
	defs := make([]Definition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, c.byID[id])
	}
	return defs
}

// Exists reports whether a file at path is readable, used by config
// resolution to decide between a configured path and the embedded default.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

const defaultCatalogTOML = `
[[weapon]]
id = "pistol"
name = "Sidearm Pistol"
fire_rate = 4.0
magazine_size = 12
reload_seconds = 1.4
damage = 18

[[weapon]]
id = "smg"
name = "Compact SMG"
fire_rate = 10.0
magazine_size = 30
reload_seconds = 1.9
damage = 11

[[weapon]]
id = "rifle"
name = "Battle Rifle"
fire_rate = 6.0
magazine_size = 24
reload_seconds = 2.2
damage = 24

[[weapon]]
id = "shotgun"
name = "Combat Shotgun"
fire_rate = 1.2
magazine_size = 6
reload_seconds = 2.6
damage = 55

[[weapon]]
id = "knife"
name = "Combat Knife"
fire_rate = 2.0
magazine_size = 0
reload_seconds = 0
damage = 40
`
