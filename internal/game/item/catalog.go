// Package item provides the usable item catalog and inventory storage.
package item

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Effect constants for ItemDef.Effect.
const (
	EffectRestoreHP   = "restore_hp"   // heals Power% of max HP; doubled bonus tier at low HP
	EffectRestoreSP   = "restore_sp"   // restores Power% of max SP
	EffectBoost       = "boost"        // +Power% attack and defense for the encounter
	EffectFullRestore = "full_restore" // restores HP and SP to max
)

var validEffects = map[string]bool{
	EffectRestoreHP:   true,
	EffectRestoreSP:   true,
	EffectBoost:       true,
	EffectFullRestore: true,
}

// ItemDef defines the static properties of a usable item loaded from YAML.
type ItemDef struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Effect string `yaml:"effect"`
	// Power is the integer percentage the effect applies; ignored for
	// full_restore.
	Power int `yaml:"power"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("item: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("item %q: name must not be empty", d.ID)
	}
	if !validEffects[d.Effect] {
		return fmt.Errorf("item %q: effect must be one of [restore_hp, restore_sp, boost, full_restore], got %q", d.ID, d.Effect)
	}
	if d.Effect != EffectFullRestore && (d.Power < 1 || d.Power > 100) {
		return fmt.Errorf("item %q: power must be 1-100, got %d", d.ID, d.Power)
	}
	return nil
}

// Catalog holds all known ItemDefs keyed by ID.
type Catalog struct {
	defs map[string]*ItemDef
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*ItemDef)}
}

// Register adds def to the catalog, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (c *Catalog) Register(def *ItemDef) {
	c.defs[def.ID] = def
}

// Get returns the ItemDef for id, or (nil, false) if not found.
func (c *Catalog) Get(id string) (*ItemDef, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// Len returns the number of registered items.
func (c *Catalog) Len() int { return len(c.defs) }

// catalogFile is the on-disk YAML shape for the item catalog.
type catalogFile struct {
	Items []*ItemDef `yaml:"items"`
}

// LoadCatalog reads the item catalog from a YAML file.
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns a non-empty Catalog or an error.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading item catalog %q: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing item catalog %q: %w", path, err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("item catalog %q: no items defined", path)
	}
	cat := NewCatalog()
	for _, d := range file.Items {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := cat.Get(d.ID); exists {
			return nil, fmt.Errorf("item %q: duplicate id", d.ID)
		}
		cat.Register(d)
	}
	return cat, nil
}
