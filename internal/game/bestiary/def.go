// Package bestiary provides the static enemy and boss configuration tables.
//
// Definitions are loaded from YAML and indexed by a small integer type id.
// Out-of-range ids are clamped to a safe default rather than rejected, so a
// corrupt encounter descriptor can never crash the battle core.
package bestiary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Archetype names for EnemyDef.Archetype. They select the AI weight table
// a normal enemy draws its per-turn action from.
const (
	ArchetypeAggressive = "aggressive"
	ArchetypeBalanced   = "balanced"
	ArchetypeDefensive  = "defensive"
	ArchetypeTrickster  = "trickster"
)

var validArchetypes = map[string]bool{
	ArchetypeAggressive: true,
	ArchetypeBalanced:   true,
	ArchetypeDefensive:  true,
	ArchetypeTrickster:  true,
}

// Stats holds the base combat statistics shared by enemies and bosses.
type Stats struct {
	MaxHP   int `yaml:"max_hp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	Speed   int `yaml:"speed"`
	MaxSP   int `yaml:"max_sp"`
}

// Validate checks the stat block invariants.
func (s Stats) Validate() error {
	if s.MaxHP < 1 {
		return fmt.Errorf("max_hp must be >= 1, got %d", s.MaxHP)
	}
	if s.Attack < 1 {
		return fmt.Errorf("attack must be >= 1, got %d", s.Attack)
	}
	if s.Defense < 0 {
		return fmt.Errorf("defense must be >= 0, got %d", s.Defense)
	}
	if s.Speed < 0 {
		return fmt.Errorf("speed must be >= 0, got %d", s.Speed)
	}
	if s.MaxSP < 0 {
		return fmt.Errorf("max_sp must be >= 0, got %d", s.MaxSP)
	}
	return nil
}

// DropEntry is one item entry in an enemy's drop table with an integer
// percent chance.
type DropEntry struct {
	ItemID string `yaml:"item"`
	Chance int    `yaml:"chance"`
}

// EnemyDef defines one normal enemy type.
type EnemyDef struct {
	Type      int         `yaml:"type"` // stable small-integer id, 0..3
	Name      string      `yaml:"name"`
	Level     int         `yaml:"level"`
	Stats     Stats       `yaml:"stats"`
	XP        int         `yaml:"xp"`
	Archetype string      `yaml:"archetype"`
	Weakness  string      `yaml:"weakness"` // loadout element this enemy is weak to; empty = none
	Drops     []DropEntry `yaml:"drops"`
}

// Validate checks that the definition satisfies its invariants.
//
// Postcondition: Returns nil iff the def is usable by the battle core.
func (d *EnemyDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("enemy %d: name must not be empty", d.Type)
	}
	if d.Level < 1 {
		return fmt.Errorf("enemy %q: level must be >= 1", d.Name)
	}
	if err := d.Stats.Validate(); err != nil {
		return fmt.Errorf("enemy %q: %w", d.Name, err)
	}
	if d.XP < 1 {
		return fmt.Errorf("enemy %q: xp must be >= 1", d.Name)
	}
	if !validArchetypes[d.Archetype] {
		return fmt.Errorf("enemy %q: archetype must be one of [aggressive, balanced, defensive, trickster], got %q", d.Name, d.Archetype)
	}
	for i, drop := range d.Drops {
		if drop.ItemID == "" {
			return fmt.Errorf("enemy %q: drop[%d] must have a non-empty item id", d.Name, i)
		}
		if drop.Chance < 1 || drop.Chance > 100 {
			return fmt.Errorf("enemy %q: drop[%d] chance must be 1-100, got %d", d.Name, i, drop.Chance)
		}
	}
	return nil
}

// BossDef defines one boss type. Bosses carry a guaranteed drop instead of
// a chance table.
type BossDef struct {
	Type     int    `yaml:"type"` // stable small-integer id, 0..2
	Name     string `yaml:"name"`
	Level    int    `yaml:"level"`
	Stats    Stats  `yaml:"stats"`
	XP       int    `yaml:"xp"`
	DropItem string `yaml:"drop_item"`
	Weakness string `yaml:"weakness"`
}

// Validate checks that the definition satisfies its invariants.
func (d *BossDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("boss %d: name must not be empty", d.Type)
	}
	if d.Level < 1 {
		return fmt.Errorf("boss %q: level must be >= 1", d.Name)
	}
	if err := d.Stats.Validate(); err != nil {
		return fmt.Errorf("boss %q: %w", d.Name, err)
	}
	if d.XP < 1 {
		return fmt.Errorf("boss %q: xp must be >= 1", d.Name)
	}
	if d.DropItem == "" {
		return fmt.Errorf("boss %q: drop_item must not be empty", d.Name)
	}
	if d.Stats.MaxSP < 1 {
		return fmt.Errorf("boss %q: max_sp must be >= 1", d.Name)
	}
	return nil
}

// rosterFile is the on-disk YAML shape for a roster of definitions.
type rosterFile struct {
	Enemies []*EnemyDef `yaml:"enemies"`
	Bosses  []*BossDef  `yaml:"bosses"`
}

// LoadEnemies reads and validates the enemy roster from path. Entries are
// positioned by their Type field.
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns defs with contiguous Type ids starting at 0, or an error.
func LoadEnemies(path string) ([]*EnemyDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading enemy roster %q: %w", path, err)
	}
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing enemy roster %q: %w", path, err)
	}
	if len(file.Enemies) == 0 {
		return nil, fmt.Errorf("enemy roster %q: no enemies defined", path)
	}
	defs := make([]*EnemyDef, len(file.Enemies))
	for _, d := range file.Enemies {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Type < 0 || d.Type >= len(file.Enemies) {
			return nil, fmt.Errorf("enemy %q: type %d out of range [0, %d)", d.Name, d.Type, len(file.Enemies))
		}
		if defs[d.Type] != nil {
			return nil, fmt.Errorf("enemy %q: duplicate type %d", d.Name, d.Type)
		}
		defs[d.Type] = d
	}
	return defs, nil
}

// LoadBosses reads and validates the boss roster from path.
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns defs with contiguous Type ids starting at 0, or an error.
func LoadBosses(path string) ([]*BossDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boss roster %q: %w", path, err)
	}
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing boss roster %q: %w", path, err)
	}
	if len(file.Bosses) == 0 {
		return nil, fmt.Errorf("boss roster %q: no bosses defined", path)
	}
	defs := make([]*BossDef, len(file.Bosses))
	for _, d := range file.Bosses {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Type < 0 || d.Type >= len(file.Bosses) {
			return nil, fmt.Errorf("boss %q: type %d out of range [0, %d)", d.Name, d.Type, len(file.Bosses))
		}
		if defs[d.Type] != nil {
			return nil, fmt.Errorf("boss %q: duplicate type %d", d.Name, d.Type)
		}
		defs[d.Type] = d
	}
	return defs, nil
}
