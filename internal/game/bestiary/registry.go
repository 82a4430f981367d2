package bestiary

import "fmt"

// Registry holds the loaded enemy and boss rosters and serves clamped
// lookups by type id.
type Registry struct {
	enemies []*EnemyDef
	bosses  []*BossDef
}

// NewRegistry builds a Registry from validated rosters.
//
// Precondition: both slices must be non-empty and hole-free (as returned
// by LoadEnemies/LoadBosses).
func NewRegistry(enemies []*EnemyDef, bosses []*BossDef) (*Registry, error) {
	if len(enemies) == 0 {
		return nil, fmt.Errorf("bestiary: enemy roster is empty")
	}
	if len(bosses) == 0 {
		return nil, fmt.Errorf("bestiary: boss roster is empty")
	}
	return &Registry{enemies: enemies, bosses: bosses}, nil
}

// Load reads both rosters from their YAML files and returns a Registry.
func Load(enemiesPath, bossesPath string) (*Registry, error) {
	enemies, err := LoadEnemies(enemiesPath)
	if err != nil {
		return nil, err
	}
	bosses, err := LoadBosses(bossesPath)
	if err != nil {
		return nil, err
	}
	return NewRegistry(enemies, bosses)
}

// Enemy returns the enemy definition for typeID. Out-of-range ids clamp to
// the nearest valid id.
//
// Postcondition: Returns a non-nil def.
func (r *Registry) Enemy(typeID int) *EnemyDef {
	return r.enemies[clampIndex(typeID, len(r.enemies))]
}

// Boss returns the boss definition for typeID. Out-of-range ids clamp to
// the nearest valid id.
//
// Postcondition: Returns a non-nil def.
func (r *Registry) Boss(typeID int) *BossDef {
	return r.bosses[clampIndex(typeID, len(r.bosses))]
}

// EnemyCount returns the number of enemy types.
func (r *Registry) EnemyCount() int { return len(r.enemies) }

// BossCount returns the number of boss types.
func (r *Registry) BossCount() int { return len(r.bosses) }

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
