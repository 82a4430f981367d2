package battle

import (
	"github.com/kellsworth/skyquest/internal/game/bestiary"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

// enemyWeights is one archetype's action distribution out of 100.
type enemyWeights struct {
	attack  int
	special int
	defend  int
}

// Archetype tables. The low-HP variants shift the cautious archetypes
// toward Special and Defend once the enemy drops below a quarter HP.
var (
	weightsAggressive = enemyWeights{attack: 70, special: 20, defend: 10}
	weightsBalanced   = enemyWeights{attack: 50, special: 25, defend: 25}
	weightsDefensive  = enemyWeights{attack: 35, special: 20, defend: 45}
	weightsTrickster  = enemyWeights{attack: 35, special: 50, defend: 15}

	weightsBalancedLow  = enemyWeights{attack: 30, special: 30, defend: 40}
	weightsDefensiveLow = enemyWeights{attack: 20, special: 30, defend: 50}
)

// weightsFor returns the action table for the archetype, accounting for
// the low-HP shift.
func weightsFor(archetype string, low bool) enemyWeights {
	switch archetype {
	case bestiary.ArchetypeAggressive:
		return weightsAggressive
	case bestiary.ArchetypeDefensive:
		if low {
			return weightsDefensiveLow
		}
		return weightsDefensive
	case bestiary.ArchetypeTrickster:
		return weightsTrickster
	default:
		if low {
			return weightsBalancedLow
		}
		return weightsBalanced
	}
}

// chooseEnemyAction samples the per-turn decision for a normal enemy.
// A Special roll without SP routes to Attack.
//
// Precondition: def, self, and src must be non-nil.
// Postcondition: returns a Standard action among Attack, Special, Defend;
// Special only when self.SP >= 1.
func chooseEnemyAction(def *bestiary.EnemyDef, self *Combatant, src rng.Source) Action {
	w := weightsFor(def.Archetype, self.LowHP())

	roll := src.Intn(100)
	var kind StandardAction
	switch {
	case roll < w.attack:
		kind = ActAttack
	case roll < w.attack+w.special:
		kind = ActSpecial
	default:
		kind = ActDefend
	}

	if kind == ActSpecial && self.SP < 1 {
		kind = ActAttack
	}
	return Standard{Kind: kind}
}
