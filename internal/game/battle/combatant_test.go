package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/kellsworth/skyquest/internal/game/battle"
)

func TestCombatant_ApplyDamageFloorsAtZero(t *testing.T) {
	c := battle.Combatant{HP: 10, MaxHP: 10}
	c.ApplyDamage(4)
	assert.Equal(t, 6, c.HP)
	c.ApplyDamage(100)
	assert.Equal(t, 0, c.HP)
	assert.True(t, c.Defeated())
}

func TestCombatant_HealCapsAtMax(t *testing.T) {
	c := battle.Combatant{HP: 3, MaxHP: 10}
	c.Heal(4)
	assert.Equal(t, 7, c.HP)
	c.Heal(100)
	assert.Equal(t, 10, c.HP)
}

func TestCombatant_SpendSP(t *testing.T) {
	c := battle.Combatant{SP: 2, MaxSP: 5}
	assert.True(t, c.SpendSP(1))
	assert.Equal(t, 1, c.SP)
	assert.True(t, c.SpendSP(1))
	assert.False(t, c.SpendSP(1), "empty pool refuses the spend")
	assert.Equal(t, 0, c.SP)
}

func TestCombatant_RestoreSPCapsAtMax(t *testing.T) {
	c := battle.Combatant{SP: 4, MaxSP: 5}
	c.RestoreSP(3)
	assert.Equal(t, 5, c.SP)
}

func TestCombatant_EffectiveDefense(t *testing.T) {
	c := battle.Combatant{Defense: 6}
	assert.Equal(t, 6, c.EffectiveDefense())
	c.Defending = true
	assert.Equal(t, 12, c.EffectiveDefense())
}

func TestCombatant_LowHPBoundary(t *testing.T) {
	c := battle.Combatant{MaxHP: 100}

	c.HP = 25
	assert.False(t, c.LowHP(), "exactly one quarter is not yet low")

	c.HP = 24
	assert.True(t, c.LowHP())
}

// Property: any sequence of damage and healing keeps HP in [0, MaxHP].
func TestPropertyCombatantHPClamped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxHP := rapid.IntRange(1, 500).Draw(t, "maxHP")
		c := battle.Combatant{HP: maxHP, MaxHP: maxHP}
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			amount := rapid.IntRange(0, 600).Draw(t, "amount")
			if rapid.Bool().Draw(t, "heal") {
				c.Heal(amount)
			} else {
				c.ApplyDamage(amount)
			}
			if c.HP < 0 || c.HP > c.MaxHP {
				t.Fatalf("HP %d escaped [0, %d]", c.HP, c.MaxHP)
			}
		}
	})
}
