package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/kellsworth/skyquest/internal/game/battle"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

func TestRawDamage_FloorDivision(t *testing.T) {
	// atk 12 vs def 3: 144/15 floors to 9.
	assert.Equal(t, 9, battle.RawDamage(12, 3, 0))
	assert.Equal(t, 10, battle.RawDamage(12, 3, 1))
	assert.Equal(t, 11, battle.RawDamage(12, 3, 2))
	assert.Equal(t, 12, battle.RawDamage(12, 3, 3))
}

func TestRawDamage_FlooredAtOne(t *testing.T) {
	// A feeble attacker against heavy armor still chips for 1.
	assert.Equal(t, 1, battle.RawDamage(1, 99, 0))
}

func TestRawDamage_ZeroDenominator(t *testing.T) {
	// atk+def can only reach zero with degenerate stats; the guard keeps
	// the division defined.
	assert.GreaterOrEqual(t, battle.RawDamage(0, 0, 0), 1)
}

// Property: raw damage is always at least 1 for any stat combination.
func TestPropertyRawDamageAtLeastOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		atk := rapid.IntRange(1, 999).Draw(t, "atk")
		def := rapid.IntRange(0, 999).Draw(t, "def")
		v := rapid.IntRange(0, 3).Draw(t, "variance")
		if got := battle.RawDamage(atk, def, v); got < 1 {
			t.Fatalf("RawDamage(%d, %d, %d) = %d, want >= 1", atk, def, v, got)
		}
	})
}

// Property: more defense never increases the damage taken.
func TestPropertyRawDamageMonotoneInDefense(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		atk := rapid.IntRange(1, 999).Draw(t, "atk")
		def := rapid.IntRange(0, 998).Draw(t, "def")
		v := rapid.IntRange(0, 3).Draw(t, "variance")
		if battle.RawDamage(atk, def+1, v) > battle.RawDamage(atk, def, v) {
			t.Fatalf("damage grew when defense rose: atk=%d def=%d", atk, def)
		}
	})
}

func TestVariance_Range(t *testing.T) {
	src := rng.NewSeeded(99)
	for i := 0; i < 200; i++ {
		v := battle.Variance(src)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 3)
	}
}

func TestCritChance(t *testing.T) {
	assert.Equal(t, 5, battle.CritChance(0))
	assert.Equal(t, 10, battle.CritChance(10))
	assert.Equal(t, 17, battle.CritChance(25))
	assert.Equal(t, 30, battle.CritChance(50))
	assert.Equal(t, 30, battle.CritChance(500), "cap holds for absurd speed")
}

func TestSpecialDamage(t *testing.T) {
	assert.Equal(t, 15, battle.SpecialDamage(10, false))
	assert.Equal(t, 20, battle.SpecialDamage(10, true))
	// Floor division shows on odd bases.
	assert.Equal(t, 13, battle.SpecialDamage(9, false))
}

func TestFleeChance(t *testing.T) {
	assert.Equal(t, 50, battle.FleeChance(10, 10))
	assert.Equal(t, 60, battle.FleeChance(15, 10))
	assert.Equal(t, 40, battle.FleeChance(10, 15))
	assert.Equal(t, 90, battle.FleeChance(99, 1), "upper clamp")
	assert.Equal(t, 10, battle.FleeChance(1, 99), "lower clamp")
}

// Property: flee chance is always inside [10, 90].
func TestPropertyFleeChanceClamped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		own := rapid.IntRange(0, 500).Draw(t, "own")
		enemy := rapid.IntRange(0, 500).Draw(t, "enemy")
		got := battle.FleeChance(own, enemy)
		if got < 10 || got > 90 {
			t.Fatalf("FleeChance(%d, %d) = %d outside [10, 90]", own, enemy, got)
		}
	})
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 25, battle.PercentOf(100, 25))
	assert.Equal(t, 2, battle.PercentOf(10, 25), "floors, never rounds")
	assert.Equal(t, 0, battle.PercentOf(3, 25))
}

func TestAtLeastOne(t *testing.T) {
	assert.Equal(t, 1, battle.AtLeastOne(0))
	assert.Equal(t, 1, battle.AtLeastOne(-7))
	assert.Equal(t, 4, battle.AtLeastOne(4))
}
