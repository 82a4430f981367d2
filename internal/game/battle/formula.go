package battle

import "github.com/kellsworth/skyquest/internal/game/rng"

// All formulas use integer floor division; that truncation is part of the
// observable damage contract.

// maxVariance bounds the uniform damage variance drawn per hit.
const maxVariance = 3

// RawDamage computes the shared base damage for atk against def with a
// pre-drawn variance.
//
// Formula: max(1, atk*atk/max(1, atk+def) + variance).
//
// Precondition: variance in [0, maxVariance].
// Postcondition: returns >= 1.
func RawDamage(atk, def, variance int) int {
	denom := atk + def
	if denom < 1 {
		denom = 1
	}
	dmg := atk*atk/denom + variance
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// Variance draws the per-hit damage variance from src, uniform over
// [0, maxVariance].
func Variance(src rng.Source) int {
	return src.Intn(maxVariance + 1)
}

// PercentOf returns pct percent of base, floored.
func PercentOf(base, pct int) int {
	return base * pct / 100
}

// AtLeastOne enforces the minimum effective value for guaranteed effects.
func AtLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// CritChance returns the critical-hit percentage for an attacker with the
// given speed: 5 + speed/2, capped at 30.
//
// Postcondition: returns a value in [5, 30].
func CritChance(speed int) int {
	pct := 5 + speed/2
	if pct > 30 {
		pct = 30
	}
	return pct
}

// SpecialDamage scales a base hit for the Special action: 1.5x normally,
// 2x when the user is desperate (below a quarter HP).
//
// Postcondition: returns >= base for base >= 0.
func SpecialDamage(base int, desperate bool) int {
	if desperate {
		return base * 2
	}
	return base * 3 / 2
}

// FleeChance returns the escape percentage for the given speed matchup:
// 50 + 2*(own-enemy), clamped to [10, 90].
func FleeChance(ownSpeed, enemySpeed int) int {
	pct := 50 + 2*(ownSpeed-enemySpeed)
	if pct < 10 {
		pct = 10
	}
	if pct > 90 {
		pct = 90
	}
	return pct
}
