// Package progression defines the persistent hero model and the growth
// rules applied between encounters.
package progression

import "time"

// Hero represents the player's persistent RPG state.
//
// ID is set by the persistence layer; a zero value indicates an unsaved hero.
type Hero struct {
	ID   int64
	Name string

	Level int
	XP    int

	HP    int
	MaxHP int
	SP    int
	MaxSP int

	Attack  int
	Defense int
	Speed   int

	// Loadout is the hero's active weapon element tag, matched against an
	// opponent's weakness for bonus damage.
	Loadout string

	Kills int
	// WinStreak counts consecutive victories; reset on defeat.
	WinStreak int
	// DroplessStreak counts consecutive victories without an item drop;
	// drives the guaranteed-drop pity rule.
	DroplessStreak int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// XPForLevel returns the cumulative experience required to reach level.
// Level 1 requires 0 XP; each step up costs progressively more.
//
// Precondition: level >= 1.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return n * n * 25
}

// ApplyXP adds award experience to h and processes any level-ups, growing
// stats and refilling HP/SP on each new level.
//
// Precondition: award >= 0.
// Postcondition: h.Level never decreases; returns true iff at least one
// level threshold was crossed.
func ApplyXP(h *Hero, award int) bool {
	h.XP += award
	leveled := false
	for h.XP >= XPForLevel(h.Level+1) {
		h.Level++
		h.MaxHP += 8
		h.MaxSP += 2
		h.Attack += 2
		h.Defense++
		h.Speed++
		h.HP = h.MaxHP
		h.SP = h.MaxSP
		leveled = true
	}
	return leveled
}

// ApplyDefeatPenalty reduces h.HP by 25+5*severity percent, losing at
// least 1 HP but never dropping below 1.
//
// Precondition: severity in [0, 5].
// Postcondition: h.HP >= 1.
func ApplyDefeatPenalty(h *Hero, severity int) {
	if severity < 0 {
		severity = 0
	}
	if severity > 5 {
		severity = 5
	}
	pct := 25 + 5*severity
	loss := h.HP * pct / 100
	if loss < 1 {
		loss = 1
	}
	h.HP -= loss
	if h.HP < 1 {
		h.HP = 1
	}
}

// LevelUpReport describes the outcome of an XP award application.
type LevelUpReport struct {
	LeveledUp bool
	NewLevel  int
	NewMaxHP  int
	NewMaxSP  int
}
