package progression

import (
	"context"
	"errors"
)

// ErrHeroNotFound is returned when no hero has been seeded into a store.
var ErrHeroNotFound = errors.New("hero not found")

// VictoryWriteback carries the battle-local state written back to the
// store when an encounter ends in victory.
type VictoryWriteback struct {
	// HP and SP are the hero's surviving pools at the end of the encounter.
	HP int
	SP int
	// XPAward is the final adjusted experience award.
	XPAward int
	// Dropped reports whether the encounter granted an item drop; it
	// drives the pity streak.
	Dropped bool
}

// DefeatWriteback carries the state written back on defeat or escape. HP
// and SP may be zero; the defeat penalty applies on top of the written
// values. XPAward carries partial experience already granted mid-encounter
// (boss phase transitions); it is kept even though the battle was lost.
type DefeatWriteback struct {
	HP      int
	SP      int
	XPAward int
}

// MemoryStore is an in-memory hero store. It satisfies the battle core's
// ProgressionStore collaborator and backs the simulator and tests.
type MemoryStore struct {
	hero   Hero
	seeded bool
}

// NewMemoryStore creates a store holding the given hero.
func NewMemoryStore(h Hero) *MemoryStore {
	return &MemoryStore{hero: h, seeded: true}
}

// Snapshot returns a copy of the stored hero.
func (s *MemoryStore) Snapshot(ctx context.Context) (Hero, error) {
	if !s.seeded {
		return Hero{}, ErrHeroNotFound
	}
	return s.hero, nil
}

// CommitVictory writes back surviving pools, applies the XP award (with
// level-up processing), and advances the kill and streak counters.
//
// Postcondition: the stored hero's pools are clamped to their maxima.
func (s *MemoryStore) CommitVictory(ctx context.Context, wb VictoryWriteback) (LevelUpReport, error) {
	if !s.seeded {
		return LevelUpReport{}, ErrHeroNotFound
	}
	h := &s.hero
	h.HP = clamp(wb.HP, 0, h.MaxHP)
	h.SP = clamp(wb.SP, 0, h.MaxSP)
	h.Kills++
	h.WinStreak++
	if wb.Dropped {
		h.DroplessStreak = 0
	} else {
		h.DroplessStreak++
	}
	leveled := ApplyXP(h, wb.XPAward)
	return LevelUpReport{
		LeveledUp: leveled,
		NewLevel:  h.Level,
		NewMaxHP:  h.MaxHP,
		NewMaxSP:  h.MaxSP,
	}, nil
}

// CommitDefeat writes back the (possibly zero) pools, applies the HP
// penalty, and resets the win streak.
//
// Postcondition: the stored hero's HP >= 1.
func (s *MemoryStore) CommitDefeat(ctx context.Context, wb DefeatWriteback, severity int) error {
	if !s.seeded {
		return ErrHeroNotFound
	}
	h := &s.hero
	h.HP = clamp(wb.HP, 0, h.MaxHP)
	h.SP = clamp(wb.SP, 0, h.MaxSP)
	h.WinStreak = 0
	ApplyXP(h, wb.XPAward)
	ApplyDefeatPenalty(h, severity)
	return nil
}

// CommitEscape writes back the surviving pools after a successful flee.
// No penalty applies and no streak changes.
func (s *MemoryStore) CommitEscape(ctx context.Context, wb DefeatWriteback) error {
	if !s.seeded {
		return ErrHeroNotFound
	}
	h := &s.hero
	h.HP = clamp(wb.HP, 0, h.MaxHP)
	h.SP = clamp(wb.SP, 0, h.MaxSP)
	return nil
}

// Hero returns a copy of the stored hero for assertions and display.
func (s *MemoryStore) Hero() Hero { return s.hero }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
