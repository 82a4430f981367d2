package battle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/game/progression"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

// pityThreshold is the run of drop-less victories after which a drop is
// guaranteed.
const pityThreshold = 3

// XP adjustment knobs, all integer percentages of the base award.
const (
	fastClearTurns    = 3
	fastClearBonusPct = 25
	catchUpPerLevel   = 10
	catchUpCapPct     = 50
	streakPerWinPct   = 5
	streakCapPct      = 25
)

// resolveVictory rolls the drop, computes the adjusted XP award, and
// commits everything to the collaborators. Returns whether a level
// threshold was crossed.
func (s *Session) resolveVictory(ctx context.Context) (bool, error) {
	dropID := s.rollDrop()
	if dropID != "" {
		if err := s.items.Add(ctx, dropID, uuid.NewString()); err != nil {
			s.log.Warn("granting drop failed", zap.String("item", dropID), zap.Error(err))
		} else {
			name := dropID
			if def, ok := s.catalog.Get(dropID); ok {
				name = def.Name
			}
			s.message(fmt.Sprintf("Found a %s!", name))
			s.sound(CueItem)
		}
	}

	award := s.victoryAward()
	s.message(fmt.Sprintf("+%d XP", award))

	report, err := s.heroes.CommitVictory(ctx, progression.VictoryWriteback{
		HP:      s.player.HP,
		SP:      s.player.SP,
		XPAward: award + s.xpEarly,
		Dropped: dropID != "",
	})
	if err != nil {
		return false, fmt.Errorf("committing victory: %w", err)
	}

	s.log.Info("victory resolved",
		zap.Int("xp_award", award),
		zap.Int("xp_early", s.xpEarly),
		zap.String("drop", dropID),
		zap.Bool("leveled_up", report.LeveledUp),
	)

	if report.LeveledUp {
		s.message(fmt.Sprintf("%s reached level %d!", s.player.Name, report.NewLevel))
		s.redraw(SidePlayer)
	}
	return report.LeveledUp, nil
}

// rollDrop returns the granted item id, or "" for no drop. Bosses always
// drop their configured item; normal enemies roll their chance table with
// the pity rule forcing a drop after a long dry run.
func (s *Session) rollDrop() string {
	if s.boss != nil {
		return s.boss.dropItem
	}
	if len(s.enemyDef.Drops) == 0 {
		return ""
	}
	for _, entry := range s.enemyDef.Drops {
		if rng.Percent(s.src, entry.Chance) {
			return entry.ItemID
		}
	}
	if s.hero.DroplessStreak >= pityThreshold {
		return s.enemyDef.Drops[0].ItemID
	}
	return ""
}

// victoryAward applies the multi-factor XP adjustment to the base award:
// fast-clear bonus, under-leveled catch-up, win-streak bonus, and the
// deduction for boss partial XP already granted.
//
// Postcondition: returns >= 1.
func (s *Session) victoryAward() int {
	base := s.xpBase
	award := base

	if s.turnNumber <= fastClearTurns {
		award += PercentOf(base, fastClearBonusPct)
	}

	if diff := s.opponentLevel() - s.hero.Level; diff > 0 {
		pct := diff * catchUpPerLevel
		if pct > catchUpCapPct {
			pct = catchUpCapPct
		}
		award += PercentOf(base, pct)
	}

	if s.hero.WinStreak > 0 {
		pct := s.hero.WinStreak * streakPerWinPct
		if pct > streakCapPct {
			pct = streakCapPct
		}
		award += PercentOf(base, pct)
	}

	award -= s.xpEarly
	return AtLeastOne(award)
}

func (s *Session) opponentLevel() int {
	if s.boss != nil {
		return s.boss.def.Level
	}
	return s.enemyDef.Level
}

// resolveDefeat writes back the fallen hero's state. The store applies the
// severity-scaled HP penalty; partial boss XP already granted is kept.
func (s *Session) resolveDefeat(ctx context.Context) error {
	err := s.heroes.CommitDefeat(ctx, progression.DefeatWriteback{
		HP:      s.player.HP,
		SP:      s.player.SP,
		XPAward: s.xpEarly,
	}, s.severity)
	if err != nil {
		return fmt.Errorf("committing defeat: %w", err)
	}
	s.log.Info("defeat resolved", zap.Int("severity", s.severity), zap.Int("xp_early", s.xpEarly))
	return nil
}
