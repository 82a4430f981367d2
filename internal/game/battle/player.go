package battle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/game/item"
	"github.com/kellsworth/skyquest/internal/game/progression"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

// interceptChance is the percent chance the opponent knocks a used item
// away; the item is refunded but the turn is spent.
const interceptChance = 12

// counterChance is the percent chance a defending opponent counters a
// player attack.
const counterChance = 25

// bracedRefundThreshold is the damage a defending player must absorb in
// one hit to earn the 1 SP refund.
const bracedRefundThreshold = 5

// streakLength is the run of consecutive Attack actions that earns the
// streak bonus.
const streakLength = 3

// resolvePlayerAction validates the requested action into an effective
// action, then dispatches it. The two-step shape keeps the defensive
// Special-without-SP fallback in one place.
func (s *Session) resolvePlayerAction(ctx context.Context) error {
	effective := s.effectivePlayerAction()

	std, ok := effective.(Standard)
	if !ok {
		// Boss specials are never queued for the player; treat as a
		// wasted turn rather than crash.
		s.log.Warn("player queued non-standard action", zap.String("action", effective.String()))
		return nil
	}

	switch std.Kind {
	case ActAttack:
		s.resolvePlayerAttack()
	case ActDefend:
		s.attackStreak = 0
		s.resolvePlayerDefend()
	case ActSpecial:
		s.attackStreak = 0
		s.resolvePlayerSpecial()
	case ActItem:
		s.attackStreak = 0
		return s.resolvePlayerItem(ctx)
	case ActFlee:
		s.attackStreak = 0
		return s.resolvePlayerFlee(ctx)
	}
	return nil
}

// effectivePlayerAction transforms the queued action: Special without SP
// degrades to Attack. The menu already rejects that choice, so this path
// only matters if SP was drained after selection.
func (s *Session) effectivePlayerAction() Action {
	if std, ok := s.playerAction.(Standard); ok {
		if std.Kind == ActSpecial && s.player.SP < 1 {
			return Standard{Kind: ActAttack}
		}
	}
	return s.playerAction
}

// playerBaseDamage computes one player hit against the opponent, including
// the weakness bonus.
func (s *Session) playerBaseDamage() int {
	dmg := RawDamage(s.player.Attack, s.opponent.EffectiveDefense(), Variance(s.src))
	if s.weakness != "" && s.hero.Loadout == s.weakness {
		dmg += dmg / 4
	}
	return dmg
}

func (s *Session) resolvePlayerAttack() {
	dmg := s.playerBaseDamage()

	s.attackStreak++
	if s.attackStreak >= streakLength {
		s.attackStreak = 0
		dmg += dmg / 2
		s.message(fmt.Sprintf("%s chains the assault!", s.player.Name))
	}

	bucket := 0
	cue := CueHit
	if rng.Percent(s.src, CritChance(s.player.Speed)) {
		dmg *= 2
		bucket = 2
		cue = CueCrit
		s.message("Critical hit!")
	}

	s.opponent.ApplyDamage(dmg)
	s.message(fmt.Sprintf("%s attacks %s for %d!", s.player.Name, s.opponent.Name, dmg))
	s.sound(cue)
	s.shake(SideOpponent, bucket)
	s.damage(SideOpponent, dmg, false)

	// A braced opponent may lash back.
	if s.opponent.Defending && !s.opponent.Defeated() && rng.Percent(s.src, counterChance) {
		counter := AtLeastOne(RawDamage(s.opponent.Attack, s.player.EffectiveDefense(), Variance(s.src)) / 2)
		s.player.ApplyDamage(counter)
		s.message(fmt.Sprintf("%s counters for %d!", s.opponent.Name, counter))
		s.sound(CueHit)
		s.shake(SidePlayer, 0)
		s.damage(SidePlayer, counter, false)
	}
}

func (s *Session) resolvePlayerDefend() {
	if s.player.PoisonTurns > 0 && rng.Percent(s.src, 50) {
		s.player.PoisonTurns--
		s.message(fmt.Sprintf("%s shakes off some poison!", s.player.Name))
		s.sound(CueHeal)
		return
	}
	s.player.Defending = true
	s.message(fmt.Sprintf("%s braces for impact.", s.player.Name))
	s.sound(CueMenu)
}

func (s *Session) resolvePlayerSpecial() {
	s.player.SpendSP(1)
	base := s.playerBaseDamage()
	desperate := s.player.LowHP()
	dmg := SpecialDamage(base, desperate)
	if desperate {
		s.message(fmt.Sprintf("%s unleashes a desperate strike!", s.player.Name))
	}

	s.opponent.ApplyDamage(dmg)
	s.message(fmt.Sprintf("%s uses a special attack for %d!", s.player.Name, dmg))
	s.sound(CueCrit)
	s.shake(SideOpponent, 1)
	s.damage(SideOpponent, dmg, false)
	s.redraw(SidePlayer)
}

func (s *Session) resolvePlayerItem(ctx context.Context) error {
	itemID := s.pendingItem
	s.pendingItem = ""
	def, ok := s.catalog.Get(itemID)
	if !ok {
		s.log.Warn("consumed unknown item", zap.String("item", itemID))
		s.message("Nothing happens...")
		return nil
	}

	if rng.Percent(s.src, interceptChance) {
		if err := s.items.Add(ctx, def.ID, uuid.NewString()); err != nil {
			s.log.Warn("refunding intercepted item failed", zap.String("item", def.ID), zap.Error(err))
		}
		s.message(fmt.Sprintf("%s knocks the %s away!", s.opponent.Name, def.Name))
		s.sound(CueDeny)
		return nil
	}

	switch def.Effect {
	case item.EffectRestoreHP:
		pct := def.Power
		if s.player.LowHP() {
			// Emergency bonus tier when the hero is nearly down.
			pct += 20
		}
		heal := AtLeastOne(PercentOf(s.player.MaxHP, pct))
		s.player.Heal(heal)
		s.message(fmt.Sprintf("%s restores %d HP!", def.Name, heal))
		s.sound(CueHeal)
		s.damage(SidePlayer, heal, true)
	case item.EffectRestoreSP:
		gain := AtLeastOne(PercentOf(s.player.MaxSP, def.Power))
		s.player.RestoreSP(gain)
		s.message(fmt.Sprintf("%s restores %d SP!", def.Name, gain))
		s.sound(CueHeal)
		s.redraw(SidePlayer)
	case item.EffectBoost:
		atkGain := AtLeastOne(PercentOf(s.player.Attack, def.Power))
		defGain := AtLeastOne(PercentOf(s.player.Defense, def.Power))
		s.player.Attack += atkGain
		s.player.Defense += defGain
		s.message(fmt.Sprintf("%s surges with power!", s.player.Name))
		s.sound(CueItem)
		s.redraw(SidePlayer)
	case item.EffectFullRestore:
		s.player.HP = s.player.MaxHP
		s.player.SP = s.player.MaxSP
		s.message(fmt.Sprintf("%s is fully restored!", s.player.Name))
		s.sound(CueHeal)
		s.damage(SidePlayer, s.player.MaxHP, true)
	}
	return nil
}

// resolvePlayerFlee rolls the escape. Success ends the encounter with a
// plain write-back; failure forfeits the turn.
func (s *Session) resolvePlayerFlee(ctx context.Context) error {
	chance := FleeChance(s.player.Speed, s.opponent.Speed)
	if !rng.Percent(s.src, chance) {
		s.message(fmt.Sprintf("%s can't get away!", s.player.Name))
		s.sound(CueDeny)
		return nil
	}

	s.message(fmt.Sprintf("%s slips away!", s.player.Name))
	s.sound(CueFlee)
	err := s.heroes.CommitEscape(ctx, progression.DefeatWriteback{
		HP: s.player.HP,
		SP: s.player.SP,
	})
	s.exit()
	if err != nil {
		return fmt.Errorf("writing back after flee: %w", err)
	}
	return nil
}
