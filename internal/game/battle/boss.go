package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/game/bestiary"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

// BossPhase is the HP-threshold-driven AI aggressiveness tier. Once raised
// it never decreases for the rest of the encounter, even if the boss heals
// back above a threshold.
type BossPhase int

const (
	PhaseNormal BossPhase = iota
	PhaseEnraged
	PhaseDesperate
)

// String returns the phase name.
func (p BossPhase) String() string {
	switch p {
	case PhaseEnraged:
		return "enraged"
	case PhaseDesperate:
		return "desperate"
	default:
		return "normal"
	}
}

// revengeStrikeDamage is the fixed chip damage dealt to the player when
// the boss first turns desperate.
const revengeStrikeDamage = 6

// repairCooldownTurns is the minimum boss turns between Repair uses.
const repairCooldownTurns = 3

// rageBuffInterval and rageBuffAmount drive the every-4th-turn attack
// ramp. It fires regardless of phase and stacks with phase changes up to
// the cap of base attack plus half.
const (
	rageBuffInterval = 4
	rageBuffAmount   = 2
)

// bossState is the boss-only runtime extension of the session.
type bossState struct {
	def         *bestiary.BossDef
	phase       BossPhase
	charging    bool
	chargeBonus int
	// turnsSinceHeal gates Repair; it starts ready.
	turnsSinceHeal  int
	baseAttack      int
	dropItem        string
	xpPhasesAwarded int
}

func newBossState(def *bestiary.BossDef) *bossState {
	return &bossState{
		def:            def,
		phase:          PhaseNormal,
		turnsSinceHeal: repairCooldownTurns,
		baseAttack:     def.Stats.Attack,
		dropItem:       def.DropItem,
	}
}

// phaseFor maps an HP fraction to a phase: above half is Normal, above a
// quarter is Enraged, a quarter and below is Desperate.
func phaseFor(hp, maxHP int) BossPhase {
	switch {
	case hp*4 <= maxHP:
		return PhaseDesperate
	case hp*2 <= maxHP:
		return PhaseEnraged
	default:
		return PhaseNormal
	}
}

// checkBossPhase raises the phase to match current HP, firing the one-shot
// transition effects for every tier crossed. The phase never lowers.
func (s *Session) checkBossPhase() {
	target := phaseFor(s.opponent.HP, s.opponent.MaxHP)
	for s.boss.phase < target {
		s.boss.phase++
		s.fireBossTransition(s.boss.phase)
	}
}

// fireBossTransition emits the one-shot phase effects: announcement,
// partial XP, and for the desperate tier the revenge strike plus the
// player's fairness shield.
func (s *Session) fireBossTransition(phase BossPhase) {
	partial := PercentOf(s.xpBase, 25)
	s.xpEarly += partial
	s.boss.xpPhasesAwarded++

	s.sound(CuePhase)
	s.shake(SideOpponent, 2)
	s.log.Info("boss phase transition",
		zap.String("phase", phase.String()),
		zap.Int("partial_xp", partial),
		zap.Int("turn", s.turnNumber),
	)

	switch phase {
	case PhaseEnraged:
		s.message(fmt.Sprintf("%s flies into a rage!", s.opponent.Name))
	case PhaseDesperate:
		s.message(fmt.Sprintf("%s fights with desperate fury!", s.opponent.Name))
		s.player.ApplyDamage(revengeStrikeDamage)
		s.message(fmt.Sprintf("A revenge strike hits %s for %d!", s.player.Name, revengeStrikeDamage))
		s.damage(SidePlayer, revengeStrikeDamage, false)
		s.shake(SidePlayer, 1)
		// Fairness shield: the player is defended through the boss's
		// next action, clearing at their own turn start as usual.
		s.player.Defending = true
		s.message(fmt.Sprintf("%s instinctively guards!", s.player.Name))
	}
	s.message(fmt.Sprintf("+%d XP", partial))
}

// bossTurnStart applies the per-turn boss bookkeeping: the Repair cooldown
// tick and the every-4th-turn attack ramp.
func (s *Session) bossTurnStart() {
	b := s.boss
	b.turnsSinceHeal++

	if s.turnNumber%rageBuffInterval == 0 {
		ceiling := b.baseAttack + b.baseAttack/2
		if s.opponent.Attack < ceiling {
			s.opponent.Attack += rageBuffAmount
			if s.opponent.Attack > ceiling {
				s.opponent.Attack = ceiling
			}
			s.message(fmt.Sprintf("%s grows more ferocious!", s.opponent.Name))
		}
	}
}

// bossWeights is one phase's action distribution out of 100, in
// bossActionOrder order.
type bossWeights [8]int

// bossActionOrder fixes the column meaning of bossWeights.
var bossActionOrder = [8]Action{
	Standard{Kind: ActAttack},
	Standard{Kind: ActSpecial},
	BossSpecial{Kind: BossHeavy},
	BossSpecial{Kind: BossMulti},
	BossSpecial{Kind: BossDrain},
	BossSpecial{Kind: BossCharge},
	BossSpecial{Kind: BossRepair},
	Standard{Kind: ActDefend},
}

// Per-phase tables: later phases trade Defend and plain attacks for the
// heavy toolkit.
var bossPhaseWeights = map[BossPhase]bossWeights{
	PhaseNormal:    {40, 15, 10, 0, 0, 10, 10, 15},
	PhaseEnraged:   {25, 15, 15, 15, 10, 10, 5, 5},
	PhaseDesperate: {15, 15, 20, 15, 15, 10, 10, 0},
}

// chooseBossAction picks the boss move for this turn. A stored charge
// forces Heavy regardless of the table; otherwise the phase table is
// sampled with unavailable moves masked out.
func (s *Session) chooseBossAction() Action {
	b := s.boss

	if b.charging {
		return BossSpecial{Kind: BossHeavy}
	}

	weights := bossPhaseWeights[b.phase]
	for i, action := range bossActionOrder {
		if !s.bossActionAvailable(action) {
			weights[i] = 0
		}
	}

	total := 0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return Standard{Kind: ActAttack}
	}

	roll := s.src.Intn(total)
	for i, w := range weights {
		if roll < w {
			return bossActionOrder[i]
		}
		roll -= w
	}
	return Standard{Kind: ActAttack}
}

// bossActionAvailable gates SP-costing moves on SP and Repair on its
// cooldown and missing HP.
func (s *Session) bossActionAvailable(a Action) bool {
	switch act := a.(type) {
	case Standard:
		if act.Kind == ActSpecial {
			return s.opponent.SP >= 1
		}
		return true
	case BossSpecial:
		switch act.Kind {
		case BossMulti, BossDrain:
			return s.opponent.SP >= 1
		case BossRepair:
			return s.boss.turnsSinceHeal >= repairCooldownTurns && s.opponent.HP < s.opponent.MaxHP
		default:
			return true
		}
	}
	return false
}

// resolveBossAction dispatches the boss-only moves. Standard moves go
// through the shared opponent resolution.
func (s *Session) resolveBossAction(act BossAction) {
	b := s.boss
	switch act {
	case BossHeavy:
		dmg := 2 * s.opponentBaseDamage()
		if b.charging {
			dmg += b.chargeBonus
			b.charging = false
			b.chargeBonus = 0
			s.message(fmt.Sprintf("%s releases the stored power!", s.opponent.Name))
		}
		s.dealToPlayer(dmg, CueCrit, 2)
		s.message(fmt.Sprintf("%s lands a crushing blow for %d!", s.opponent.Name, dmg))
	case BossMulti:
		s.opponent.SpendSP(1)
		hits := rng.Between(s.src, 2, 3)
		for i := 0; i < hits; i++ {
			dmg := AtLeastOne(s.opponentBaseDamage() * 3 / 4)
			s.dealToPlayer(dmg, CueHit, 1)
			s.message(fmt.Sprintf("%s strikes for %d!", s.opponent.Name, dmg))
			if s.player.Defeated() {
				break
			}
		}
	case BossDrain:
		s.opponent.SpendSP(1)
		dmg := s.opponentBaseDamage()
		s.dealToPlayer(dmg, CueHit, 1)
		heal := AtLeastOne(dmg / 2)
		s.opponent.Heal(heal)
		s.message(fmt.Sprintf("%s drains %d HP from %s!", s.opponent.Name, heal, s.player.Name))
		s.damage(SideOpponent, heal, true)
	case BossCharge:
		b.charging = true
		b.chargeBonus = s.opponent.Attack
		s.message(fmt.Sprintf("%s is gathering power...", s.opponent.Name))
		s.sound(CueCharge)
	case BossRepair:
		pct := rng.Between(s.src, 18, 25)
		heal := AtLeastOne(PercentOf(s.opponent.MaxHP, pct))
		s.opponent.Heal(heal)
		b.turnsSinceHeal = 0
		s.message(fmt.Sprintf("%s repairs itself for %d HP!", s.opponent.Name, heal))
		s.sound(CueHeal)
		s.damage(SideOpponent, heal, true)
	}
}
