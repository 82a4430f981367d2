package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/game/bestiary"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

// eliteRiderChance is the percent chance a trickster enemy's landed attack
// carries a poison or SP-drain rider.
const eliteRiderChance = 25

// poisonInflictTurns is how long an inflicted poison lasts.
const poisonInflictTurns = 3

// resolveOpponentAction dispatches the opponent's chosen action through
// the shared damage model. Boss-only moves branch to resolveBossAction.
func (s *Session) resolveOpponentAction() {
	switch act := s.opponentAction.(type) {
	case Standard:
		s.resolveOpponentStandard(act.Kind)
	case BossSpecial:
		if s.boss == nil {
			// Normal enemies never queue boss moves; treat as a skipped
			// turn rather than crash.
			s.log.Warn("non-boss opponent queued boss action", zap.String("action", act.String()))
			return
		}
		s.resolveBossAction(act.Kind)
	}
}

func (s *Session) resolveOpponentStandard(kind StandardAction) {
	// The effective-action transform mirrors the player side: Special
	// without SP degrades to Attack.
	if kind == ActSpecial && s.opponent.SP < 1 {
		kind = ActAttack
	}

	switch kind {
	case ActAttack:
		dmg := s.opponentBaseDamage()
		s.dealToPlayer(dmg, CueHit, 0)
		s.message(fmt.Sprintf("%s attacks %s for %d!", s.opponent.Name, s.player.Name, dmg))
		s.applyEliteRider()
	case ActSpecial:
		s.opponent.SpendSP(1)
		dmg := SpecialDamage(s.opponentBaseDamage(), s.opponent.LowHP())
		s.dealToPlayer(dmg, CueCrit, 1)
		s.message(fmt.Sprintf("%s uses a special attack for %d!", s.opponent.Name, dmg))
		s.applyEliteRider()
	case ActDefend:
		s.opponent.Defending = true
		s.message(fmt.Sprintf("%s guards.", s.opponent.Name))
		// Defend-stance tie: both sides defended the same round, so the
		// player's stance survives the next turn start.
		if std, ok := s.playerAction.(Standard); ok && std.Kind == ActDefend && s.player.Defending {
			s.carryDefend = true
		}
	default:
		s.log.Warn("opponent queued invalid action", zap.String("action", kind.String()))
	}
}

// opponentBaseDamage computes one opponent hit against the player.
func (s *Session) opponentBaseDamage() int {
	return RawDamage(s.opponent.Attack, s.player.EffectiveDefense(), Variance(s.src))
}

// dealToPlayer applies damage with its events, then credits the braced SP
// refund when a defended hit exceeds the threshold.
func (s *Session) dealToPlayer(dmg int, cue SoundCue, bucket int) {
	s.player.ApplyDamage(dmg)
	s.sound(cue)
	s.shake(SidePlayer, bucket)
	s.damage(SidePlayer, dmg, false)

	if s.player.Defending && dmg > bracedRefundThreshold {
		s.player.RestoreSP(1)
		s.message(fmt.Sprintf("%s absorbs the blow and recovers 1 SP!", s.player.Name))
		s.redraw(SidePlayer)
	}
}

// applyEliteRider gives trickster-archetype enemies their poison or
// SP-drain rider on landed attacks. Bosses rely on their own toolkit.
func (s *Session) applyEliteRider() {
	if s.enemyDef == nil || s.enemyDef.Archetype != bestiary.ArchetypeTrickster {
		return
	}
	if s.player.Defeated() || !rng.Percent(s.src, eliteRiderChance) {
		return
	}
	if rng.Percent(s.src, 50) {
		s.player.PoisonTurns = poisonInflictTurns
		s.message(fmt.Sprintf("%s is poisoned!", s.player.Name))
		s.sound(CuePoison)
	} else if s.player.SP > 0 {
		s.player.SP--
		s.opponent.RestoreSP(1)
		s.message(fmt.Sprintf("%s siphons 1 SP!", s.opponent.Name))
		s.redraw(SidePlayer)
	}
}
