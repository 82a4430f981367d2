package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseFor(t *testing.T) {
	cases := []struct {
		name  string
		hp    int
		maxHP int
		want  BossPhase
	}{
		{"full health", 100, 100, PhaseNormal},
		{"just above half", 51, 100, PhaseNormal},
		{"exactly half", 50, 100, PhaseEnraged},
		{"just above quarter", 26, 100, PhaseEnraged},
		{"exactly quarter", 25, 100, PhaseDesperate},
		{"near death", 1, 100, PhaseDesperate},
		{"zero", 0, 100, PhaseDesperate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, phaseFor(tc.hp, tc.maxHP))
		})
	}
}

func TestCheckBossPhase_SkippedTiersFireInOrder(t *testing.T) {
	// A single blow from full health to a quarter crosses both thresholds:
	// each tier fires its one-shot effects exactly once.
	s := newInternalSession(t, nil, true)
	s.opponent.HP = 25

	s.checkBossPhase()

	assert.Equal(t, PhaseDesperate, s.boss.phase)
	assert.Equal(t, 2, s.boss.xpPhasesAwarded)
	assert.Equal(t, 50, s.xpEarly, "a quarter of the base award per tier")
	assert.Equal(t, 44, s.player.HP, "one revenge strike, not two")
	assert.True(t, s.player.Defending, "the fairness shield is raised")

	msgs := s.sink.(*RecordingSink).Messages()
	assert.Contains(t, msgs, "Monolith flies into a rage!")
	assert.Contains(t, msgs, "Monolith fights with desperate fury!")
	assert.Contains(t, msgs, "A revenge strike hits Vale for 6!")
}

func TestCheckBossPhase_NeverLowers(t *testing.T) {
	s := newInternalSession(t, nil, true)
	s.opponent.HP = 25
	s.checkBossPhase()
	require.Equal(t, PhaseDesperate, s.boss.phase)
	before := s.xpEarly

	// Re-checking at the same HP is a no-op, and healing back above the
	// thresholds does not lower the phase.
	s.checkBossPhase()
	s.opponent.HP = 90
	s.checkBossPhase()

	assert.Equal(t, PhaseDesperate, s.boss.phase)
	assert.Equal(t, before, s.xpEarly)
	assert.Equal(t, 2, s.boss.xpPhasesAwarded)
}

func TestChooseBossAction_ChargeForcesHeavyWithoutRoll(t *testing.T) {
	s := newInternalSession(t, nil, true)
	s.boss.charging = true
	src := &seqSrc{rolls: []int{0}}
	s.src = src

	got := s.chooseBossAction()

	assert.Equal(t, BossSpecial{Kind: BossHeavy}, got)
	assert.Equal(t, 0, src.i, "the forced move consumes no randomness")
}

func TestChooseBossAction_NormalPhaseBands(t *testing.T) {
	// At full HP Repair is masked out, leaving a table of 90:
	// Attack 0-39, Special 40-54, Heavy 55-64, Charge 65-74, Defend 75-89.
	cases := []struct {
		roll int
		want Action
	}{
		{0, Standard{Kind: ActAttack}},
		{39, Standard{Kind: ActAttack}},
		{40, Standard{Kind: ActSpecial}},
		{54, Standard{Kind: ActSpecial}},
		{55, BossSpecial{Kind: BossHeavy}},
		{64, BossSpecial{Kind: BossHeavy}},
		{65, BossSpecial{Kind: BossCharge}},
		{74, BossSpecial{Kind: BossCharge}},
		{75, Standard{Kind: ActDefend}},
		{89, Standard{Kind: ActDefend}},
	}
	s := newInternalSession(t, nil, true)
	for _, tc := range cases {
		s.src = &seqSrc{rolls: []int{tc.roll}}
		assert.Equal(t, tc.want, s.chooseBossAction(), "roll %d", tc.roll)
	}
}

func TestChooseBossAction_MasksSPMoves(t *testing.T) {
	// With SP drained, Special drops from the table too. Remaining 75:
	// Attack 0-39, Heavy 40-49, Charge 50-59, Defend 60-74.
	cases := []struct {
		roll int
		want Action
	}{
		{39, Standard{Kind: ActAttack}},
		{40, BossSpecial{Kind: BossHeavy}},
		{50, BossSpecial{Kind: BossCharge}},
		{60, Standard{Kind: ActDefend}},
		{74, Standard{Kind: ActDefend}},
	}
	s := newInternalSession(t, nil, true)
	s.opponent.SP = 0
	for _, tc := range cases {
		s.src = &seqSrc{rolls: []int{tc.roll}}
		assert.Equal(t, tc.want, s.chooseBossAction(), "roll %d", tc.roll)
	}
}

func TestBossActionAvailable_RepairGate(t *testing.T) {
	s := newInternalSession(t, nil, true)
	repair := BossSpecial{Kind: BossRepair}

	assert.False(t, s.bossActionAvailable(repair), "no repair at full health")

	s.opponent.HP = 50
	s.boss.turnsSinceHeal = repairCooldownTurns
	assert.True(t, s.bossActionAvailable(repair))

	s.boss.turnsSinceHeal = 0
	assert.False(t, s.bossActionAvailable(repair), "cooldown not elapsed")
}

func TestResolveBossAction_RepairHealsAndResetsCooldown(t *testing.T) {
	s := newInternalSession(t, nil, true)
	s.opponent.HP = 50
	s.boss.turnsSinceHeal = 5
	s.src = &seqSrc{rolls: []int{7}} // Between(18, 25) -> 25

	s.resolveBossAction(BossRepair)

	assert.Equal(t, 75, s.opponent.HP)
	assert.Equal(t, 0, s.boss.turnsSinceHeal)
}

func TestResolveBossAction_MultiStopsOnDefeat(t *testing.T) {
	s := newInternalSession(t, nil, true)
	s.player.HP = 1
	s.src = &seqSrc{rolls: []int{1, 0}} // 3 hits rolled, one lands

	s.resolveBossAction(BossMulti)

	assert.Equal(t, 0, s.player.HP)
	assert.Equal(t, 7, s.opponent.SP)

	hits := 0
	for _, m := range s.sink.(*RecordingSink).Messages() {
		if m == "Monolith strikes for 4!" {
			hits++
		}
	}
	assert.Equal(t, 1, hits, "remaining hits are skipped once the player is down")
}

func TestResolveBossAction_DrainHealsHalf(t *testing.T) {
	s := newInternalSession(t, nil, true)
	s.opponent.HP = 50
	s.src = &seqSrc{rolls: []int{0}} // RawDamage(10, 5, 0) = 6

	s.resolveBossAction(BossDrain)

	assert.Equal(t, 44, s.player.HP)
	assert.Equal(t, 53, s.opponent.HP)
	assert.Equal(t, 7, s.opponent.SP)
}

func TestResolveBossAction_ChargeThenHeavy(t *testing.T) {
	s := newInternalSession(t, nil, true)
	s.resolveBossAction(BossCharge)
	assert.True(t, s.boss.charging)
	assert.Equal(t, 10, s.boss.chargeBonus)

	s.src = &seqSrc{rolls: []int{0}}
	s.resolveBossAction(BossHeavy)

	assert.Equal(t, 50-22, s.player.HP, "2x base plus the stored bonus")
	assert.False(t, s.boss.charging)
	assert.Equal(t, 0, s.boss.chargeBonus)
}

func TestBossTurnStart_RageRampAndCap(t *testing.T) {
	s := newInternalSession(t, nil, true)

	s.turnNumber = 4
	s.bossTurnStart()
	assert.Equal(t, 12, s.opponent.Attack)
	assert.Equal(t, repairCooldownTurns+1, s.boss.turnsSinceHeal)

	// The ramp tops out at base attack plus half.
	s.opponent.Attack = 14
	s.bossTurnStart()
	s.bossTurnStart()
	s.turnNumber = 8
	s.bossTurnStart()
	assert.Equal(t, 15, s.opponent.Attack)

	before := len(s.sink.(*RecordingSink).Messages())
	s.turnNumber = 12
	s.bossTurnStart()
	assert.Equal(t, 15, s.opponent.Attack)
	assert.Equal(t, before, len(s.sink.(*RecordingSink).Messages()), "no announcement at the cap")
}
