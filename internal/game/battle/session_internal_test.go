package battle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/game/bestiary"
	"github.com/kellsworth/skyquest/internal/game/item"
	"github.com/kellsworth/skyquest/internal/game/progression"
)

// seqSrc replays a fixed roll sequence; exhausted scripts return n-1.
type seqSrc struct {
	rolls []int
	i     int
}

func (s *seqSrc) Intn(n int) int {
	if s.i >= len(s.rolls) {
		return n - 1
	}
	v := s.rolls[s.i]
	s.i++
	return v
}

func internalRegistry(t *testing.T) *bestiary.Registry {
	t.Helper()
	enemies := []*bestiary.EnemyDef{{
		Type: 0, Name: "Husk", Level: 1, XP: 10,
		Archetype: bestiary.ArchetypeBalanced,
		Stats:     bestiary.Stats{MaxHP: 30, Attack: 5, Defense: 2, Speed: 3},
		Drops:     []bestiary.DropEntry{{ItemID: "tonic", Chance: 10}},
	}}
	bosses := []*bestiary.BossDef{{
		Type: 0, Name: "Monolith", Level: 9, XP: 100,
		DropItem: "tonic", Weakness: "frost",
		Stats: bestiary.Stats{MaxHP: 100, Attack: 10, Defense: 4, Speed: 6, MaxSP: 8},
	}}
	reg, err := bestiary.NewRegistry(enemies, bosses)
	require.NoError(t, err)
	return reg
}

// newInternalSession builds a started session whose internals the tests in
// this package may poke directly.
func newInternalSession(t *testing.T, rolls []int, boss bool) *Session {
	t.Helper()
	cat := item.NewCatalog()
	cat.Register(&item.ItemDef{ID: "tonic", Name: "Tonic", Effect: item.EffectRestoreHP, Power: 30})
	store := progression.NewMemoryStore(progression.Hero{
		Name: "Vale", Level: 1,
		HP: 50, MaxHP: 50, SP: 5, MaxSP: 5,
		Attack: 12, Defense: 5, Speed: 10,
	})
	s := NewSession(zap.NewNop(), &seqSrc{rolls: rolls}, &RecordingSink{}, store,
		item.NewMemoryInventory(nil), internalRegistry(t), cat, Timing{}, 2)

	desc := NormalEncounter(0)
	if boss {
		desc = BossEncounter(0)
	}
	require.NoError(t, s.StartEncounter(context.Background(), desc))
	return s
}

func TestTickResolve_VictoryCheckedBeforeDefeat(t *testing.T) {
	// Both sides at zero in the same resolution: the player wins.
	s := newInternalSession(t, nil, false)
	s.player.HP = 0
	s.opponent.HP = 0
	s.state = StateResolve
	s.lastActor = SidePlayer
	s.actionTimer = 0

	s.tickResolve()

	assert.Equal(t, StateVictory, s.state)
}

func TestTickResolve_AlternationAndTurnCount(t *testing.T) {
	s := newInternalSession(t, nil, false)

	s.state = StateResolve
	s.lastActor = SidePlayer
	s.actionTimer = 0
	s.tickResolve()
	assert.Equal(t, StateEnemyTurn, s.state)
	assert.Equal(t, 1, s.turnNumber, "the turn number holds until the opponent has acted")

	s.state = StateResolve
	s.lastActor = SideOpponent
	s.actionTimer = 0
	s.tickResolve()
	assert.Equal(t, StatePlayerTurn, s.state)
	assert.Equal(t, 2, s.turnNumber)
}

func TestEnterPlayerTurn_LethalPoisonDefeats(t *testing.T) {
	s := newInternalSession(t, nil, false)
	s.player.PoisonTurns = 1
	s.player.HP = 2

	s.state = StateResolve
	s.lastActor = SideOpponent
	s.actionTimer = 0
	s.tickResolve()

	assert.Equal(t, StateDefeat, s.state)
	assert.Equal(t, 0, s.player.HP)
}

func TestEnterEnemyTurn_LethalPoisonGrantsVictory(t *testing.T) {
	s := newInternalSession(t, nil, false)
	s.opponent.PoisonTurns = 1
	s.opponent.HP = 2

	s.state = StateResolve
	s.lastActor = SidePlayer
	s.actionTimer = 0
	s.tickResolve()

	assert.Equal(t, StateVictory, s.state)
}

func TestVictoryAward_Adjustments(t *testing.T) {
	s := newInternalSession(t, nil, false)
	s.xpBase = 100
	s.turnNumber = 2 // fast clear: +25
	s.hero.Level = 1
	s.hero.WinStreak = 10 // streak bonus capped at +25
	s.enemyDef = &bestiary.EnemyDef{Level: 4}
	// catch-up for a 3-level gap: +30
	s.xpEarly = 50

	assert.Equal(t, 100+25+30+25-50, s.victoryAward())
}

func TestVictoryAward_CatchUpCap(t *testing.T) {
	s := newInternalSession(t, nil, false)
	s.xpBase = 100
	s.turnNumber = 10
	s.hero.Level = 1
	s.hero.WinStreak = 0
	s.enemyDef = &bestiary.EnemyDef{Level: 20}

	assert.Equal(t, 150, s.victoryAward(), "catch-up tops out at half the base")
}

func TestVictoryAward_NeverBelowOne(t *testing.T) {
	s := newInternalSession(t, nil, false)
	s.xpBase = 10
	s.turnNumber = 10
	s.enemyDef = &bestiary.EnemyDef{Level: 1}
	s.xpEarly = 999

	assert.Equal(t, 1, s.victoryAward())
}

func TestRollDrop_PityForcesDrop(t *testing.T) {
	// The chance roll misses, but three dry victories force the table's
	// first entry.
	s := newInternalSession(t, []int{99}, false)
	s.hero.DroplessStreak = pityThreshold

	assert.Equal(t, "tonic", s.rollDrop())
}

func TestRollDrop_MissWithoutPity(t *testing.T) {
	s := newInternalSession(t, []int{99}, false)
	s.hero.DroplessStreak = pityThreshold - 1

	assert.Equal(t, "", s.rollDrop())
}

func TestRollDrop_BossAlwaysDrops(t *testing.T) {
	s := newInternalSession(t, []int{99}, true)

	assert.Equal(t, "tonic", s.rollDrop())
}

func TestEffectivePlayerAction_SpecialDegradesWithoutSP(t *testing.T) {
	s := newInternalSession(t, nil, false)
	s.player.SP = 0
	s.playerAction = Standard{Kind: ActSpecial}

	assert.Equal(t, Standard{Kind: ActAttack}, s.effectivePlayerAction())

	s.player.SP = 1
	assert.Equal(t, Standard{Kind: ActSpecial}, s.effectivePlayerAction())
}

func TestPlayerBaseDamage_WeaknessBonus(t *testing.T) {
	// Monolith is weak to frost: a matching loadout adds a quarter.
	s := newInternalSession(t, []int{0, 0}, true)
	s.hero.Loadout = "frost"
	withBonus := s.playerBaseDamage()

	s.hero.Loadout = "flame"
	without := s.playerBaseDamage()

	assert.Equal(t, without+without/4, withBonus)
}
