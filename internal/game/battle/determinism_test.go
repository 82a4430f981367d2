package battle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/game/battle"
	"github.com/kellsworth/skyquest/internal/game/item"
	"github.com/kellsworth/skyquest/internal/game/progression"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

const maxTicks = 100_000

// runSeeded drives one full encounter with a fixed input policy (attack
// every turn) and returns the recorded event stream.
func runSeeded(t *testing.T, seed int64, desc battle.Descriptor) []battle.Event {
	t.Helper()
	sink := &battle.RecordingSink{}
	store := progression.NewMemoryStore(testHero())
	sess := battle.NewSession(zap.NewNop(), rng.NewSeeded(seed), sink, store,
		item.NewMemoryInventory(map[string]int{"tonic": 3}),
		testRegistry(t), testCatalog(), battle.Timing{}, 2)

	ctx := context.Background()
	require.NoError(t, sess.StartEncounter(ctx, desc))

	for i := 0; i < maxTicks; i++ {
		var in battle.Input
		if sess.State() == battle.StatePlayerTurn {
			in.Confirm = true
		}
		status, err := sess.Tick(ctx, in)
		require.NoError(t, err)
		if status == battle.StatusEnded {
			return sink.Events
		}
	}
	t.Fatal("encounter did not terminate")
	return nil
}

func TestSession_SameSeedSameEncounter(t *testing.T) {
	first := runSeeded(t, 1234, battle.NormalEncounter(2))
	second := runSeeded(t, 1234, battle.NormalEncounter(2))

	assert.Equal(t, first, second)
}

func TestSession_BossFightPhaseNeverLowers(t *testing.T) {
	sink := &battle.RecordingSink{}
	store := progression.NewMemoryStore(progression.Hero{
		Name: "Aria", Level: 9,
		HP: 120, MaxHP: 120, SP: 20, MaxSP: 20,
		Attack: 24, Defense: 10, Speed: 12,
	})
	sess := battle.NewSession(zap.NewNop(), rng.NewSeeded(7), sink, store,
		item.NewMemoryInventory(nil), testRegistry(t), testCatalog(), battle.Timing{}, 2)

	ctx := context.Background()
	require.NoError(t, sess.StartEncounter(ctx, battle.BossEncounter(0)))

	phase := sess.BossPhase()
	for i := 0; i < maxTicks; i++ {
		var in battle.Input
		if sess.State() == battle.StatePlayerTurn {
			in.Confirm = true
		}
		status, err := sess.Tick(ctx, in)
		require.NoError(t, err)

		next := sess.BossPhase()
		assert.GreaterOrEqual(t, next, phase)
		phase = next

		if status == battle.StatusEnded {
			return
		}
	}
	t.Fatal("boss fight did not terminate")
}
