package item_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellsworth/skyquest/internal/game/item"
)

// TestLoadCatalog_Valid verifies a well-formed catalog loads.
func TestLoadCatalog_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - {id: tonic, name: Tonic, effect: restore_hp, power: 30}
  - {id: ether, name: Ether, effect: restore_sp, power: 50}
  - {id: balm, name: War Balm, effect: boost, power: 25}
  - {id: elixir, name: Elixir, effect: full_restore}
`), 0o644))

	cat, err := item.LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())

	tonic, ok := cat.Get("tonic")
	require.True(t, ok)
	assert.Equal(t, item.EffectRestoreHP, tonic.Effect)
	assert.Equal(t, 30, tonic.Power)
}

// TestLoadCatalog_RejectsUnknownEffect verifies effect validation.
func TestLoadCatalog_RejectsUnknownEffect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - {id: bomb, name: Bomb, effect: explode, power: 10}
`), 0o644))

	_, err := item.LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "effect")
}

// TestMemoryInventory_UsableItems_CapsAtFour verifies the item sub-menu
// never receives more than four entries.
func TestMemoryInventory_UsableItems_CapsAtFour(t *testing.T) {
	inv := item.NewMemoryInventory(map[string]int{
		"a": 1, "b": 2, "c": 3, "d": 4, "e": 5,
	})
	stacks, err := inv.UsableItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, stacks, 4)
	for _, s := range stacks {
		assert.GreaterOrEqual(t, s.Quantity, 1)
	}
}

// TestMemoryInventory_ConsumeAndRefund verifies consume/add round trips.
func TestMemoryInventory_ConsumeAndRefund(t *testing.T) {
	ctx := context.Background()
	inv := item.NewMemoryInventory(map[string]int{"tonic": 1})

	require.NoError(t, inv.Consume(ctx, "tonic"))
	assert.Equal(t, 0, inv.Quantity("tonic"))

	err := inv.Consume(ctx, "tonic")
	assert.ErrorIs(t, err, item.ErrItemNotFound)

	require.NoError(t, inv.Add(ctx, "tonic", "instance-1"))
	assert.Equal(t, 1, inv.Quantity("tonic"))
}

// TestMemoryInventory_EmptyList verifies an empty inventory reports no stacks.
func TestMemoryInventory_EmptyList(t *testing.T) {
	inv := item.NewMemoryInventory(nil)
	stacks, err := inv.UsableItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stacks)
}
