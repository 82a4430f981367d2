package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kellsworth/skyquest/internal/game/item"
)

// InventoryStore is an item inventory bound to a single hero. It
// satisfies the battle core's InventoryStore collaborator.
//
// Stacks live in hero_items keyed by (hero_id, item_id); every grant is
// also recorded in hero_item_grants under its instance UUID so a drop
// can be audited after the fact.
type InventoryStore struct {
	db     *pgxpool.Pool
	heroID int64
}

// NewInventoryStore creates an inventory bound to the given hero ID.
func NewInventoryStore(db *pgxpool.Pool, heroID int64) *InventoryStore {
	return &InventoryStore{db: db, heroID: heroID}
}

// UsableItems returns up to four non-empty stacks in item-ID order, the
// slots offered on the battle item submenu.
func (s *InventoryStore) UsableItems(ctx context.Context) ([]item.Stack, error) {
	rows, err := s.db.Query(ctx,
		`SELECT item_id, quantity FROM hero_items
		 WHERE hero_id = $1 AND quantity > 0
		 ORDER BY item_id
		 LIMIT 4`, s.heroID)
	if err != nil {
		return nil, fmt.Errorf("listing usable items: %w", err)
	}
	defer rows.Close()

	var stacks []item.Stack
	for rows.Next() {
		var st item.Stack
		if err := rows.Scan(&st.ItemID, &st.Quantity); err != nil {
			return nil, fmt.Errorf("scanning item stack: %w", err)
		}
		stacks = append(stacks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item stacks: %w", err)
	}
	return stacks, nil
}

// Consume decrements one unit from the stack.
//
// Postcondition: Returns item.ErrItemNotFound if the hero holds none.
func (s *InventoryStore) Consume(ctx context.Context, itemID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE hero_items SET quantity = quantity - 1
		 WHERE hero_id = $1 AND item_id = $2 AND quantity > 0`,
		s.heroID, itemID)
	if err != nil {
		return fmt.Errorf("consuming item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return item.ErrItemNotFound
	}
	return nil
}

// Add grants one unit of the item and records the grant instance.
func (s *InventoryStore) Add(ctx context.Context, itemID, instanceID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO hero_items (hero_id, item_id, quantity)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (hero_id, item_id) DO UPDATE SET quantity = hero_items.quantity + 1`,
		s.heroID, itemID)
	if err != nil {
		return fmt.Errorf("adding item: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO hero_item_grants (instance_id, hero_id, item_id)
		 VALUES ($1, $2, $3)`,
		instanceID, s.heroID, itemID)
	if err != nil {
		return fmt.Errorf("recording item grant: %w", err)
	}

	return tx.Commit(ctx)
}
