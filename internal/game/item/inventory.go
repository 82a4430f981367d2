package item

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrItemNotFound is returned when consuming an item the inventory does not hold.
var ErrItemNotFound = errors.New("item not found in inventory")

// Stack is one inventory entry: an item id and how many units are held.
type Stack struct {
	ItemID   string
	Quantity int
}

// MemoryInventory is an in-memory inventory store. It satisfies the battle
// core's InventoryStore collaborator and backs the simulator and tests.
// It is not safe for concurrent use; the battle session is single-threaded.
type MemoryInventory struct {
	quantities map[string]int
}

// NewMemoryInventory creates an inventory with the given starting quantities.
func NewMemoryInventory(initial map[string]int) *MemoryInventory {
	q := make(map[string]int, len(initial))
	for id, n := range initial {
		if n > 0 {
			q[id] = n
		}
	}
	return &MemoryInventory{quantities: q}
}

// UsableItems returns up to four held stacks in stable (sorted id) order.
//
// Postcondition: len(result) <= 4; every stack has Quantity >= 1.
func (m *MemoryInventory) UsableItems(ctx context.Context) ([]Stack, error) {
	ids := make([]string, 0, len(m.quantities))
	for id := range m.quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var stacks []Stack
	for _, id := range ids {
		if len(stacks) == 4 {
			break
		}
		stacks = append(stacks, Stack{ItemID: id, Quantity: m.quantities[id]})
	}
	return stacks, nil
}

// Consume removes one unit of itemID.
//
// Postcondition: Returns ErrItemNotFound if no units are held; otherwise
// the quantity is decremented and empty stacks are removed.
func (m *MemoryInventory) Consume(ctx context.Context, itemID string) error {
	n, ok := m.quantities[itemID]
	if !ok || n < 1 {
		return fmt.Errorf("consuming %q: %w", itemID, ErrItemNotFound)
	}
	if n == 1 {
		delete(m.quantities, itemID)
	} else {
		m.quantities[itemID] = n - 1
	}
	return nil
}

// Add grants one unit of itemID. The instanceID identifies the granted
// unit for audit purposes; the in-memory store only counts quantities.
func (m *MemoryInventory) Add(ctx context.Context, itemID, instanceID string) error {
	if itemID == "" {
		return errors.New("adding item: empty item id")
	}
	m.quantities[itemID]++
	return nil
}

// Quantity reports how many units of itemID are held.
func (m *MemoryInventory) Quantity(itemID string) int {
	return m.quantities[itemID]
}
