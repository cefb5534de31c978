package state

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	inventoryHeader = "Your inventory contains: "
	inventoryEmpty  = "nothing"
)

// ItemNamer looks up the display name of an item.
// It keeps this package free of a dependency on the scenario package.
type ItemNamer interface {
	ItemName(k ItemKey) (string, bool)
}

// Inventory records, for every known item, whether the player holds it.
// The set of items is fixed when the inventory is created.
type Inventory struct {
	items Table[ItemKey]
}

// NewInventory creates an inventory over exactly the keys of items.
func NewInventory(items ItemMap) Inventory {
	return Inventory{items: NewTable(items)}
}

// MergeChanges applies the item changes of a transition.
func (inv Inventory) MergeChanges(changes ItemMap) error {
	if err := inv.items.Merge(changes); err != nil {
		return fmt.Errorf("inventory merge: %w", err)
	}
	return nil
}

// Check reports whether the inventory agrees with every entry of subset.
func (inv Inventory) Check(subset ItemMap) (bool, error) {
	ok, err := inv.items.Check(subset)
	if err != nil {
		return false, fmt.Errorf("inventory check: %w", err)
	}
	return ok, nil
}

// Covers fails if changes names an item the inventory does not track.
func (inv Inventory) Covers(changes ItemMap) error {
	return inv.items.Covers(changes)
}

// Has reports whether item k is currently held. Unknown items are not held.
func (inv Inventory) Has(k ItemKey) bool {
	held, err := inv.items.Get(k)
	return err == nil && held
}

// Held returns the keys of held items in ascending order.
func (inv Inventory) Held() []ItemKey {
	var held []ItemKey
	inv.items.Each(func(k ItemKey, v bool) {
		if v {
			held = append(held, k)
		}
	})
	return held
}

// Items exposes the underlying table.
func (inv Inventory) Items() Table[ItemKey] {
	return inv.items
}

// Clone returns an independent copy of the inventory.
func (inv Inventory) Clone() Inventory {
	return Inventory{items: inv.items.Clone()}
}

// Equal reports whether both inventories track the same items with the
// same values.
func (inv Inventory) Equal(other Inventory) bool {
	return inv.items.Equal(other.items)
}

// Describe writes the names of the held items to w. Every name is looked up
// before anything is written, so a missing item leaves w untouched.
func (inv Inventory) Describe(w io.Writer, names ItemNamer) error {
	held := inv.Held()
	parts := make([]string, 0, len(held))
	for _, k := range held {
		name, ok := names.ItemName(k)
		if !ok {
			return fmt.Errorf("describe inventory: %w", unknownKey(k))
		}
		parts = append(parts, name)
	}

	list := inventoryEmpty
	if len(parts) > 0 {
		list = strings.Join(parts, ", ")
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", inventoryHeader, list)
	return err
}

// MarshalJSON encodes the inventory as an item key → held object.
func (inv Inventory) MarshalJSON() ([]byte, error) {
	return json.Marshal(inv.items)
}

// UnmarshalJSON decodes an inventory written by MarshalJSON.
func (inv *Inventory) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &inv.items)
}
