package state

import (
	"encoding/json"
	"fmt"
)

// GameState is the mutable run-time state of one game session. Only a
// successfully validated transition changes it.
type GameState struct {
	CurrentLocation LocationKey     `json:"current_location"`
	Inventory       Inventory       `json:"inventory"`
	WorldState      Table[StateKey] `json:"world_state"`
}

// NewGameState creates a game state whose inventory and world state track
// exactly the keys given.
func NewGameState(location LocationKey, inventory ItemMap, world StateMap) *GameState {
	return &GameState{
		CurrentLocation: location,
		Inventory:       NewInventory(inventory),
		WorldState:      NewTable(world),
	}
}

// Clone returns a deep copy. Key layouts are shared, values are not.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	return &GameState{
		CurrentLocation: gs.CurrentLocation,
		Inventory:       gs.Inventory.Clone(),
		WorldState:      gs.WorldState.Clone(),
	}
}

// Equal reports whether two states are indistinguishable.
func (gs *GameState) Equal(other *GameState) bool {
	if gs == nil || other == nil {
		return gs == other
	}
	return gs.CurrentLocation == other.CurrentLocation &&
		gs.Inventory.Equal(other.Inventory) &&
		gs.WorldState.Equal(other.WorldState)
}

// SameShape reports whether other tracks the same items and flags as gs.
func (gs *GameState) SameShape(other *GameState) bool {
	return gs.Inventory.items.SameKeys(other.Inventory.items) &&
		gs.WorldState.SameKeys(other.WorldState)
}

// String renders the state as compact JSON for logs.
func (gs *GameState) String() string {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Sprintf("GameState{location: %d}", gs.CurrentLocation)
	}
	return string(data)
}
