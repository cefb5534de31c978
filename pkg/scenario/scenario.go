package scenario

import (
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// ItemData is the static description of an item.
type ItemData struct {
	Name        string `json:"name" yaml:"name"`                                   // Shown in the inventory list
	Description string `json:"description,omitempty" yaml:"description,omitempty"` // Shown when examined
}

// Start is the initial game state. Its inventory and world state also
// define the complete key sets for the session.
type Start struct {
	Location   state.LocationKey `json:"location" yaml:"location"`
	Inventory  state.ItemMap     `json:"inventory" yaml:"inventory"`
	WorldState state.StateMap    `json:"world_state" yaml:"world_state"`
}

// Scenario is the static content of one game: items, locations and the
// transitions between states. It is read-only once loaded.
type Scenario struct {
	Name        string                                         `json:"name" yaml:"name"`
	FileName    string                                         `json:"file_name,omitempty" yaml:"file_name,omitempty"` // Set by LoadFile when empty
	Story       string                                         `json:"story,omitempty" yaml:"story,omitempty"`         // Opening text
	Start       Start                                          `json:"start" yaml:"start"`
	Items       state.Catalog[state.ItemKey, ItemData]         `json:"items" yaml:"items"`
	Locations   state.Catalog[state.LocationKey, LocationData] `json:"locations" yaml:"locations"`
	Transitions []Transition                                   `json:"transitions" yaml:"transitions"`
}

// Ensure Scenario can name items for inventory descriptions
var _ state.ItemNamer = (*Scenario)(nil)

// Item returns the static data of item k.
func (s *Scenario) Item(k state.ItemKey) (ItemData, bool) {
	item, ok := s.Items[k]
	return item, ok
}

// ItemName returns the display name of item k.
func (s *Scenario) ItemName(k state.ItemKey) (string, bool) {
	item, ok := s.Item(k)
	if !ok {
		return "", false
	}
	return item.Name, true
}

// Location returns the static data of location k.
func (s *Scenario) Location(k state.LocationKey) (LocationData, bool) {
	loc, ok := s.Locations[k]
	return loc, ok
}

// NewGameState builds the opening state of the scenario.
func (s *Scenario) NewGameState() *state.GameState {
	return state.NewGameState(s.Start.Location, s.Start.Inventory, s.Start.WorldState)
}
