package scenario

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// TransitionTest holds the preconditions of a transition.
type TransitionTest struct {
	Location      state.LocationKey `json:"location" yaml:"location"`                                 // Transitions apply at a single location
	RequiredItems state.ItemMap     `json:"required_items,omitempty" yaml:"required_items,omitempty"` // Inventory must agree with these
	WorldState    state.StateMap    `json:"world_state,omitempty" yaml:"world_state,omitempty"`       // World state must agree with these
}

// Transition is one edge of the game graph: the command that triggers it,
// when it is allowed and what it changes.
type Transition struct {
	Cmd         string             `json:"cmd" yaml:"cmd"`
	Test        TransitionTest     `json:"test" yaml:"test"`
	ItemChange  state.ItemMap      `json:"item_change,omitempty" yaml:"item_change,omitempty"`
	NewLocation *state.LocationKey `json:"new_location,omitempty" yaml:"new_location,omitempty"`
	StateChange state.StateMap     `json:"state_change,omitempty" yaml:"state_change,omitempty"`
}

// Command returns the normalised command text.
func (t *Transition) Command() string {
	return NormalizeCommand(t.Cmd)
}

// MovesTo returns the destination, if the transition changes location.
func (t *Transition) MovesTo() (state.LocationKey, bool) {
	if t.NewLocation == nil {
		return 0, false
	}
	return *t.NewLocation, true
}

// mayOverlap reports whether some game state could satisfy the tests of
// both t and other.
func (t *Transition) mayOverlap(other *Transition) bool {
	return t.Test.Location == other.Test.Location &&
		predicatesOverlap(t.Test.RequiredItems, other.Test.RequiredItems) &&
		predicatesOverlap(t.Test.WorldState, other.Test.WorldState)
}

// NormalizeCommand case-folds cmd and collapses runs of whitespace, so
// "Open  Door" and "open door" name the same command.
func NormalizeCommand(cmd string) string {
	return strings.Join(strings.Fields(cases.Fold().String(cmd)), " ")
}
