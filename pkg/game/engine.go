package game

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/adventure-engine/pkg/scenario"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

var (
	// ErrNotApplicable is returned by Apply when the transition's test fails
	// in the current state.
	ErrNotApplicable = errors.New("transition not applicable")

	// ErrNoValidTransition is returned by Step when transitions exist for the
	// command but none is applicable in the current state.
	ErrNoValidTransition = errors.New("no valid transition")

	// ErrUnknownCommand is returned by Step when no transition anywhere uses
	// the command text.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrAmbiguousTransition marks more than one applicable transition for a
	// command. Step still applies the first one defined.
	ErrAmbiguousTransition = scenario.ErrAmbiguousTransition
)

// applicable reports whether t may fire in gs: same location, inventory
// agrees with the required items, world state agrees with the test.
func applicable(t *scenario.Transition, gs *state.GameState) (bool, error) {
	if t.Test.Location != gs.CurrentLocation {
		return false, nil
	}
	ok, err := gs.Inventory.Check(t.Test.RequiredItems)
	if err != nil || !ok {
		return false, err
	}
	ok, err = gs.WorldState.Check(t.Test.WorldState)
	if err != nil {
		return false, fmt.Errorf("world state check: %w", err)
	}
	return ok, nil
}

// apply validates t against gs and then applies its item changes, state
// changes and move together. Every key is checked before the first write,
// so on error gs is unchanged.
func apply(t *scenario.Transition, gs *state.GameState) error {
	ok, err := applicable(t, gs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotApplicable, t.Cmd)
	}

	if err := gs.Inventory.Covers(t.ItemChange); err != nil {
		return fmt.Errorf("item change: %w", err)
	}
	if err := gs.WorldState.Covers(t.StateChange); err != nil {
		return fmt.Errorf("state change: %w", err)
	}

	if err := gs.Inventory.MergeChanges(t.ItemChange); err != nil {
		return err
	}
	if err := gs.WorldState.Merge(t.StateChange); err != nil {
		return err
	}
	if to, moves := t.MovesTo(); moves {
		gs.CurrentLocation = to
	}
	return nil
}
