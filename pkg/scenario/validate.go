package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

var (
	// ErrInvalidScenario wraps every fatal content problem found by Validate.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrAmbiguousTransition marks transitions sharing a command whose tests
	// can be satisfied at the same time.
	ErrAmbiguousTransition = errors.New("ambiguous transition")

	// ErrMissingLocation marks a reference to a location that does not exist.
	ErrMissingLocation = errors.New("missing location")

	// ErrMissingItemData marks an inventory item without item data, or item
	// data for an item the inventory does not track.
	ErrMissingItemData = errors.New("missing item data")

	// ErrEmptyCommand marks a transition without command text.
	ErrEmptyCommand = errors.New("empty command")
)

// Issue is one problem found in a scenario.
type Issue struct {
	Path string // where in the scenario, e.g. transitions[3].item_change
	Err  error
}

func (i Issue) String() string {
	return i.Path + ": " + i.Err.Error()
}

// ValidationError lists every fatal issue found by Validate.
type ValidationError struct {
	Scenario string
	Issues   []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		lines = append(lines, "  - "+issue.String())
	}
	return fmt.Sprintf("scenario %q has %d problem(s):\n%s", e.Scenario, len(e.Issues), strings.Join(lines, "\n"))
}

// Unwrap exposes ErrInvalidScenario and each issue's error to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrInvalidScenario}
	for _, issue := range e.Issues {
		errs = append(errs, issue.Err)
	}
	return errs
}

type validator struct {
	issues []Issue
}

func (v *validator) add(path string, err error) {
	v.issues = append(v.issues, Issue{Path: path, Err: err})
}

// checkKeys records one issue per key of partial missing from table.
func checkKeys[K state.Keyed](v *validator, path string, table state.Table[K], partial state.Flags[K]) {
	for _, k := range partial.Keys() {
		if err := table.Covers(state.Flags[K]{k: partial[k]}); err != nil {
			v.add(path, err)
		}
	}
}

func (v *validator) checkLocation(s *Scenario, path string, k state.LocationKey) {
	if _, ok := s.Locations[k]; !ok {
		v.add(path, fmt.Errorf("%w: %d", ErrMissingLocation, k))
	}
}

// Validate checks that the scenario is a closed world: every key referenced
// by a test, change set or description predicate exists in the starting
// inventory or world state, and every referenced location exists. It
// returns a *ValidationError listing all problems, or nil.
func (s *Scenario) Validate() error {
	v := &validator{}
	inventory := state.NewTable(s.Start.Inventory)
	world := state.NewTable(s.Start.WorldState)

	v.checkLocation(s, "start.location", s.Start.Location)

	for _, k := range inventory.Keys() {
		if _, ok := s.Items[k]; !ok {
			v.add("start.inventory", fmt.Errorf("%w: item %d", ErrMissingItemData, k))
		}
	}
	itemKeys := make([]state.ItemKey, 0, len(s.Items))
	for k := range s.Items {
		itemKeys = append(itemKeys, k)
	}
	slices.Sort(itemKeys)
	for _, k := range itemKeys {
		if !inventory.Has(k) {
			v.add(fmt.Sprintf("items[%d]", k), fmt.Errorf("%w: item %d is not in the starting inventory", ErrMissingItemData, k))
		}
	}

	for _, k := range sortedLocationKeys(s.Locations) {
		loc := s.Locations[k]
		if len(loc.Descriptions) == 0 {
			v.add(fmt.Sprintf("locations[%d].descriptions", k), ErrNoMatchingDescription)
		}
		for i, d := range loc.Descriptions {
			checkKeys(v, fmt.Sprintf("locations[%d].descriptions[%d].state", k, i), world, d.State)
		}
	}

	for i := range s.Transitions {
		t := &s.Transitions[i]
		path := fmt.Sprintf("transitions[%d]", i)
		if t.Command() == "" {
			v.add(path+".cmd", ErrEmptyCommand)
		}
		v.checkLocation(s, path+".test.location", t.Test.Location)
		if to, ok := t.MovesTo(); ok {
			v.checkLocation(s, path+".new_location", to)
		}
		checkKeys(v, path+".test.required_items", inventory, t.Test.RequiredItems)
		checkKeys(v, path+".test.world_state", world, t.Test.WorldState)
		checkKeys(v, path+".item_change", inventory, t.ItemChange)
		checkKeys(v, path+".state_change", world, t.StateChange)
	}

	if len(v.issues) > 0 {
		return &ValidationError{Scenario: s.Name, Issues: v.issues}
	}
	return nil
}

// Lint reports authoring problems that do not break the closed world but
// may surprise players: locations without a trailing catch-all description
// and transitions that can be ambiguous.
func (s *Scenario) Lint() []Issue {
	v := &validator{}

	for _, k := range sortedLocationKeys(s.Locations) {
		descs := s.Locations[k].Descriptions
		if len(descs) > 0 && !descs[len(descs)-1].IsCatchAll() {
			v.add(fmt.Sprintf("locations[%d].descriptions", k),
				fmt.Errorf("%w: last description is not a catch-all", ErrNoMatchingDescription))
		}
	}

	for i := range s.Transitions {
		a := &s.Transitions[i]
		for j := i + 1; j < len(s.Transitions); j++ {
			b := &s.Transitions[j]
			if a.Command() != b.Command() || !a.mayOverlap(b) {
				continue
			}
			v.add(fmt.Sprintf("transitions[%d]", j),
				fmt.Errorf("%w: %q may also match transitions[%d], which is defined first and wins", ErrAmbiguousTransition, b.Cmd, i))
		}
	}

	return v.issues
}

func sortedLocationKeys(locations map[state.LocationKey]LocationData) []state.LocationKey {
	keys := make([]state.LocationKey, 0, len(locations))
	for k := range locations {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
