package scenario

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// ErrNoMatchingDescription means a description list ran out without a
// match, which happens only when content lacks a catch-all entry.
var ErrNoMatchingDescription = errors.New("no matching description")

// ResolveDescription returns the first description whose predicate agrees
// with the world state. An empty predicate matches anything.
func ResolveDescription(descs []Description, world state.Table[state.StateKey]) (Description, error) {
	for i, d := range descs {
		ok, err := world.Check(d.State)
		if err != nil {
			return Description{}, fmt.Errorf("description %d: %w", i, err)
		}
		if ok {
			return d, nil
		}
	}
	return Description{}, fmt.Errorf("searched %d descriptions: %w", len(descs), ErrNoMatchingDescription)
}

// predicatesOverlap reports whether some state could satisfy both a and b,
// i.e. no key is required to hold different values.
func predicatesOverlap[K state.Keyed](a, b state.Flags[K]) bool {
	for k, va := range a {
		if vb, ok := b[k]; ok && va != vb {
			return false
		}
	}
	return true
}
