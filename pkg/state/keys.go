package state

import (
	"errors"
	"fmt"
)

// Key is the raw identifier behind every keyed domain.
type Key = uint32

// ItemKey identifies an item.
type ItemKey Key

// LocationKey identifies a location.
type LocationKey Key

// StateKey identifies a world-state flag.
type StateKey Key

// Keyed is satisfied by the key newtypes.
type Keyed interface {
	~uint32
}

// ErrUnknownKey is returned when a closed-world table is asked about a key
// it was not created with. Validated content never triggers it.
var ErrUnknownKey = errors.New("unknown key")

// UnknownKeyError reports which key was missing and from which domain.
type UnknownKeyError struct {
	Domain string
	Key    Key
}

// Error names the domain and the key.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s key %d", e.Domain, e.Key)
}

// Is matches ErrUnknownKey.
func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}

// domainOf names the domain of K for error messages.
func domainOf[K Keyed]() string {
	var k K
	switch any(k).(type) {
	case ItemKey:
		return "item"
	case LocationKey:
		return "location"
	case StateKey:
		return "state"
	default:
		return "generic"
	}
}

func unknownKey[K Keyed](k K) error {
	return &UnknownKeyError{Domain: domainOf[K](), Key: Key(k)}
}
