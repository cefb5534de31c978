package scenario

import "github.com/jwebster45206/adventure-engine/pkg/state"

// Description is text guarded by a world-state predicate.
type Description struct {
	State state.StateMap `json:"state,omitempty" yaml:"state,omitempty"` // All of these must match the world state
	Short string         `json:"short" yaml:"short"`
	Long  string         `json:"long,omitempty" yaml:"long,omitempty"` // Used when the player looks closely
}

// IsCatchAll reports whether the description matches every world state.
func (d Description) IsCatchAll() bool {
	return len(d.State) == 0
}

// Text returns the long text when asked for and present, else the short one.
func (d Description) Text(long bool) string {
	if long && d.Long != "" {
		return d.Long
	}
	return d.Short
}

// LocationData is a place in the game world.
type LocationData struct {
	Name string `json:"name" yaml:"name"`
	// Descriptions are searched in order until one matches the world state.
	// The last one should be a catch-all.
	Descriptions []Description `json:"descriptions" yaml:"descriptions"`
}

// Describe picks the description matching the given world state.
func (l LocationData) Describe(world state.Table[state.StateKey]) (Description, error) {
	return ResolveDescription(l.Descriptions, world)
}
