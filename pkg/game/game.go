package game

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jwebster45206/adventure-engine/pkg/scenario"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// DefaultDescription is shown when a location has no matching description.
const DefaultDescription = "You see nothing special."

// ErrStateMismatch is returned by Resume when a saved state does not track
// the same items and flags as the scenario.
var ErrStateMismatch = errors.New("saved state does not match scenario")

// Game is a running game: the static scenario plus the single live state.
// A Game is not safe for concurrent use; run one per session.
type Game struct {
	scenario  *scenario.Scenario
	state     *state.GameState
	byCommand map[string][]int // normalised command -> transition indices, in definition order
	logger    *slog.Logger
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger used for warnings and applied transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New validates sc and starts a game at its opening state. Lint findings
// are logged as warnings.
func New(sc *scenario.Scenario, opts ...Option) (*Game, error) {
	if sc == nil {
		return nil, errors.New("scenario cannot be nil")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	g := newGame(sc, sc.NewGameState(), opts)
	for _, issue := range sc.Lint() {
		g.logger.Warn("Scenario content problem", "scenario", sc.Name, "issue", issue.String())
	}
	return g, nil
}

// Resume validates sc and continues a game from a saved state. The saved
// state must track exactly the scenario's items and flags and stand at a
// known location. Lint findings are not reported again.
func Resume(sc *scenario.Scenario, gs *state.GameState, opts ...Option) (*Game, error) {
	if sc == nil {
		return nil, errors.New("scenario cannot be nil")
	}
	if gs == nil {
		return nil, errors.New("gamestate cannot be nil")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if !sc.NewGameState().SameShape(gs) {
		return nil, fmt.Errorf("%w %q: item or flag keys differ", ErrStateMismatch, sc.Name)
	}
	if _, ok := sc.Location(gs.CurrentLocation); !ok {
		return nil, fmt.Errorf("%w %q: %w", ErrStateMismatch, sc.Name,
			&state.UnknownKeyError{Domain: "location", Key: state.Key(gs.CurrentLocation)})
	}
	return newGame(sc, gs.Clone(), opts), nil
}

func newGame(sc *scenario.Scenario, gs *state.GameState, opts []Option) *Game {
	g := &Game{
		scenario:  sc,
		state:     gs,
		byCommand: make(map[string][]int),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	for i := range sc.Transitions {
		cmd := sc.Transitions[i].Command()
		g.byCommand[cmd] = append(g.byCommand[cmd], i)
	}

	return g
}

// Scenario returns the static content. Callers must not modify it.
func (g *Game) Scenario() *scenario.Scenario {
	return g.scenario
}

// State returns a copy of the current game state.
func (g *Game) State() *state.GameState {
	return g.state.Clone()
}

// Location returns the current location key.
func (g *Game) Location() state.LocationKey {
	return g.state.CurrentLocation
}

// Applicable reports whether t may fire in the current state.
func (g *Game) Applicable(t *scenario.Transition) (bool, error) {
	return applicable(t, g.state)
}

// Apply validates t and applies it. If t is not applicable it fails with
// ErrNotApplicable and the state is untouched.
func (g *Game) Apply(t *scenario.Transition) error {
	from := g.state.CurrentLocation
	if err := apply(t, g.state); err != nil {
		return err
	}
	g.logger.Debug("Applied transition",
		"cmd", t.Cmd,
		"from", from,
		"to", g.state.CurrentLocation)
	return nil
}

// Outcome describes the transition chosen by Step.
type Outcome struct {
	Index      int                  // position of the transition in the scenario
	Transition *scenario.Transition // the transition that was applied
	Moved      bool                 // whether the location changed
	Shadowed   []int                // other applicable transitions with the same command
}

// Ambiguous reports whether other transitions could also have fired.
func (o Outcome) Ambiguous() bool {
	return len(o.Shadowed) > 0
}

// Knows reports whether any transition uses cmd, applicable or not.
func (g *Game) Knows(cmd string) bool {
	return len(g.byCommand[scenario.NormalizeCommand(cmd)]) > 0
}

// Candidates returns the indices of the transitions for cmd that are
// applicable now, in definition order.
func (g *Game) Candidates(cmd string) ([]int, error) {
	var out []int
	for _, i := range g.byCommand[scenario.NormalizeCommand(cmd)] {
		ok, err := applicable(&g.scenario.Transitions[i], g.state)
		if err != nil {
			return nil, fmt.Errorf("transitions[%d]: %w", i, err)
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// Step resolves cmd to a transition and applies it. When several
// transitions are applicable the first one defined wins; the rest are
// reported in Outcome.Shadowed and logged.
func (g *Game) Step(cmd string) (Outcome, error) {
	norm := scenario.NormalizeCommand(cmd)
	if !g.Knows(norm) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	candidates, err := g.Candidates(norm)
	if err != nil {
		return Outcome{}, err
	}
	if len(candidates) == 0 {
		return Outcome{}, fmt.Errorf("%w: %q at location %d", ErrNoValidTransition, cmd, g.state.CurrentLocation)
	}

	chosen := candidates[0]
	t := &g.scenario.Transitions[chosen]
	from := g.state.CurrentLocation
	if err := g.Apply(t); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Index:      chosen,
		Transition: t,
		Moved:      g.state.CurrentLocation != from,
		Shadowed:   candidates[1:],
	}
	if out.Ambiguous() {
		g.logger.Warn("Ambiguous command, applied first defined transition",
			"error", ErrAmbiguousTransition,
			"cmd", norm,
			"applied", chosen,
			"shadowed", out.Shadowed)
	}
	return out, nil
}

// CurrentDescription resolves the description of the current location.
func (g *Game) CurrentDescription() (scenario.Description, error) {
	k := g.state.CurrentLocation
	loc, ok := g.scenario.Location(k)
	if !ok {
		return scenario.Description{}, &state.UnknownKeyError{Domain: "location", Key: state.Key(k)}
	}
	d, err := loc.Describe(g.state.WorldState)
	if err != nil {
		return scenario.Description{}, fmt.Errorf("location %d: %w", k, err)
	}
	return d, nil
}

// DescribeCurrentLocation writes the current location's description to w.
// A missing catch-all falls back to DefaultDescription and is logged.
func (g *Game) DescribeCurrentLocation(w io.Writer, long bool) error {
	text := DefaultDescription
	d, err := g.CurrentDescription()
	switch {
	case errors.Is(err, scenario.ErrNoMatchingDescription):
		g.logger.Warn("No description matched, using default",
			"error", err,
			"location", g.state.CurrentLocation)
	case err != nil:
		return err
	default:
		text = d.Text(long)
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

// DescribeInventory writes the held items to w.
func (g *Game) DescribeInventory(w io.Writer) error {
	return g.state.Inventory.Describe(w, g.scenario)
}
