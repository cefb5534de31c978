package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// Special input values that trigger non-command actions
const (
	ResetGameStateInput = "RESET_GAMESTATE"
)

// SeedState is a starting state written over a new game before the steps
// run. Inventory lists the items held; every other item is not held.
// WorldState overrides individual flags.
type SeedState struct {
	Location   state.LocationKey `yaml:"location"`
	Inventory  []state.ItemKey   `yaml:"inventory,omitempty"`
	WorldState state.StateMap    `yaml:"world_state,omitempty"`
}

// TestSuite defines a complete walkthrough
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `yaml:"name"`
	Seed  *SeedState `yaml:"seed,omitempty"`  // Used for regular tests
	Steps []TestStep `yaml:"steps,omitempty"` // Used for regular tests
	Cases []string   `yaml:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single command and its expected outcomes
// Use input: "RESET_GAMESTATE" to return to the starting state
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Input        string       `yaml:"input"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Location   *state.LocationKey `yaml:"location,omitempty"`
	Inventory  []state.ItemKey    `yaml:"inventory,omitempty"`   // Items held (order independent); [] means nothing
	WorldState state.StateMap     `yaml:"world_state,omitempty"` // Flags to check; others are ignored
	Moved      *bool              `yaml:"moved,omitempty"`
	Quit       *bool              `yaml:"quit,omitempty"`

	// Response Analysis
	Response            *string  `yaml:"response,omitempty"`
	ResponseContains    []string `yaml:"response_contains,omitempty"`
	ResponseNotContains []string `yaml:"response_not_contains,omitempty"`
	ResponseRegex       string   `yaml:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // True if this was a RESET_GAMESTATE step
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	GameID   uuid.UUID // ID of the game used for this test
}
