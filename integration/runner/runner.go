package runner

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner replays walkthroughs against a running adventure-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	KeepGames         bool // If set, games are not deleted after the suite
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var suite TestSuite
	if err := dec.Decode(&suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite on a fresh game
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	created, err := CreateGame(ctx, r.Client, r.BaseURL)
	if err != nil {
		result.Error = fmt.Errorf("failed to create game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.GameID = created.ID
	if !r.KeepGames {
		defer func() {
			if err := DeleteGame(context.WithoutCancel(ctx), r.Client, r.BaseURL, created.ID); err != nil {
				r.Logger("    Warning: failed to delete game %s: %v", created.ID, err)
			}
		}()
	}

	baseline := created.State
	if suite.Seed != nil {
		seeded, err := seedState(created.State, *suite.Seed)
		if err != nil {
			result.Error = fmt.Errorf("failed to seed game: %w", err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
		if _, err := PutState(ctx, r.Client, r.BaseURL, created.ID, seeded); err != nil {
			result.Error = fmt.Errorf("failed to seed game: %w", err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
		baseline = seeded
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, created.ID, step, baseline)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// seedState builds the state described by seed on top of the keys the
// scenario tracks.
func seedState(initial *state.GameState, seed SeedState) (*state.GameState, error) {
	if initial == nil {
		return nil, fmt.Errorf("game has no state")
	}

	items := state.ItemMap{}
	for _, k := range initial.Inventory.Items().Keys() {
		items[k] = false
	}
	for _, k := range seed.Inventory {
		if _, ok := items[k]; !ok {
			return nil, fmt.Errorf("seed inventory: unknown item key %d", k)
		}
		items[k] = true
	}

	world := initial.WorldState.Snapshot()
	for k, v := range seed.WorldState {
		if _, ok := world[k]; !ok {
			return nil, fmt.Errorf("seed world_state: unknown state key %d", k)
		}
		world[k] = v
	}

	return state.NewGameState(seed.Location, items, world), nil
}

// executeStep performs one step and checks its expectations
func (r *Runner) executeStep(ctx context.Context, id uuid.UUID, step TestStep, baseline *state.GameState) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	var (
		resp *handlers.GameResponse
		err  error
	)
	if step.Input == ResetGameStateInput {
		result.IsReset = true
		resp, err = PutState(ctx, r.Client, r.BaseURL, id, baseline)
	} else {
		resp, err = PostCommand(ctx, r.Client, r.BaseURL, id, step.Input)
	}
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	result.ResponseText = resp.Text

	if err := checkExpectations(step.Expectations, resp); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the expectations against the game after a step
func checkExpectations(exp Expectations, resp *handlers.GameResponse) error {
	gs := resp.State
	if gs == nil {
		return fmt.Errorf("response has no state")
	}

	if exp.Location != nil && gs.CurrentLocation != *exp.Location {
		return fmt.Errorf("expected location %d, got %d", *exp.Location, gs.CurrentLocation)
	}

	// Full inventory check (order independent)
	if exp.Inventory != nil {
		expected := slices.Clone(exp.Inventory)
		slices.Sort(expected)
		held := gs.Inventory.Held()
		if !slices.Equal(expected, held) {
			return fmt.Errorf("expected inventory %v, got %v", expected, held)
		}
	}

	for _, k := range exp.WorldState.Keys() {
		actual, err := gs.WorldState.Get(k)
		if err != nil {
			return fmt.Errorf("world_state: %w", err)
		}
		if actual != exp.WorldState[k] {
			return fmt.Errorf("expected world_state %d to be %t, got %t", k, exp.WorldState[k], actual)
		}
	}

	if exp.Moved != nil && resp.Moved != *exp.Moved {
		return fmt.Errorf("expected moved to be %t, got %t", *exp.Moved, resp.Moved)
	}
	if exp.Quit != nil && resp.Quit != *exp.Quit {
		return fmt.Errorf("expected quit to be %t, got %t", *exp.Quit, resp.Quit)
	}

	responseText := resp.Text
	if exp.Response != nil && responseText != *exp.Response {
		return fmt.Errorf("expected response %q, got %q", *exp.Response, responseText)
	}

	if len(exp.ResponseContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, expectedText := range exp.ResponseContains {
			if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
				return fmt.Errorf("expected response to contain '%s', but it didn't", expectedText)
			}
		}
	}

	if len(exp.ResponseNotContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, unexpectedText := range exp.ResponseNotContains {
			if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
				return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
			}
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return nil
}
