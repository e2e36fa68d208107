package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/novel-script/pkg/playback"
	"github.com/jwebster45206/novel-script/pkg/script"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running novel-script API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	RevealDelay       time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Timeout:           30 * time.Second,
		RevealDelay:       playback.DefaultRevealDelay,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file. A relative script path
// is resolved against the case file's directory.
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	if suite.Script != "" && !filepath.IsAbs(suite.Script) {
		suite.Script = filepath.Join(filepath.Dir(filename), suite.Script)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
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
		subJobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, caseFile), casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite publishes the suite's script under a throwaway name, reads it
// back, plays it through the steps and deletes it again.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:        TestJob{Name: suite.Name, Suite: suite},
		Results:    make([]TestResult, 0, len(suite.Steps)),
		ScriptName: "it-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12],
	}

	fail := func(err error) (TestRunResult, error) {
		result.Error = err
		result.Duration = time.Since(start)
		return result, err
	}

	text, err := os.ReadFile(suite.Script)
	if err != nil {
		return fail(fmt.Errorf("failed to read script: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	published, err := PublishScript(ctx, r.Client, r.BaseURL, result.ScriptName, string(text))
	if err != nil {
		return fail(fmt.Errorf("failed to publish script: %w", err))
	}
	defer func() {
		if err := DeleteScript(context.Background(), r.Client, r.BaseURL, result.ScriptName); err != nil {
			r.Logger("    Warning: failed to delete %s: %v", result.ScriptName, err)
		}
	}()
	for _, w := range published.Warnings {
		r.Logger("    lint: %s", w)
	}

	fetched, err := FetchScript(ctx, r.Client, r.BaseURL, result.ScriptName)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch script: %w", err))
	}
	if fetched.Text != string(text) {
		return fail(fmt.Errorf("fetched script differs from published script"))
	}
	if fetched.Pages != published.Pages || fetched.SubScenes != published.SubScenes {
		return fail(fmt.Errorf("fetched summary %d/%d differs from published %d/%d",
			fetched.SubScenes, fetched.Pages, published.SubScenes, published.Pages))
	}

	parsed, err := script.Parse(fetched.Text)
	if err != nil {
		return fail(fmt.Errorf("failed to parse fetched script: %w", err))
	}

	surface := playback.NewMockSurface()
	player := playback.New(surface,
		playback.WithRevealDelay(r.RevealDelay),
		playback.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := player.Load(parsed); err != nil {
		return fail(fmt.Errorf("failed to load script: %w", err))
	}
	result.SessionID = player.SessionID()

	for i, step := range suite.Steps {
		stepResult := r.runStep(player, step)
		stepResult.TestName = suite.Name
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

func (r *Runner) runStep(player *playback.Player, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	actionErr := r.act(player, step)
	if actionErr != nil && step.Expect.Error == nil {
		result.Error = fmt.Errorf("%s failed: %w", step.Action, actionErr)
		result.Duration = time.Since(start)
		return result
	}

	if err := checkExpectations(step.Expect, player, actionErr); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) act(player *playback.Player, step TestStep) error {
	switch step.Action {
	case "":
		return nil
	case ActionAdvance:
		return player.Advance()
	case ActionSelect:
		return player.SelectChoice(step.Choice)
	case ActionTick:
		d, err := time.ParseDuration(step.Tick)
		if err != nil {
			return fmt.Errorf("invalid tick %q: %w", step.Tick, err)
		}
		player.Tick(d)
		return nil
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

// checkExpectations validates the session against what the step expects
func checkExpectations(exp Expectations, player *playback.Player, actionErr error) error {
	var errs []error

	if exp.Error != nil {
		switch {
		case actionErr == nil:
			errs = append(errs, fmt.Errorf("expected error containing %q, got none", *exp.Error))
		case !strings.Contains(actionErr.Error(), *exp.Error):
			errs = append(errs, fmt.Errorf("expected error containing %q, got %v", *exp.Error, actionErr))
		}
	}
	if exp.State != nil && player.State().String() != *exp.State {
		errs = append(errs, fmt.Errorf("expected state %s, got %s", *exp.State, player.State()))
	}
	if exp.Speaker != nil && player.Speaker() != *exp.Speaker {
		errs = append(errs, fmt.Errorf("expected speaker %q, got %q", *exp.Speaker, player.Speaker()))
	}
	if exp.Text != nil && player.VisibleText() != *exp.Text {
		errs = append(errs, fmt.Errorf("expected text %q, got %q", *exp.Text, player.VisibleText()))
	}
	for _, s := range exp.TextContains {
		if !strings.Contains(player.VisibleText(), s) {
			errs = append(errs, fmt.Errorf("text %q does not contain %q", player.VisibleText(), s))
		}
	}
	if exp.Label != nil && player.Cursor().Label != *exp.Label {
		errs = append(errs, fmt.Errorf("expected subscene %q, got %q", *exp.Label, player.Cursor().Label))
	}
	if exp.Choices != nil && !sameSet(exp.Choices, player.PendingChoices()) {
		errs = append(errs, fmt.Errorf("expected choices %v, got %v", exp.Choices, player.PendingChoices()))
	}
	if exp.CharacterImages != nil && !sameSet(exp.CharacterImages, player.CharacterImages()) {
		errs = append(errs, fmt.Errorf("expected character images %v, got %v", exp.CharacterImages, player.CharacterImages()))
	}

	return errors.Join(errs...)
}

// sameSet compares two name lists ignoring order
func sameSet(want, got []string) bool {
	a := slices.Clone(want)
	b := slices.Clone(got)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
