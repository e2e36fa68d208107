package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite is one integration scenario: a script published to the API and
// a sequence of playback steps run against the copy the API hands back.
// A suite with Cases sequences other case files instead.
type TestSuite struct {
	Name   string     `yaml:"name"`
	Script string     `yaml:"script,omitempty"` // path relative to the case file
	Steps  []TestStep `yaml:"steps,omitempty"`
	Cases  []string   `yaml:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// Step actions
const (
	ActionAdvance = "advance"
	ActionSelect  = "select"
	ActionTick    = "tick"
)

// TestStep is a single player input and what the session should look like
// afterwards. An empty action only checks expectations.
type TestStep struct {
	Name   string       `yaml:"name,omitempty"`
	Action string       `yaml:"action,omitempty"`
	Choice string       `yaml:"choice,omitempty"`
	Tick   string       `yaml:"tick,omitempty"` // duration for tick steps
	Expect Expectations `yaml:"expect"`
}

// Expectations are checked after a step runs. Unset fields are ignored.
type Expectations struct {
	State           *string  `yaml:"state,omitempty"`
	Speaker         *string  `yaml:"speaker,omitempty"`
	Text            *string  `yaml:"text,omitempty"`
	TextContains    []string `yaml:"text_contains,omitempty"`
	Label           *string  `yaml:"label,omitempty"`
	Choices         []string `yaml:"choices,omitempty"`
	CharacterImages []string `yaml:"character_images,omitempty"`
	Error           *string  `yaml:"error_contains,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job        TestJob
	Results    []TestResult
	Error      error
	Duration   time.Duration
	ScriptName string
	SessionID  uuid.UUID
}
