package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dragsort/internal/engine"
	"github.com/roach88/dragsort/internal/ir"
)

// Scenario defines a conformance test scenario.
// A scenario plays gestures against one puzzle and asserts on the
// resulting attempt trace and final session state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID is an optional fixed session id. If empty, defaults to
	// "test-session-default" for deterministic golden file comparison.
	SessionID string `yaml:"session_id,omitempty"`

	// Mount is the play-area size. Zero means the default 1024x768.
	Mount engine.Mount `yaml:"mount,omitempty"`

	// CompletionDelay overrides the delay before the success hook.
	CompletionDelay time.Duration `yaml:"completion_delay,omitempty"`

	// Puzzle is an inline puzzle. Exclusive with Catalogue.
	Puzzle *ir.Puzzle `yaml:"puzzle,omitempty"`

	// Catalogue is a CUE catalogue directory, resolved relative to the
	// scenario file. Category and Task pick the sortable task to play.
	Catalogue string `yaml:"catalogue,omitempty"`
	Category  string `yaml:"category,omitempty"`
	Task      string `yaml:"task,omitempty"`

	// Steps are the gestures, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions Assertions `yaml:"assertions"`
}

// Step is one scripted gesture.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	Item string   `yaml:"item,omitempty"`
	Zone string   `yaml:"zone,omitempty"`
	X    *float64 `yaml:"x,omitempty"`
	Y    *float64 `yaml:"y,omitempty"`

	// Duration is how far the scheduler advances on a wait step.
	Duration time.Duration `yaml:"duration,omitempty"`

	// Expect is the outcome the step must resolve to (accepted, rejected
	// or none). Only valid on steps that release a drag.
	Expect ir.Outcome `yaml:"expect,omitempty"`

	// Highlighted, when set, lists the zones that must be highlighted
	// after the step. Use the no_highlight assertion for the empty case.
	Highlighted []string `yaml:"highlighted,omitempty"`
}

// Step actions. drag and touch are composite gestures: a full pointer
// drag (start, over, drop, end) and a full touch drag from the item's
// centre to the zone's centre.
const (
	ActionDragStart  = "drag_start"
	ActionDragOver   = "drag_over"
	ActionDragLeave  = "drag_leave"
	ActionDrop       = "drop"
	ActionDragEnd    = "drag_end"
	ActionTouchStart = "touch_start"
	ActionTouchMove  = "touch_move"
	ActionTouchEnd   = "touch_end"
	ActionDrag       = "drag"
	ActionTouch      = "touch"
	ActionWait       = "wait"
)

// Assertions validate the end state. Unset fields are not checked.
type Assertions struct {
	PlacedCount  *int64       `yaml:"placed_count,omitempty"`
	SuccessCount *int         `yaml:"success_count,omitempty"`
	FailCount    *int         `yaml:"fail_count,omitempty"`
	Outcomes     []ir.Outcome `yaml:"outcomes,omitempty"`
	NoHighlight  bool         `yaml:"no_highlight,omitempty"`
	Complete     *bool        `yaml:"complete,omitempty"`
}

func (a Assertions) empty() bool {
	return a.PlacedCount == nil && a.SuccessCount == nil && a.FailCount == nil &&
		a.Outcomes == nil && !a.NoHighlight && a.Complete == nil
}

// LoadScenario reads and parses a scenario YAML file.
// The catalogue path is resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the catalogue path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalogue != "" && !filepath.IsAbs(scenario.Catalogue) && basePath != "" {
		scenario.Catalogue = filepath.Join(basePath, scenario.Catalogue)
	}
	if scenario.Catalogue != "" {
		if _, err := os.Stat(scenario.Catalogue); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: catalogue directory not found: %s", scenario.Catalogue)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Puzzle != nil && s.Catalogue != "":
		return fmt.Errorf("puzzle and catalogue are mutually exclusive")
	case s.Puzzle == nil && s.Catalogue == "":
		return fmt.Errorf("one of puzzle or catalogue is required")
	case s.Catalogue != "" && (s.Category == "" || s.Task == ""):
		return fmt.Errorf("catalogue scenarios need category and task")
	}

	if s.Mount.Width < 0 || s.Mount.Height < 0 {
		return fmt.Errorf("mount must not be negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	if s.Assertions.empty() {
		return fmt.Errorf("assertions are required")
	}
	for i, o := range s.Assertions.Outcomes {
		if o != ir.OutcomeAccepted && o != ir.OutcomeRejected {
			return fmt.Errorf("assertions.outcomes[%d]: must be accepted or rejected, got %q", i, o)
		}
	}

	return nil
}

// validateStep validates a single step based on its action.
func validateStep(index int, st *Step) error {
	need := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("steps[%d]: %s is required for %s", index, field, st.Action)
		}
		return nil
	}

	releases := false
	switch st.Action {
	case ActionDragStart, ActionDragEnd, ActionTouchStart:
		if err := need("item", st.Item); err != nil {
			return err
		}
	case ActionDragOver, ActionDragLeave:
		if err := need("zone", st.Zone); err != nil {
			return err
		}
	case ActionDrop:
		if err := need("zone", st.Zone); err != nil {
			return err
		}
		releases = true
	case ActionTouchMove:
		if st.Zone == "" && (st.X == nil || st.Y == nil) {
			return fmt.Errorf("steps[%d]: touch_move needs a zone or both x and y", index)
		}
	case ActionTouchEnd:
		releases = true
	case ActionDrag:
		if err := need("item", st.Item); err != nil {
			return err
		}
		if err := need("zone", st.Zone); err != nil {
			return err
		}
		releases = true
	case ActionTouch:
		if err := need("item", st.Item); err != nil {
			return err
		}
		if st.Zone == "" && (st.X == nil || st.Y == nil) {
			return fmt.Errorf("steps[%d]: touch needs a zone or both x and y", index)
		}
		releases = true
	case ActionWait:
		if st.Duration <= 0 {
			return fmt.Errorf("steps[%d]: wait needs a positive duration", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, st.Action)
	}

	if st.Expect != "" {
		if !releases {
			return fmt.Errorf("steps[%d]: expect is only valid on drop, touch_end, drag and touch", index)
		}
		switch st.Expect {
		case ir.OutcomeAccepted, ir.OutcomeRejected, ir.OutcomeNone:
		default:
			return fmt.Errorf("steps[%d]: unknown outcome %q", index, st.Expect)
		}
	}

	return nil
}
