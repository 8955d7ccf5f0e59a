package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/contactdb/internal/batch"
	"github.com/roach88/contactdb/internal/contact"
)

// Scenario is one write scenario.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Setup is saved before the steps run and must succeed. Its events are
	// not part of the trace.
	Setup batch.Document `yaml:"setup,omitempty"`

	// Steps are the writer calls under test.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one writer call.
type Step struct {
	// Op is one of the Op constants.
	Op string `yaml:"op"`

	// Contacts are saved by a save step.
	Contacts []batch.ContactDoc `yaml:"contacts,omitempty"`

	// Mask restricts a save step to the named detail kinds.
	Mask []string `yaml:"mask,omitempty"`

	// IDs are removed by a remove step.
	IDs []uint32 `yaml:"ids,omitempty"`

	// Relationships are used by relate and unrelate steps.
	Relationships []batch.RelationshipDoc `yaml:"relationships,omitempty"`

	// ID is bound as the self contact by a self step. Zero clears it.
	ID uint32 `yaml:"id,omitempty"`

	// Expect checks the outcome. Without it the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Code is the expected aggregate code, e.g. "DOES_NOT_EXIST".
	Code string `yaml:"code"`

	// Errors are the expected per-index codes. When nil they are not
	// checked.
	Errors map[int]string `yaml:"errors,omitempty"`
}

// Step ops.
const (
	OpSave     = "save"
	OpRemove   = "remove"
	OpRelate   = "relate"
	OpUnrelate = "unrelate"
	OpSelf     = "self"
)

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Event is the event name (event_count, event_keys).
	Event string `yaml:"event,omitempty"`

	// Events is the expected order of event names (event_order).
	Events []string `yaml:"events,omitempty"`

	// Keys are the expected payload keys (event_keys).
	Keys []uint32 `yaml:"keys,omitempty"`

	// Count is the expected number of events or rows.
	Count int `yaml:"count,omitempty"`

	// Table is the table queried (final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Where filters the rows (final_state, row_count).
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state).
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount = "event_count"
	AssertEventOrder = "event_order"
	AssertEventKeys  = "event_keys"
	AssertFinalState = "final_state"
	AssertRowCount   = "row_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields and missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
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
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpSave:
		if len(s.Contacts) == 0 {
			return fmt.Errorf("steps[%d]: contacts are required for save", index)
		}
	case OpRemove:
		if len(s.IDs) == 0 {
			return fmt.Errorf("steps[%d]: ids are required for remove", index)
		}
	case OpRelate, OpUnrelate:
		if len(s.Relationships) == 0 {
			return fmt.Errorf("steps[%d]: relationships are required for %s", index, s.Op)
		}
	case OpSelf:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	if s.Expect != nil {
		if _, err := contact.ParseCode(s.Expect.Code); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", index, err)
		}
		for i, name := range s.Expect.Errors {
			if _, err := contact.ParseCode(name); err != nil {
				return fmt.Errorf("steps[%d].expect.errors[%d]: %w", index, i, err)
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertEventKeys:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_keys", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
