package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dhrn/devkit/internal/tree"
)

// Scenario is one schematic test case.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Collection is the path of the collection manifest, relative to the
	// scenario file.
	Collection string `yaml:"collection"`

	// Input holds the files of the tree the first step runs on.
	Input map[string]string `yaml:"input,omitempty"`

	// Steps run in order, each on the previous step's output.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final tree.
	Assertions []Assertion `yaml:"assertions"`
}

// Step runs one schematic.
type Step struct {
	// Schematic is a schematic name or alias in the scenario collection.
	Schematic string `yaml:"schematic"`

	// Options are the raw schematic options.
	Options map[string]any `yaml:"options,omitempty"`

	// Strategy names the merge strategy for this step. Empty means the
	// engine default.
	Strategy string `yaml:"strategy,omitempty"`

	// Debug turns on debug in the step context.
	Debug bool `yaml:"debug,omitempty"`

	// Expect describes an expected failure. A failing step with a matching
	// expectation leaves the tree as it was and the scenario continues.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected failure of a step.
type Expect struct {
	// Error must be a substring of the step's error message.
	Error string `yaml:"error"`
}

// Assertion checks the final tree.
type Assertion struct {
	// Type is one of file_exists, file_absent, file_content, file_count.
	Type string `yaml:"type"`

	// Path is the file checked by file_exists, file_absent and file_content.
	Path string `yaml:"path,omitempty"`

	// Content is the exact expected content for file_content.
	Content string `yaml:"content,omitempty"`

	// Count is the expected number of files for file_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFileExists  = "file_exists"
	AssertFileAbsent  = "file_absent"
	AssertFileContent = "file_content"
	AssertFileCount   = "file_count"
)

// LoadScenario reads a scenario file and resolves its collection path
// relative to the file. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if scenario.Collection != "" && !filepath.IsAbs(scenario.Collection) {
		scenario.Collection = filepath.Join(filepath.Dir(path), scenario.Collection)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// validateScenario checks required fields.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Schematic == "" {
			return fmt.Errorf("steps[%d]: schematic is required", i)
		}
		if step.Strategy != "" {
			if _, err := tree.ParseMergeStrategy(step.Strategy); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
		if step.Expect != nil && step.Expect.Error == "" {
			return fmt.Errorf("steps[%d].expect: error is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFileExists, AssertFileAbsent, AssertFileContent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for %s", index, a.Type)
		}
	case AssertFileCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
