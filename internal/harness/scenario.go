package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arpp/internal/classify"
	"github.com/roach88/arpp/internal/group"
)

// DefaultMeasure is used when a scenario names no measure.
const DefaultMeasure = "lift"

// Scenario defines one classification case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Item is the item of interest.
	Item string `yaml:"item"`

	// Measure is the interest measure. Defaults to lift.
	Measure string `yaml:"measure,omitempty"`

	MinimalImprovement *float64 `yaml:"minimal_improvement,omitempty"`
	RelevanceRange     *float64 `yaml:"relevance_range,omitempty"`
	AllowEmptyItems    bool     `yaml:"allow_empty_items,omitempty"`

	// Rules is the classifier input, in order.
	Rules []RuleSpec `yaml:"rules"`

	// Expect describes the expected outcome.
	Expect Expectation `yaml:"expect"`

	// path is the file the scenario was loaded from.
	path string
}

// RuleSpec is a rule as written in a scenario.
type RuleSpec struct {
	Antecedent []string           `yaml:"antecedent"`
	Consequent string             `yaml:"consequent"`
	Measures   map[string]float64 `yaml:"measures"`
}

// Expectation is either an error code or a list of groups.
type Expectation struct {
	Error  string      `yaml:"error,omitempty"`
	Groups []GroupSpec `yaml:"groups,omitempty"`
}

// GroupSpec is an expected group. Rules are rendered "a,b => c" strings in
// member order.
type GroupSpec struct {
	Class int      `yaml:"class"`
	Rules []string `yaml:"rules"`
	Gain  *float64 `yaml:"gain,omitempty"`
}

// Path returns the file the scenario was loaded from, if any.
func (s *Scenario) Path() string {
	return s.path
}

// Config returns the engine parameters of the scenario.
func (s *Scenario) Config() classify.Config {
	cfg := classify.DefaultConfig(s.Measure)
	if s.MinimalImprovement != nil {
		cfg.MinimalImprovement = *s.MinimalImprovement
	}
	if s.RelevanceRange != nil {
		cfg.RelevanceRange = *s.RelevanceRange
	}
	cfg.AllowEmptyItems = s.AllowEmptyItems
	return cfg
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Measure == "" {
		scenario.Measure = DefaultMeasure
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file
// name. Scenario names must be unique.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, path)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

var errorCodes = map[string]bool{
	string(classify.CodeNoRules):           true,
	string(classify.CodeNoRelevantRules):   true,
	string(classify.CodeInvalidConfig):     true,
	string(classify.CodeInvalidComparison): true,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	for i, r := range s.Rules {
		if len(r.Antecedent) == 0 {
			return fmt.Errorf("rules[%d]: antecedent is required", i)
		}
		if r.Consequent == "" {
			return fmt.Errorf("rules[%d]: consequent is required", i)
		}
	}

	if s.Expect.Error != "" {
		if !errorCodes[s.Expect.Error] {
			return fmt.Errorf("expect.error: unknown error code %q", s.Expect.Error)
		}
		if len(s.Expect.Groups) > 0 {
			return fmt.Errorf("expect: error and groups are mutually exclusive")
		}
	}

	for i, g := range s.Expect.Groups {
		if !group.Class(g.Class).Valid() {
			return fmt.Errorf("expect.groups[%d]: class must be 1..8, got %d", i, g.Class)
		}
		if len(g.Rules) == 0 {
			return fmt.Errorf("expect.groups[%d]: rules list is required", i)
		}
		if g.Gain != nil && !group.Class(g.Class).RankedByGain() {
			return fmt.Errorf("expect.groups[%d]: %s is not ranked by gain", i, group.Class(g.Class))
		}
	}

	return nil
}
