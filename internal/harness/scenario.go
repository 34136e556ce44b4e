package harness

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/datediff/internal/datediff"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Units restricts evaluation to the listed units. Empty means all.
	Units []string `yaml:"units,omitempty"`

	// Cases are the timestamp pairs to evaluate.
	Cases []Case `yaml:"cases"`
}

// Case is one (start, end) pair. A nil bound is an absent value.
type Case struct {
	// Name is an optional label used in trace output and errors.
	Name string `yaml:"name,omitempty"`

	Start *string `yaml:"start"`
	End   *string `yaml:"end"`

	// Expect maps unit names to expected outcomes. Units not listed are
	// only checked for client/server agreement.
	Expect map[string]Expectation `yaml:"expect,omitempty"`
}

// Label returns the case name, or "case <index>" when it has none.
func (c Case) Label(index int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("case %d", index)
}

// ExpectKind classifies an expectation.
type ExpectKind string

// Expectation kinds.
const (
	ExpectValue    ExpectKind = "value"
	ExpectUnknown  ExpectKind = "unknown"
	ExpectOverflow ExpectKind = "overflow"
)

// Expectation is the expected outcome of one case for one unit.
type Expectation struct {
	Kind  ExpectKind
	Value int32
}

// UnmarshalYAML accepts an integer, null, "unknown" or "overflow".
func (e *Expectation) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expectation must be an integer, unknown or overflow", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*e = Expectation{Kind: ExpectUnknown}
		return nil
	case "!!int":
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("line %d: expectation %s is not a 32-bit integer", node.Line, node.Value)
		}
		*e = Expectation{Kind: ExpectValue, Value: int32(n)}
		return nil
	}
	switch ExpectKind(strings.ToLower(node.Value)) {
	case ExpectUnknown:
		*e = Expectation{Kind: ExpectUnknown}
	case ExpectOverflow:
		*e = Expectation{Kind: ExpectOverflow}
	default:
		return fmt.Errorf("line %d: unknown expectation %q", node.Line, node.Value)
	}
	return nil
}

// String formats e the way it is written in scenario files.
func (e Expectation) String() string {
	if e.Kind == ExpectValue {
		return strconv.FormatInt(int64(e.Value), 10)
	}
	return string(e.Kind)
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "case:" vs "cases:"
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

// FindScenarios returns the .yaml and .yml files under dir, sorted. When
// filter is not empty only files whose base name (without extension)
// matches the glob are returned.
func FindScenarios(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// EffectiveUnits returns the units the scenario evaluates.
func (s *Scenario) EffectiveUnits() ([]datediff.Unit, error) {
	if len(s.Units) == 0 {
		return datediff.Units(), nil
	}
	units := make([]datediff.Unit, 0, len(s.Units))
	for _, name := range s.Units {
		u, err := datediff.ParseUnit(name)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if _, err := s.EffectiveUnits(); err != nil {
		return fmt.Errorf("units: %w", err)
	}

	for i, c := range s.Cases {
		if _, err := parseBounds(c); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		for name := range c.Expect {
			if _, err := datediff.ParseUnit(name); err != nil {
				return fmt.Errorf("cases[%d].expect: %w", i, err)
			}
		}
	}

	return nil
}
