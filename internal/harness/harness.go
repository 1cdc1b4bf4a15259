package harness

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/arpp/internal/classify"
	"github.com/roach88/arpp/internal/group"
	"github.com/roach88/arpp/internal/measure"
	"github.com/roach88/arpp/internal/rule"
)

// GainTolerance is the absolute tolerance of expected gains.
const GainTolerance = 1e-4

// Harness runs scenarios with a shared measure registry and logger.
type Harness struct {
	registry measure.Registry
	logger   *zap.Logger
}

// New creates a harness. A nil registry means measure.DefaultRegistry; a
// nil logger disables logging.
func New(registry measure.Registry, logger *zap.Logger) *Harness {
	if registry == nil {
		registry = measure.DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{registry: registry, logger: logger}
}

// Run executes a scenario with the default harness.
func Run(s *Scenario) (*Result, error) {
	return New(nil, nil).Run(s)
}

// Run classifies the scenario rules and compares the outcome with the
// expect block. The returned error is reserved for scenarios that cannot
// be executed, such as malformed rules; mismatches are reported in the
// result.
func (h *Harness) Run(s *Scenario) (*Result, error) {
	rules, err := h.buildRules(s.Rules)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	cfg := s.Config()
	cfg.Logger = h.logger.With(zap.String("scenario", s.Name))

	result := NewResult()
	report, err := classify.Analyze(s.Item, rules, cfg)
	if err != nil {
		result.ErrorCode = classify.CodeOf(err)
		if result.ErrorCode == "" {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		checkError(result, s.Expect, err)
		return result, nil
	}

	result.Report = report
	result.Groups = report.Groups
	if s.Expect.Error != "" {
		result.AddError(fmt.Sprintf("expected error %s, got %d groups", s.Expect.Error, len(report.Groups)))
		return result, nil
	}
	checkGroups(result, s.Expect.Groups, report.Groups)
	return result, nil
}

func (h *Harness) buildRules(specs []RuleSpec) ([]*rule.Rule, error) {
	rules := make([]*rule.Rule, 0, len(specs))
	for i, spec := range specs {
		measures := make([]measure.Measure, 0, len(spec.Measures))
		for _, name := range sortedKeys(spec.Measures) {
			m, err := h.registry.New(name, spec.Measures[name])
			if err != nil {
				return nil, fmt.Errorf("rules[%d]: %w", i, err)
			}
			measures = append(measures, m)
		}
		r, err := rule.New(spec.Antecedent, spec.Consequent, measures...)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func checkError(result *Result, expect Expectation, err error) {
	if expect.Error == "" {
		result.AddError(fmt.Sprintf("unexpected error: %v", err))
		return
	}
	if string(result.ErrorCode) != expect.Error {
		result.AddError(fmt.Sprintf("expected error %s, got %s", expect.Error, result.ErrorCode))
	}
}

func checkGroups(result *Result, expected []GroupSpec, actual []group.Group) {
	if len(expected) != len(actual) {
		result.AddError(fmt.Sprintf("expected %d groups, got %d", len(expected), len(actual)))
	}

	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		want, got := expected[i], actual[i]
		prefix := fmt.Sprintf("groups[%d]", i)

		if group.Class(want.Class) != got.Class {
			result.AddError(fmt.Sprintf("%s: expected %s, got %s", prefix, group.Class(want.Class), got.Class))
		}

		rendered := renderRules(got)
		if strings.Join(want.Rules, "; ") != strings.Join(rendered, "; ") {
			result.AddError(fmt.Sprintf("%s: expected rules [%s], got [%s]",
				prefix, strings.Join(want.Rules, "; "), strings.Join(rendered, "; ")))
		}

		if want.Gain != nil {
			if got.Rank.By != group.RankByGain {
				result.AddError(fmt.Sprintf("%s: expected gain %.4f, group is ranked by %s", prefix, *want.Gain, got.Rank.By))
			} else if math.Abs(got.Rank.Value-*want.Gain) > GainTolerance {
				result.AddError(fmt.Sprintf("%s: expected gain %.4f, got %.6f", prefix, *want.Gain, got.Rank.Value))
			}
		}
	}
}

func renderRules(g group.Group) []string {
	out := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		out[i] = r.String()
	}
	return out
}

// Snapshot renders a result for golden comparison: one header line per
// group followed by its indented rules, or a single error line.
func Snapshot(result *Result) []byte {
	var b strings.Builder
	if result.ErrorCode != "" {
		fmt.Fprintf(&b, "error %s\n", result.ErrorCode)
		return []byte(b.String())
	}
	if len(result.Groups) == 0 {
		b.WriteString("no groups\n")
	}
	for _, g := range result.Groups {
		fmt.Fprintf(&b, "%s %s\n", g.Class, g.Rank)
		for _, r := range g.Rules {
			fmt.Fprintf(&b, "  %s\n", r)
		}
	}
	return []byte(b.String())
}
