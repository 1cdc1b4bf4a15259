// Package testutil provides builders shared by tests across packages.
package testutil

import (
	"fmt"
	"sort"

	"github.com/roach88/arpp/internal/measure"
	"github.com/roach88/arpp/internal/rule"
)

// NewRule builds a rule with measures from the default registry.
// Measure names are applied in sorted order so errors are deterministic.
func NewRule(antecedent []string, consequent string, measures map[string]float64) (*rule.Rule, error) {
	reg := measure.DefaultRegistry()

	names := make([]string, 0, len(measures))
	for name := range measures {
		names = append(names, name)
	}
	sort.Strings(names)

	ms := make([]measure.Measure, 0, len(names))
	for _, name := range names {
		m, err := reg.New(name, measures[name])
		if err != nil {
			return nil, fmt.Errorf("rule %v => %s: %w", antecedent, consequent, err)
		}
		ms = append(ms, m)
	}
	return rule.New(antecedent, consequent, ms...)
}

// MustRule is NewRule that panics on error. Intended for test tables.
func MustRule(antecedent []string, consequent string, measures map[string]float64) *rule.Rule {
	r, err := NewRule(antecedent, consequent, measures)
	if err != nil {
		panic(err)
	}
	return r
}

// Lift builds a rule carrying only a lift measure.
func Lift(antecedent []string, consequent string, value float64) *rule.Rule {
	return MustRule(antecedent, consequent, map[string]float64{"lift": value})
}
