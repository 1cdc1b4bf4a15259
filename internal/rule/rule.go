// Package rule holds the immutable association-rule record consumed by the
// classifier.
package rule

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set"

	"github.com/roach88/arpp/internal/measure"
)

var (
	// ErrInvalidRule is returned by New for malformed rules.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrMeasureNotFound is returned when a rule lacks the requested measure.
	ErrMeasureNotFound = errors.New("measure not found")
)

// KeySeparator joins the two items of a parent/child lookup key.
const KeySeparator = "&"

// Rule is an antecedent => consequent association with its measures.
// Rules are immutable once built.
type Rule struct {
	antecedent []string
	consequent string
	measures   map[string]measure.Measure
}

// New validates and builds a rule. The antecedent holds one or two
// distinct items, none of which may equal the consequent.
func New(antecedent []string, consequent string, measures ...measure.Measure) (*Rule, error) {
	if len(antecedent) < 1 || len(antecedent) > 2 {
		return nil, fmt.Errorf("%w: antecedent must have 1 or 2 items, got %d", ErrInvalidRule, len(antecedent))
	}
	if consequent == "" {
		return nil, fmt.Errorf("%w: empty consequent", ErrInvalidRule)
	}
	for i, item := range antecedent {
		if item == "" {
			return nil, fmt.Errorf("%w: empty antecedent item at position %d", ErrInvalidRule, i)
		}
		if item == consequent {
			return nil, fmt.Errorf("%w: %q is both antecedent and consequent", ErrInvalidRule, item)
		}
	}
	if len(antecedent) == 2 && antecedent[0] == antecedent[1] {
		return nil, fmt.Errorf("%w: duplicate antecedent item %q", ErrInvalidRule, antecedent[0])
	}

	byName := make(map[string]measure.Measure, len(measures))
	for _, m := range measures {
		if _, dup := byName[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate measure %q", ErrInvalidRule, m.Name)
		}
		byName[m.Name] = m
	}

	return &Rule{
		antecedent: append([]string(nil), antecedent...),
		consequent: consequent,
		measures:   byName,
	}, nil
}

// Antecedent returns a copy of the antecedent items in their original order.
func (r *Rule) Antecedent() []string {
	return append([]string(nil), r.antecedent...)
}

// Consequent returns the right-hand side item.
func (r *Rule) Consequent() string {
	return r.consequent
}

// Len is the number of items in the rule, antecedent plus consequent.
func (r *Rule) Len() int {
	return len(r.antecedent) + 1
}

// Key is the parent/child lookup key for antecedent position i.
func (r *Rule) Key(i int) string {
	return r.antecedent[i] + KeySeparator + r.consequent
}

// ReverseKey is Key with the two sides swapped.
func (r *Rule) ReverseKey(i int) string {
	return r.consequent + KeySeparator + r.antecedent[i]
}

// ContainsItem reports whether item appears on either side.
func (r *Rule) ContainsItem(item string) bool {
	if r.consequent == item {
		return true
	}
	for _, a := range r.antecedent {
		if a == item {
			return true
		}
	}
	return false
}

// HasEmptyItem reports whether any item encodes an empty value
// ("attribute=" with nothing after the equals sign).
func (r *Rule) HasEmptyItem() bool {
	if IsEmptyItem(r.consequent) {
		return true
	}
	for _, a := range r.antecedent {
		if IsEmptyItem(a) {
			return true
		}
	}
	return false
}

// IsEmptyItem reports whether an "attribute=value" item has a blank value.
// Items without an equals sign are never empty.
func IsEmptyItem(item string) bool {
	_, value, found := strings.Cut(item, "=")
	return found && strings.TrimSpace(value) == ""
}

// Equal reports whether both rules have the same consequent and the same
// antecedent items regardless of order.
func (r *Rule) Equal(other *Rule) bool {
	if other == nil || r.consequent != other.consequent {
		return false
	}
	return itemSet(r.antecedent).SymmetricDifference(itemSet(other.antecedent)).Cardinality() == 0
}

// ID is a content key: equal rules have equal IDs.
func (r *Rule) ID() string {
	sorted := append([]string(nil), r.antecedent...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",") + " => " + r.consequent
}

// String renders the rule as "item1,item2 => consequent".
func (r *Rule) String() string {
	return strings.Join(r.antecedent, ",") + " => " + r.consequent
}

// Measure returns the named measure, if the rule carries it.
func (r *Rule) Measure(name string) (measure.Measure, bool) {
	m, ok := r.measures[name]
	return m, ok
}

// MeasureNames returns the names of the measures on the rule, sorted.
func (r *Rule) MeasureNames() []string {
	names := make([]string, 0, len(r.measures))
	for name := range r.measures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRelevant reports whether the named measure exists and is relevant.
// A missing measure is never relevant.
func (r *Rule) IsRelevant(name string, rng float64) bool {
	m, ok := r.measures[name]
	return ok && m.IsRelevant(rng)
}

// Gain returns the improvement of r over other for the named measure.
func (r *Rule) Gain(other *Rule, name string) (float64, error) {
	m, ok := r.measures[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q on %s", ErrMeasureNotFound, name, r)
	}
	o, ok := other.measures[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q on %s", ErrMeasureNotFound, name, other)
	}
	gain, err := m.Gain(o)
	if err != nil {
		return gain, fmt.Errorf("gain of %s over %s: %w", r, other, err)
	}
	return gain, nil
}

func itemSet(items []string) mapset.Set {
	s := mapset.NewSet()
	for _, item := range items {
		s.Add(item)
	}
	return s
}
