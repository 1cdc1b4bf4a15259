package measure

import (
	"fmt"
	"sort"
)

// Spec describes how values of a named measure are interpreted.
type Spec struct {
	Kind        Kind
	Probability bool
}

// Registry maps measure names to their Spec.
type Registry map[string]Spec

// DefaultRegistry returns the measures arules exports most often.
// https://www.rdocumentation.org/packages/arules/topics/interestMeasure
func DefaultRegistry() Registry {
	return Registry{
		"support":          {Kind: ZeroCentered, Probability: true},
		"confidence":       {Kind: ZeroCentered, Probability: true},
		"coverage":         {Kind: ZeroCentered, Probability: true},
		"hyper_confidence": {Kind: ZeroCentered, Probability: true},
		"chi_square":       {Kind: ZeroCentered},
		"doc":              {Kind: ZeroCentered},
		"gini":             {Kind: ZeroCentered},
		"lift":             {Kind: OneCentered},
		"conviction":       {Kind: OneCentered},
		"odds_ratio":       {Kind: OneCentered},
		"hyper_lift":       {Kind: OneCentered},
		"cosine":           {Kind: HalfCentered},
	}
}

// Clone returns an independent copy of r.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for name, spec := range r {
		out[name] = spec
	}
	return out
}

// Lookup returns the spec registered for name.
func (r Registry) Lookup(name string) (Spec, bool) {
	spec, ok := r[name]
	return spec, ok
}

// New builds a measure of a registered name.
func (r Registry) New(name string, value float64) (Measure, error) {
	spec, ok := r[name]
	if !ok {
		return Measure{}, fmt.Errorf("%w: %q", ErrUnknownMeasure, name)
	}
	return New(name, spec.Kind, value, spec.Probability)
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
