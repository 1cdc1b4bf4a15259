package measure

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the neutral point a measure is judged against.
type Kind int

const (
	// ZeroCentered measures are relevant when larger than zero.
	ZeroCentered Kind = iota
	// OneCentered measures express dependency direction around 1.
	OneCentered
	// HalfCentered measures are relevant above 0.5.
	HalfCentered
)

// neutral holds the "no effect" value per kind.
var neutral = [...]float64{
	ZeroCentered: 0,
	OneCentered:  1,
	HalfCentered: 0.5,
}

// gainFuncs computes the gain of a over b per kind.
// b is never +Inf when these are called.
var gainFuncs = [...]func(a, b float64) float64{
	ZeroCentered: relativeGain,
	OneCentered:  directionalGain,
	HalfCentered: relativeGain,
}

// String returns the config spelling of the kind.
func (k Kind) String() string {
	switch k {
	case ZeroCentered:
		return "zero"
	case OneCentered:
		return "one"
	case HalfCentered:
		return "half"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k >= ZeroCentered && k <= HalfCentered
}

// Neutral returns the value at which the measure expresses no effect.
func (k Kind) Neutral() float64 {
	return neutral[k]
}

// ParseKind converts "zero", "one" or "half" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "zero":
		return ZeroCentered, nil
	case "one":
		return OneCentered, nil
	case "half":
		return HalfCentered, nil
	default:
		return 0, fmt.Errorf("unknown measure kind %q: must be one of zero, one, half", s)
	}
}

// Measure is a single interestingness value computed for a rule.
type Measure struct {
	Name  string
	Kind  Kind
	Value float64

	// Probability marks values in [0,1] that read better as percentages.
	// It only affects Format.
	Probability bool
}

// New creates a measure after checking the value is finite or +Inf.
func New(name string, kind Kind, value float64, probability bool) (Measure, error) {
	if name == "" {
		return Measure{}, fmt.Errorf("%w: empty measure name", ErrInvalidValue)
	}
	if !kind.Valid() {
		return Measure{}, fmt.Errorf("%w: %s has unknown kind %d", ErrInvalidValue, name, int(kind))
	}
	if math.IsNaN(value) || math.IsInf(value, -1) {
		return Measure{}, fmt.Errorf("%w: %s = %v", ErrInvalidValue, name, value)
	}
	return Measure{Name: name, Kind: kind, Value: value, Probability: probability}, nil
}

// IsRelevant reports whether the value clears the kind's neutral point
// by more than rng.
func (m Measure) IsRelevant(rng float64) bool {
	return m.Value > m.Kind.Neutral()+rng
}

// Gain returns the relative improvement of m over other.
//
// For one-centered measures both values must be on the same side of 1,
// otherwise a *ComparisonError is returned. When other is +Inf the gain
// is 0: nothing improves on an infinitely strong rule.
func (m Measure) Gain(other Measure) (float64, error) {
	if m.Name != other.Name || m.Kind != other.Kind {
		return math.NaN(), &ComparisonError{Measure: m, Other: other, Reason: "different measures"}
	}
	if m.Kind == OneCentered && !sameSide(m.Value, other.Value) {
		return math.NaN(), &ComparisonError{Measure: m, Other: other, Reason: "opposite sides of 1"}
	}
	if math.IsInf(other.Value, 1) {
		return 0, nil
	}
	return gainFuncs[m.Kind](m.Value, other.Value), nil
}

// Format renders the value for display.
func (m Measure) Format() string {
	if math.IsInf(m.Value, 1) {
		return "Inf"
	}
	if m.Probability {
		return strconv.FormatFloat(m.Value*100, 'f', 2, 64) + "%"
	}
	return strconv.FormatFloat(m.Value, 'f', 4, 64)
}

func (m Measure) String() string {
	return m.Name + "=" + m.Format()
}

func relativeGain(a, b float64) float64 {
	return (a - b) / b
}

// directionalGain measures how much farther from 1 a is than b. Below 1
// the reciprocals are compared so that 0.5 improves on 0.75 the same way
// 2 improves on 1.33.
func directionalGain(a, b float64) float64 {
	if a > 1 {
		return (a - b) / b
	}
	return (b - a) / a
}

func sameSide(a, b float64) bool {
	return (a > 1 && b > 1) || (a < 1 && b < 1)
}
