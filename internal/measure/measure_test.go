package measure

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, name string, kind Kind, value float64) Measure {
	t.Helper()
	m, err := New(name, kind, value, false)
	require.NoError(t, err)
	return m
}

func TestNew_RejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		value float64
	}{
		{"nan", math.NaN()},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("lift", OneCentered, tc.value, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestNew_AcceptsPositiveInfinity(t *testing.T) {
	m, err := New("lift", OneCentered, math.Inf(1), false)
	require.NoError(t, err)
	assert.True(t, math.IsInf(m.Value, 1))
}

func TestNew_RejectsUnknownKindAndEmptyName(t *testing.T) {
	_, err := New("lift", Kind(7), 1.5, false)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = New("", OneCentered, 1.5, false)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestIsRelevant(t *testing.T) {
	testCases := []struct {
		name     string
		kind     Kind
		value    float64
		rng      float64
		relevant bool
	}{
		{"zero above", ZeroCentered, 0.1, 0, true},
		{"zero at neutral", ZeroCentered, 0, 0, false},
		{"zero below range", ZeroCentered, 0.1, 0.2, false},
		{"one above", OneCentered, 1.5, 0, true},
		{"one at neutral", OneCentered, 1.0, 0, false},
		{"one below", OneCentered, 0.5, 0, false},
		{"one within range", OneCentered, 1.05, 0.1, false},
		{"one beyond range", OneCentered, 1.2, 0.1, true},
		{"half above", HalfCentered, 0.7, 0, true},
		{"half at neutral", HalfCentered, 0.5, 0, false},
		{"half within range", HalfCentered, 0.55, 0.1, false},
		{"infinite", OneCentered, math.Inf(1), 0.5, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := mustNew(t, "m", tc.kind, tc.value)
			assert.Equal(t, tc.relevant, m.IsRelevant(tc.rng))
		})
	}
}

func TestGain_Relative(t *testing.T) {
	a := mustNew(t, "confidence", ZeroCentered, 0.6)
	b := mustNew(t, "confidence", ZeroCentered, 0.5)

	gain, err := a.Gain(b)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, gain, 1e-9)

	gain, err = b.Gain(a)
	require.NoError(t, err)
	assert.InDelta(t, -1.0/6, gain, 1e-9)
}

func TestGain_OneCenteredAboveOne(t *testing.T) {
	child := mustNew(t, "lift", OneCentered, 1.6)
	parent := mustNew(t, "lift", OneCentered, 1.5)

	gain, err := child.Gain(parent)
	require.NoError(t, err)
	assert.InDelta(t, 0.0667, gain, 1e-4)
}

func TestGain_OneCenteredBelowOne(t *testing.T) {
	// Farther from 1 is better: 0.5 improves on 0.75 like 2 improves on 4/3.
	child := mustNew(t, "lift", OneCentered, 0.5)
	parent := mustNew(t, "lift", OneCentered, 0.75)

	gain, err := child.Gain(parent)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, gain, 1e-9)

	gain, err = parent.Gain(child)
	require.NoError(t, err)
	assert.Less(t, gain, 0.0)
}

func TestGain_OppositeSidesIsInvalidComparison(t *testing.T) {
	testCases := []struct {
		name string
		a, b float64
	}{
		{"above vs below", 1.5, 0.8},
		{"below vs above", 0.8, 1.5},
		{"neutral vs above", 1.0, 1.5},
		{"below vs infinite", 0.5, math.Inf(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := mustNew(t, "lift", OneCentered, tc.a)
			b := mustNew(t, "lift", OneCentered, tc.b)

			gain, err := a.Gain(b)
			require.Error(t, err)
			assert.True(t, math.IsNaN(gain))
			assert.ErrorIs(t, err, ErrInvalidComparison)

			var cmpErr *ComparisonError
			require.True(t, errors.As(err, &cmpErr))
			assert.Equal(t, "opposite sides of 1", cmpErr.Reason)
		})
	}
}

func TestGain_ZeroCenteredIgnoresSides(t *testing.T) {
	a := mustNew(t, "support", ZeroCentered, 1.5)
	b := mustNew(t, "support", ZeroCentered, 0.5)

	gain, err := a.Gain(b)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, gain, 1e-9)
}

func TestGain_InfiniteOtherIsZero(t *testing.T) {
	for _, kind := range []Kind{ZeroCentered, OneCentered, HalfCentered} {
		t.Run(kind.String(), func(t *testing.T) {
			a := mustNew(t, "m", kind, 3)
			b := mustNew(t, "m", kind, math.Inf(1))

			gain, err := a.Gain(b)
			require.NoError(t, err)
			assert.Equal(t, 0.0, gain)
		})
	}
}

func TestGain_InfiniteSelfIsInfinite(t *testing.T) {
	a := mustNew(t, "lift", OneCentered, math.Inf(1))
	b := mustNew(t, "lift", OneCentered, 2)

	gain, err := a.Gain(b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(gain, 1))
}

func TestGain_ZeroOtherIsNotANumberOrInfinite(t *testing.T) {
	zero := mustNew(t, "support", ZeroCentered, 0)

	gain, err := zero.Gain(zero)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(gain))

	a := mustNew(t, "support", ZeroCentered, 0.3)
	gain, err = a.Gain(zero)
	require.NoError(t, err)
	assert.True(t, math.IsInf(gain, 1))
}

func TestGain_DifferentMeasures(t *testing.T) {
	a := mustNew(t, "lift", OneCentered, 1.5)
	b := mustNew(t, "conviction", OneCentered, 1.2)

	_, err := a.Gain(b)
	assert.ErrorIs(t, err, ErrInvalidComparison)
}

func TestFormat(t *testing.T) {
	prob, err := New("support", ZeroCentered, 0.125, true)
	require.NoError(t, err)
	assert.Equal(t, "12.50%", prob.Format())

	lift := mustNew(t, "lift", OneCentered, 1.5)
	assert.Equal(t, "1.5000", lift.Format())
	assert.Equal(t, "lift=1.5000", lift.String())

	inf := mustNew(t, "lift", OneCentered, math.Inf(1))
	assert.Equal(t, "Inf", inf.Format())
}

func TestParseKind(t *testing.T) {
	for _, kind := range []Kind{ZeroCentered, OneCentered, HalfCentered} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("two")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()

	lift, err := reg.New("lift", 1.5)
	require.NoError(t, err)
	assert.Equal(t, OneCentered, lift.Kind)
	assert.False(t, lift.Probability)

	support, err := reg.New("support", 0.2)
	require.NoError(t, err)
	assert.Equal(t, ZeroCentered, support.Kind)
	assert.True(t, support.Probability)

	cosine, err := reg.New("cosine", 0.7)
	require.NoError(t, err)
	assert.Equal(t, HalfCentered, cosine.Kind)

	_, err = reg.New("count", 12)
	assert.ErrorIs(t, err, ErrUnknownMeasure)
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	reg := DefaultRegistry()
	clone := reg.Clone()
	clone["leverage"] = Spec{Kind: ZeroCentered}

	_, ok := reg.Lookup("leverage")
	assert.False(t, ok)
	_, ok = clone.Lookup("leverage")
	assert.True(t, ok)
	assert.Contains(t, clone.Names(), "leverage")
}
