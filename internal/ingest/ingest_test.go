package ingest

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/arpp/internal/measure"
)

func TestReadFile(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	rules, err := ReadFile("testdata/rules.csv", Options{Logger: zap.New(core)})
	require.NoError(t, err)

	require.Len(t, rules, 4, "rule without antecedent is skipped")
	assert.Equal(t, "sex=female => survived=yes", rules[0].String())
	assert.Equal(t, []string{"class=1st", "sex=female"}, rules[2].Antecedent())
	assert.Equal(t, "survived=yes", rules[2].Consequent())

	lift, ok := rules[2].Measure("lift")
	require.True(t, ok)
	assert.Equal(t, 3.0, lift.Value)
	assert.Equal(t, measure.OneCentered, lift.Kind)

	assert.Equal(t, []string{"confidence", "coverage", "lift", "support"}, rules[0].MeasureNames())

	ignored := logs.FilterMessage("ignoring column").All()
	require.Len(t, ignored, 1)
	assert.Equal(t, "count", ignored[0].ContextMap()["column"])
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile("testdata/nope.csv", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open rules file")
}

func TestRead_MeasureCells(t *testing.T) {
	input := `rules,lift,confidence,support
"{a=1} => {b=1}",Inf,NA,
"{a=1} => {c=1}",+Inf,NaN,0.5
`
	rules, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)
	require.Len(t, rules, 2)

	lift, ok := rules[0].Measure("lift")
	require.True(t, ok)
	assert.True(t, math.IsInf(lift.Value, 1))
	assert.Equal(t, []string{"lift"}, rules[0].MeasureNames())

	assert.Equal(t, []string{"lift", "support"}, rules[1].MeasureNames())
}

func TestRead_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		line   int
		column string
	}{
		{
			name:   "negative infinity",
			input:  "rules,lift\n\"{a=1} => {b=1}\",1.2\n\"{a=1} => {c=1}\",-Inf\n",
			line:   3,
			column: "lift",
		},
		{
			name:   "not a number",
			input:  "rules,lift\n\"{a=1} => {b=1}\",high\n",
			line:   2,
			column: "lift",
		},
		{
			name:   "no separator",
			input:  "rules,lift\n\"{a=1} -> {b=1}\",1.2\n",
			line:   2,
			column: "rules",
		},
		{
			name:   "item on both sides",
			input:  "rules,lift\n\"{a=1} => {a=1}\",1.2\n",
			line:   2,
			column: "rules",
		},
		{
			name:   "antecedent without value",
			input:  "rules,lift\n\"{abc} => {a=1}\",1.2\n",
			line:   2,
			column: "rules",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.input), Options{})
			require.Error(t, err)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr), "expected *RowError, got %T", err)
			assert.Equal(t, tc.line, rowErr.Line)
			assert.Equal(t, tc.column, rowErr.Column)
		})
	}
}

func TestRead_MissingRulesColumn(t *testing.T) {
	_, err := Read(strings.NewReader("lhs,rhs,lift\na,b,1\n"), Options{})
	assert.ErrorIs(t, err, ErrNoRulesColumn)

	_, err = Read(strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrNoRulesColumn)
}

func TestRead_CustomRegistryAndSeparator(t *testing.T) {
	reg := measure.DefaultRegistry().Clone()
	reg["leverage"] = measure.Spec{Kind: measure.ZeroCentered}

	input := "Rules,Leverage\n\"{a=1}->{b=1}\",0.02\n"
	rules, err := Read(strings.NewReader(input), Options{Separator: "->", Registry: reg})
	require.NoError(t, err)
	require.Len(t, rules, 1)

	m, ok := rules[0].Measure("leverage")
	require.True(t, ok)
	assert.Equal(t, 0.02, m.Value)
}

func TestSplitRule(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		antecedent []string
		consequent string
	}{
		{"single item", "{a=1} => {b=1}", []string{"a=1"}, "b=1"},
		{"two items", "{a=1,b=2} => {c=3}", []string{"a=1", "b=2"}, "c=3"},
		{"comma in value", "{a=1,2} => {c=3}", []string{"a=1,2"}, "c=3"},
		{"comma in first value", "{a=1,2,b=3} => {c=3}", []string{"a=1,2", "b=3"}, "c=3"},
		{"empty value", "{a=,b=2} => {c=3}", []string{"a=", "b=2"}, "c=3"},
		{"empty antecedent", "{} => {c=3}", nil, "c=3"},
		{"spaces", " { a=1 , b=2 } => { c=3 } ", []string{"a=1", "b=2"}, "c=3"},
		{"no braces", "a=1 => c=3", []string{"a=1"}, "c=3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			antecedent, consequent, err := SplitRule(tc.text, DefaultSeparator)
			require.NoError(t, err)
			assert.Equal(t, tc.antecedent, antecedent)
			assert.Equal(t, tc.consequent, consequent)
		})
	}
}

func TestSplitRule_NormalizesItems(t *testing.T) {
	decomposed := "{cafe\u0301=yes} => {b=1}"
	antecedent, _, err := SplitRule(decomposed, DefaultSeparator)
	require.NoError(t, err)
	assert.Equal(t, []string{"caf\u00e9=yes"}, antecedent)
}

func TestParseValue(t *testing.T) {
	testCases := []struct {
		cell    string
		value   float64
		present bool
		wantErr bool
	}{
		{cell: "1.5", value: 1.5, present: true},
		{cell: " 0.25 ", value: 0.25, present: true},
		{cell: "1e-3", value: 0.001, present: true},
		{cell: "", present: false},
		{cell: "NA", present: false},
		{cell: "NaN", present: false},
		{cell: "Inf", value: math.Inf(1), present: true},
		{cell: "+Inf", value: math.Inf(1), present: true},
		{cell: "-Inf", wantErr: true},
		{cell: "abc", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.cell, func(t *testing.T) {
			value, present, err := ParseValue(tc.cell)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.present, present)
			if tc.present {
				assert.Equal(t, tc.value, value)
			}
		})
	}
}
