// Package ingest reads association rules exported by arules as CSV.
//
// The expected layout is one "rules" column holding "{a=1,b=2} => {c=3}"
// and one column per interest measure:
//
//	"rules","support","confidence","lift","count"
//	"{a=1,b=2} => {c=3}",0.1,0.8,1.6,12
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/arpp/internal/measure"
	"github.com/roach88/arpp/internal/rule"
)

// DefaultSeparator splits the antecedent from the consequent.
const DefaultSeparator = " => "

// RulesColumn is the header of the column holding the rule text.
const RulesColumn = "rules"

// ErrNoRulesColumn is returned when the header has no rules column.
var ErrNoRulesColumn = errors.New("missing rules column")

// antecedentPattern splits "a=1,b=2" into its items while keeping commas
// that belong to a value, as in "a=1,2".
var antecedentPattern = regexp.MustCompile(`^(.*=.*),(.*=.*)$|^(.*=.*)$`)

// Options controls parsing.
type Options struct {
	// Separator splits antecedent and consequent. Defaults to " => ".
	Separator string

	// Registry resolves measure columns. Defaults to measure.DefaultRegistry.
	Registry measure.Registry

	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.Registry == nil {
		o.Registry = measure.DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// RowError reports a malformed data row.
type RowError struct {
	Line    int
	Column  string
	Message string
	Err     error
}

func (e *RowError) Error() string {
	msg := fmt.Sprintf("line %d", e.Line)
	if e.Column != "" {
		msg = fmt.Sprintf("%s, column %q", msg, e.Column)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string, opts Options) ([]*rule.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	rules, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Read parses every data row of r into a rule. Rows with an empty
// antecedent carry nothing to classify and are skipped.
func Read(r io.Reader, opts Options) ([]*rule.Rule, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoRulesColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rulesIdx := -1
	measureCols := make(map[int]string)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case name == RulesColumn:
			rulesIdx = i
		case name == "":
		default:
			if _, ok := opts.Registry.Lookup(name); ok {
				measureCols[i] = name
			} else {
				opts.Logger.Debug("ignoring column", zap.String("column", name))
			}
		}
	}
	if rulesIdx < 0 {
		return nil, ErrNoRulesColumn
	}

	var rules []*rule.Rule
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		antecedent, consequent, err := SplitRule(record[rulesIdx], opts.Separator)
		if err != nil {
			return nil, &RowError{Line: line, Column: RulesColumn, Message: "malformed rule", Err: err}
		}
		if len(antecedent) == 0 {
			opts.Logger.Debug("skipping rule without antecedent",
				zap.Int("line", line), zap.String("consequent", consequent))
			continue
		}

		measures := make([]measure.Measure, 0, len(measureCols))
		for i, cell := range record {
			name, ok := measureCols[i]
			if !ok {
				continue
			}
			value, present, err := ParseValue(cell)
			if err != nil {
				return nil, &RowError{Line: line, Column: name, Message: "bad measure value", Err: err}
			}
			if !present {
				continue
			}
			m, err := opts.Registry.New(name, value)
			if err != nil {
				return nil, &RowError{Line: line, Column: name, Message: "bad measure value", Err: err}
			}
			measures = append(measures, m)
		}

		rl, err := rule.New(antecedent, consequent, measures...)
		if err != nil {
			return nil, &RowError{Line: line, Column: RulesColumn, Message: "invalid rule", Err: err}
		}
		rules = append(rules, rl)
	}

	opts.Logger.Debug("rules read", zap.Int("rules", len(rules)), zap.Int("measures", len(measureCols)))
	return rules, nil
}

// SplitRule parses "{a=1,b=2} => {c=3}" into its antecedent items and
// consequent. An empty antecedent "{}" yields no items.
func SplitRule(text, separator string) ([]string, string, error) {
	lhs, rhs, ok := strings.Cut(text, separator)
	if !ok {
		return nil, "", fmt.Errorf("separator %q not found in %q", separator, text)
	}

	consequent := normalize(stripBraces(rhs))
	if consequent == "" {
		return nil, "", fmt.Errorf("empty consequent in %q", text)
	}

	lhs = stripBraces(lhs)
	if strings.TrimSpace(lhs) == "" {
		return nil, consequent, nil
	}

	match := antecedentPattern.FindStringSubmatch(lhs)
	if match == nil {
		return nil, "", fmt.Errorf("antecedent %q has no attribute=value item", lhs)
	}
	if match[3] != "" {
		return []string{normalize(match[3])}, consequent, nil
	}
	return []string{normalize(match[1]), normalize(match[2])}, consequent, nil
}

// ParseValue reads a measure cell. Empty, NA and NaN cells are absent.
func ParseValue(cell string) (float64, bool, error) {
	cell = strings.TrimSpace(cell)
	switch cell {
	case "", "NA", "NaN", "nan":
		return 0, false, nil
	case "Inf", "+Inf", "inf", "+inf":
		return math.Inf(1), true, nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, fmt.Errorf("not a number: %q", cell)
	}
	if math.IsInf(v, -1) {
		return 0, false, fmt.Errorf("negative infinity is not a valid measure value")
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

func stripBraces(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	return s
}

func normalize(item string) string {
	return norm.NFC.String(strings.TrimSpace(item))
}
