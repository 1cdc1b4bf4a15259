package classify

import (
	"math"

	"go.uber.org/zap"

	"github.com/roach88/arpp/internal/group"
	"github.com/roach88/arpp/internal/rule"
)

// Report is the outcome of one classification pass.
type Report struct {
	Item    string
	Measure string
	Groups  []group.Group

	// Input is the number of rules handed to Analyze.
	Input int

	// EmptyItemDropped counts rules removed by the empty-value filter.
	EmptyItemDropped int

	// IrrelevantDropped counts rules removed by the relevance filter.
	IrrelevantDropped int

	// Candidates counts length-3 rules containing the item of interest.
	Candidates int

	// Discarded counts candidates that failed the gain check.
	Discarded int

	// Surviving is the filtered input minus discarded candidates, in input
	// order. Classifying it again yields the same groups.
	Surviving []*rule.Rule
}

// Classify groups the rules that carry new information about item.
func Classify(item string, rules []*rule.Rule, cfg Config) ([]group.Group, error) {
	report, err := Analyze(item, rules, cfg)
	if err != nil {
		return nil, err
	}
	return report.Groups, nil
}

// Analyze runs the same pass as Classify and also reports filter and
// discard counts.
func Analyze(item string, rules []*rule.Rule, cfg Config) (*Report, error) {
	if err := cfg.Validate(item); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, newError(CodeNoRules, item, cfg, "rule list is empty")
	}

	log := cfg.logger().With(zap.String("item", item), zap.String("measure", cfg.Measure))
	report := &Report{Item: item, Measure: cfg.Measure, Input: len(rules)}

	filtered := rules
	if !cfg.AllowEmptyItems {
		filtered = RemoveEmptyItemRules(filtered)
		report.EmptyItemDropped = len(rules) - len(filtered)
	}
	relevant := RemoveIrrelevantRules(filtered, cfg.Measure, cfg.RelevanceRange)
	report.IrrelevantDropped = len(filtered) - len(relevant)

	log.Debug("rules filtered",
		zap.Int("input", report.Input),
		zap.Int("empty_items", report.EmptyItemDropped),
		zap.Int("irrelevant", report.IrrelevantDropped),
	)

	if len(relevant) == 0 {
		return nil, newError(CodeNoRelevantRules, item, cfg, "no rule is relevant for the interest measure")
	}

	parents := newIndex(relevant)
	discarded := make(map[*rule.Rule]bool)

	for _, r := range relevant {
		if r.Len() != 3 || !r.ContainsItem(item) {
			continue
		}
		report.Candidates++

		first := parents.lookup(r.Key(0))
		second := parents.lookup(r.Key(1))

		rank, keep, err := checkGain(r, first, second, cfg)
		if err != nil {
			return nil, &Error{
				Code:    CodeInvalidComparison,
				Message: "cannot compare rule with its generalization",
				Item:    item,
				Measure: cfg.Measure,
				Err:     err,
			}
		}
		if !keep {
			discarded[r] = true
			report.Discarded++
			log.Debug("candidate discarded", zap.Stringer("rule", r), zap.Float64("gain", rank.Value))
			continue
		}

		report.Groups = append(report.Groups, assign(item, r, first, second, rank))
	}

	report.Groups = append(report.Groups, pairMutual(item, parents, cfg.Measure)...)

	report.Surviving = make([]*rule.Rule, 0, len(relevant)-len(discarded))
	for _, r := range relevant {
		if !discarded[r] {
			report.Surviving = append(report.Surviving, r)
		}
	}

	log.Debug("classification done",
		zap.Int("candidates", report.Candidates),
		zap.Int("discarded", report.Discarded),
		zap.Int("groups", len(report.Groups)),
	)

	return report, nil
}

// RemoveEmptyItemRules drops rules with an "attribute=" item.
func RemoveEmptyItemRules(rules []*rule.Rule) []*rule.Rule {
	out := make([]*rule.Rule, 0, len(rules))
	for _, r := range rules {
		if !r.HasEmptyItem() {
			out = append(out, r)
		}
	}
	return out
}

// RemoveIrrelevantRules keeps rules whose named measure exists and clears
// the relevance range.
func RemoveIrrelevantRules(rules []*rule.Rule, measureName string, rng float64) []*rule.Rule {
	out := make([]*rule.Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsRelevant(measureName, rng) {
			out = append(out, r)
		}
	}
	return out
}

// checkGain decides whether candidate r improves enough on its existing
// generalizations. The returned rank is the smallest gain, or the rule's
// own measure value when it has no generalization.
func checkGain(r, first, second *rule.Rule, cfg Config) (group.Rank, bool, error) {
	if first == nil && second == nil {
		m, _ := r.Measure(cfg.Measure)
		return group.Rank{By: group.RankByValue, Value: m.Value}, true, nil
	}

	gains := make([]float64, 0, 2)
	for _, parent := range []*rule.Rule{first, second} {
		if parent == nil {
			continue
		}
		g, err := r.Gain(parent, cfg.Measure)
		if err != nil {
			return group.Rank{}, false, err
		}
		gains = append(gains, g)
	}

	worst := minGain(gains...)
	rank := group.Rank{By: group.RankByGain, Value: worst}
	return rank, !math.IsNaN(worst) && worst >= cfg.MinimalImprovement, nil
}

// minGain returns the smallest gain; any NaN makes the result NaN.
func minGain(gains ...float64) float64 {
	worst := math.Inf(1)
	for _, g := range gains {
		worst = math.Min(worst, g)
	}
	return worst
}

// assign places a kept candidate into groups 2..8.
func assign(item string, r, first, second *rule.Rule, rank group.Rank) group.Group {
	parent := first
	if parent == nil {
		parent = second
	}

	if r.Consequent() == item {
		switch {
		case first != nil && second != nil:
			return group.New(group.ConsequentBothParents, rank, first, second, r)
		case parent != nil:
			return group.New(group.ConsequentOneParent, rank, parent, r)
		default:
			return group.New(group.ConsequentNoParent, rank, r)
		}
	}

	switch {
	case first != nil && second != nil:
		return group.New(group.AntecedentBothParents, rank, first, second, r)
	case parent != nil:
		class := group.AntecedentAddedItem
		if parent.Antecedent()[0] == item {
			class = group.AntecedentAddedCondition
		}
		return group.New(class, rank, r, parent)
	default:
		return group.New(group.AntecedentNoParent, rank, r)
	}
}

// pairMutual finds A => item rules whose reverse item => A is indexed too.
func pairMutual(item string, parents *index, measureName string) []group.Group {
	var groups []group.Group
	for _, key := range parents.keys {
		r := parents.byKey[key]
		if r.Consequent() != item {
			continue
		}
		reverse := parents.lookup(r.ReverseKey(0))
		if reverse == nil {
			continue
		}
		a, _ := r.Measure(measureName)
		b, _ := reverse.Measure(measureName)
		rank := group.Rank{By: group.RankByValue, Value: math.Max(a.Value, b.Value)}
		groups = append(groups, group.New(group.Mutual, rank, r, reverse))
	}
	return groups
}

// index maps Key(0) of length-2 rules to the rule, remembering the order
// in which keys were first seen.
type index struct {
	keys  []string
	byKey map[string]*rule.Rule
}

func newIndex(rules []*rule.Rule) *index {
	ix := &index{byKey: make(map[string]*rule.Rule)}
	for _, r := range rules {
		if r.Len() != 2 {
			continue
		}
		key := r.Key(0)
		if _, seen := ix.byKey[key]; !seen {
			ix.keys = append(ix.keys, key)
		}
		ix.byKey[key] = r
	}
	return ix
}

func (ix *index) lookup(key string) *rule.Rule {
	return ix.byKey[key]
}
