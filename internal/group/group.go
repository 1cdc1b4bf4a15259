// Package group defines the classified output of the rule classifier.
//
// Every group carries one of eight classifications describing how its
// rules relate to the item of interest, its member rules ordered by
// ascending length, and exactly one ranking key: the gain of the
// specialization over its generalizations (groups 2, 3, 4, 6, 7) or the
// largest raw measure value among its rules (groups 1, 5, 8).
package group

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/arpp/internal/rule"
)

// Class is the group classification, 1 through 8.
type Class int

const (
	// Mutual pairs A => item with item => A.
	Mutual Class = iota + 1
	// AntecedentBothParents adds the item to a rule whose two generalizations survive.
	AntecedentBothParents
	// AntecedentAddedItem specializes a general rule by adding the item of interest.
	AntecedentAddedItem
	// AntecedentAddedCondition adds a further condition to a rule already containing the item.
	AntecedentAddedCondition
	// AntecedentNoParent has the item in the antecedent and no surviving generalization.
	AntecedentNoParent
	// ConsequentBothParents predicts the item and improves on both generalizations.
	ConsequentBothParents
	// ConsequentOneParent predicts the item and improves on its only generalization.
	ConsequentOneParent
	// ConsequentNoParent predicts the item with no surviving generalization.
	ConsequentNoParent
)

var descriptions = map[Class]string{
	Mutual:                   "item of interest and another item imply each other",
	AntecedentBothParents:    "specialization improving on both generalizations",
	AntecedentAddedItem:      "item of interest added as the specializing condition",
	AntecedentAddedCondition: "condition added to a rule already containing the item of interest",
	AntecedentNoParent:       "item of interest in antecedent, no generalization",
	ConsequentBothParents:    "predicts the item of interest, improving on both generalizations",
	ConsequentOneParent:      "predicts the item of interest, improving on one generalization",
	ConsequentNoParent:       "predicts the item of interest, no generalization",
}

// Valid reports whether c is in 1..8.
func (c Class) Valid() bool {
	return c >= Mutual && c <= ConsequentNoParent
}

// String returns "group N".
func (c Class) String() string {
	return fmt.Sprintf("group %d", int(c))
}

// Description is a one-line explanation of the classification.
func (c Class) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "unknown classification"
}

// RankedByGain reports whether groups of this class are ranked by gain.
func (c Class) RankedByGain() bool {
	switch c {
	case Mutual, AntecedentNoParent, ConsequentNoParent:
		return false
	default:
		return true
	}
}

// RankBy names the quantity a group is ranked by.
type RankBy string

const (
	RankByGain  RankBy = "gain"
	RankByValue RankBy = "value"
)

// Rank is the single ranking key of a group.
type Rank struct {
	By    RankBy
	Value float64
}

func (r Rank) String() string {
	return fmt.Sprintf("%s=%.6f", r.By, r.Value)
}

// Group is one classified result.
type Group struct {
	Class Class
	Rules []*rule.Rule
	Rank  Rank
}

// New builds a group, ordering members by ascending rule length. The rule
// pointers are kept, not copied.
func New(class Class, rank Rank, rules ...*rule.Rule) Group {
	members := append([]*rule.Rule(nil), rules...)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Len() < members[j].Len()
	})
	return Group{Class: class, Rules: members, Rank: rank}
}

// Contains reports whether an equal rule is a member.
func (g Group) Contains(r *rule.Rule) bool {
	for _, member := range g.Rules {
		if member.Equal(r) {
			return true
		}
	}
	return false
}

// Equal reports whether both groups share class and members.
func (g Group) Equal(other Group) bool {
	if g.Class != other.Class || len(g.Rules) != len(other.Rules) {
		return false
	}
	for _, r := range other.Rules {
		if !g.Contains(r) {
			return false
		}
	}
	return true
}

// String renders one rule per line.
func (g Group) String() string {
	lines := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
