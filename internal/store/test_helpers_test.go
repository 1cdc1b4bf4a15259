package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/arpp/internal/export"
	"github.com/roach88/arpp/internal/testutil"
)

// createTestStore creates a store in a temporary directory with fixed run
// IDs.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewFixedIDGenerator(ids...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with one group of two rules.
func createTestRun(item string) Run {
	return Run{
		Item:    item,
		Measure: "lift",
		Parameters: Parameters{
			MinimalImprovement: 0.001,
			Source:             "rules.csv",
		},
		InputRules: 12,
		Groups: []export.GroupView{
			{
				Class:       3,
				Description: "item of interest added as the specializing condition",
				RankBy:      "gain",
				Rank:        "0.066667",
				Rules: []export.RuleView{
					{Rule: "a=1 => y=1", Value: "1.5000"},
					{Rule: item + ",a=1 => y=1", Value: "1.6000"},
				},
			},
			{
				Class:       8,
				Description: "predicts the item of interest, no generalization",
				RankBy:      "value",
				Rank:        "Inf",
				Rules: []export.RuleView{
					{Rule: "b=1,c=1 => " + item, Value: "Inf"},
				},
			},
		},
	}
}
