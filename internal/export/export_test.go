package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arpp/internal/group"
	"github.com/roach88/arpp/internal/testutil"
)

func sampleGroups() []group.Group {
	lift := testutil.Lift
	return []group.Group{
		group.New(group.AntecedentNoParent, group.Rank{By: group.RankByValue, Value: 1.6},
			lift([]string{"x=1", "b=1"}, "y=1", 1.6)),
		group.New(group.AntecedentAddedItem, group.Rank{By: group.RankByGain, Value: 0.05},
			lift([]string{"x=1", "a=1"}, "y=1", 1.575),
			lift([]string{"a=1"}, "y=1", 1.5)),
		group.New(group.Mutual, group.Rank{By: group.RankByValue, Value: 1.5},
			lift([]string{"m=1"}, "x=1", 1.5),
			lift([]string{"x=1"}, "m=1", 1.4)),
		group.New(group.AntecedentAddedItem, group.Rank{By: group.RankByGain, Value: 0.2},
			lift([]string{"x=1", "c=1"}, "y=1", 1.8),
			lift([]string{"c=1"}, "y=1", 1.5)),
	}
}

func TestViews(t *testing.T) {
	views := Views(sampleGroups(), "lift")
	require.Len(t, views, 4)

	assert.Equal(t, 1, views[0].Class)
	assert.Equal(t, 3, views[1].Class)
	assert.Equal(t, "0.200000", views[1].Rank)
	assert.Equal(t, 3, views[2].Class)
	assert.Equal(t, "0.050000", views[2].Rank)
	assert.Equal(t, 5, views[3].Class)

	assert.Equal(t, "gain", views[1].RankBy)
	assert.Equal(t, group.AntecedentAddedItem.Description(), views[1].Description)
	assert.Equal(t, []RuleView{
		{Rule: "c=1 => y=1", Value: "1.5000"},
		{Rule: "x=1,c=1 => y=1", Value: "1.8000"},
	}, views[1].Rules)
}

func TestViews_DoesNotReorderInput(t *testing.T) {
	groups := sampleGroups()
	_ = Views(groups, "lift")
	assert.Equal(t, group.AntecedentNoParent, groups[0].Class)
}

func TestViews_MissingMeasure(t *testing.T) {
	views := Views(sampleGroups(), "confidence")
	for _, v := range views {
		for _, r := range v.Rules {
			assert.Empty(t, r.Value)
		}
	}
}

func TestFormatRank(t *testing.T) {
	assert.Equal(t, "Inf", FormatRank(math.Inf(1)))
	assert.Equal(t, "1.500000", FormatRank(1.5))
	assert.Equal(t, "0.066667", FormatRank(0.1/1.5))
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleGroups(), "lift", FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8, "header plus one row per rule")

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(h)
	}
	assert.Equal(t, []string{"group", "rank by", "rank", "rule", "lift"}, header)

	assert.Equal(t, []string{"1", "value", "1.500000", "m=1 => x=1", "1.5000"}, records[1])
	assert.Equal(t, []string{"1", "value", "1.500000", "x=1 => m=1", "1.4000"}, records[2])
	assert.Equal(t, []string{"3", "gain", "0.200000", "x=1,c=1 => y=1", "1.8000"}, records[4])
}

func TestWrite_CSVQuotesMultiItemRules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleGroups(), "lift", FormatCSV))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "group,rank by,rank,rule,lift", lines[0])
	assert.Equal(t, `3,gain,0.200000,"x=1,c=1 => y=1",1.8000`, lines[4])
	assert.NotContains(t, buf.String(), `\,`)
}

func TestWrite_Renderings(t *testing.T) {
	testCases := []struct {
		format   Format
		contains []string
	}{
		{FormatTable, []string{"m=1 => x=1", "x=1,c=1 => y=1", "0.200000"}},
		{FormatMarkdown, []string{"| ", "x=1,b=1 => y=1"}},
		{FormatHTML, []string{"<table", "</table>", "x=1,b=1 =&gt; y=1"}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, sampleGroups(), "lift", tc.format))
			out := buf.String()
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
			assert.True(t, strings.HasSuffix(out, "\n"))
		})
	}
}

func TestWrite_Errors(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleGroups(), "lift", Format("xlsx"))
	assert.Error(t, err)

	err = Write(failingWriter{}, sampleGroups(), "lift", FormatCSV)
	assert.ErrorContains(t, err, "write csv export")
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("json")
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
