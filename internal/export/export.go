// Package export renders classification results for people and
// spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/roach88/arpp/internal/group"
)

// Format selects the rendering.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatCSV, FormatMarkdown, FormatHTML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q: must be one of table, csv, markdown, html", s)
}

// GroupView is a rendered group.
type GroupView struct {
	Class       int        `json:"class"`
	Description string     `json:"description"`
	RankBy      string     `json:"rank_by"`
	Rank        string     `json:"rank"`
	Rules       []RuleView `json:"rules"`
}

// RuleView is a rendered group member.
type RuleView struct {
	Rule  string `json:"rule"`
	Value string `json:"value"`
}

// Views renders groups in presentation order: by class, then by
// descending rank within a class.
func Views(groups []group.Group, measureName string) []GroupView {
	sorted := append([]group.Group(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Class != sorted[j].Class {
			return sorted[i].Class < sorted[j].Class
		}
		return sorted[i].Rank.Value > sorted[j].Rank.Value
	})

	views := make([]GroupView, 0, len(sorted))
	for _, g := range sorted {
		v := GroupView{
			Class:       int(g.Class),
			Description: g.Class.Description(),
			RankBy:      string(g.Rank.By),
			Rank:        FormatRank(g.Rank.Value),
			Rules:       make([]RuleView, 0, len(g.Rules)),
		}
		for _, r := range g.Rules {
			rv := RuleView{Rule: r.String()}
			if m, ok := r.Measure(measureName); ok {
				rv.Value = m.Format()
			}
			v.Rules = append(v.Rules, rv)
		}
		views = append(views, v)
	}
	return views
}

// FormatRank renders a rank value with six decimals.
func FormatRank(v float64) string {
	if math.IsInf(v, 1) {
		return "Inf"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Write renders groups to w in the given format.
func Write(w io.Writer, groups []group.Group, measureName string, format Format) error {
	views := Views(groups, measureName)
	if format == FormatCSV {
		return writeCSV(w, views, measureName)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Group", "Rank By", "Rank", "Rule", measureName})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for i, v := range views {
		for j, r := range v.Rules {
			if j == 0 {
				t.AppendRow(table.Row{v.Class, v.RankBy, v.Rank, r.Rule, r.Value})
			} else {
				t.AppendRow(table.Row{"", "", "", r.Rule, r.Value})
			}
		}
		if format == FormatTable && i < len(views)-1 {
			t.AppendSeparator()
		}
	}

	var out string
	switch format {
	case FormatTable:
		t.SetStyle(table.StyleLight)
		out = t.Render()
	case FormatMarkdown:
		out = t.RenderMarkdown()
	case FormatHTML:
		out = t.RenderHTML()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("write %s export: %w", format, err)
	}
	return nil
}

// writeCSV writes RFC 4180 CSV with the group columns repeated on every
// row so each line stands alone in a spreadsheet.
func writeCSV(w io.Writer, views []GroupView, measureName string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group", "rank by", "rank", "rule", measureName}); err != nil {
		return fmt.Errorf("write %s export: %w", FormatCSV, err)
	}
	for _, v := range views {
		class := strconv.Itoa(v.Class)
		for _, r := range v.Rules {
			if err := cw.Write([]string{class, v.RankBy, v.Rank, r.Rule, r.Value}); err != nil {
				return fmt.Errorf("write %s export: %w", FormatCSV, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write %s export: %w", FormatCSV, err)
	}
	return nil
}
