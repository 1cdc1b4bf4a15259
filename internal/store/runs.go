package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/arpp/internal/export"
	"github.com/roach88/arpp/internal/group"
)

// ErrRunNotFound is returned by ReadRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// Parameters records the engine settings of a run.
type Parameters struct {
	MinimalImprovement float64 `json:"minimal_improvement"`
	RelevanceRange     float64 `json:"relevance_range"`
	AllowEmptyItems    bool    `json:"allow_empty_items"`
	Source             string  `json:"source,omitempty"`
}

// Run is one stored classification pass.
type Run struct {
	ID         string             `json:"id"`
	Seq        int64              `json:"seq"`
	Item       string             `json:"item"`
	Measure    string             `json:"measure"`
	Parameters Parameters         `json:"parameters"`
	InputRules int                `json:"input_rules"`
	Groups     []export.GroupView `json:"groups,omitempty"`
}

// RunSummary is a run without its groups.
type RunSummary struct {
	ID         string `json:"id"`
	Seq        int64  `json:"seq"`
	Item       string `json:"item"`
	Measure    string `json:"measure"`
	InputRules int    `json:"input_rules"`
	GroupCount int    `json:"group_count"`
}

// WriteRun stores run with a fresh ID and the next seq, in one
// transaction. ID and Seq of the argument are ignored; the stored run is
// returned.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	params, err := json.Marshal(run.Parameters)
	if err != nil {
		return Run{}, fmt.Errorf("write run: marshal parameters: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}
	run.ID = s.ids.Generate()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, item, measure, parameters, input_rules)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.Item, run.Measure, string(params), run.InputRules)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	for gi, g := range run.Groups {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_groups (run_id, position, class, rank_by, rank)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, gi, g.Class, g.RankBy, g.Rank)
		if err != nil {
			return Run{}, fmt.Errorf("write run: group %d: %w", gi, err)
		}

		for ri, r := range g.Rules {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO run_group_rules (run_id, group_position, position, rule, value)
				VALUES (?, ?, ?, ?, ?)
			`, run.ID, gi, ri, r.Rule, r.Value)
			if err != nil {
				return Run{}, fmt.Errorf("write run: group %d rule %d: %w", gi, ri, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs in write order.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.item, r.measure, r.input_rules,
		       (SELECT COUNT(*) FROM run_groups g WHERE g.run_id = r.id)
		FROM runs r
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.ID, &rs.Seq, &rs.Item, &rs.Measure, &rs.InputRules, &rs.GroupCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run with its groups.
// Returns ErrRunNotFound if no run has that ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var (
		run    Run
		params string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, item, measure, parameters, input_rules
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Seq, &run.Item, &run.Measure, &params, &run.InputRules)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(params), &run.Parameters); err != nil {
		return Run{}, fmt.Errorf("read run %s: parameters: %w", id, err)
	}

	groups, err := s.readGroups(ctx, id)
	if err != nil {
		return Run{}, err
	}
	run.Groups = groups
	return run, nil
}

func (s *Store) readGroups(ctx context.Context, runID string) ([]export.GroupView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.position, g.class, g.rank_by, g.rank, r.rule, r.value
		FROM run_groups g
		JOIN run_group_rules r
		  ON r.run_id = g.run_id AND r.group_position = g.position
		WHERE g.run_id = ?
		ORDER BY g.position ASC, r.position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query groups of run %s: %w", runID, err)
	}
	defer rows.Close()

	var (
		groups []export.GroupView
		last   = -1
	)
	for rows.Next() {
		var (
			pos  int
			gv   export.GroupView
			rule export.RuleView
		)
		if err := rows.Scan(&pos, &gv.Class, &gv.RankBy, &gv.Rank, &rule.Rule, &rule.Value); err != nil {
			return nil, fmt.Errorf("scan group of run %s: %w", runID, err)
		}
		if pos != last {
			gv.Description = group.Class(gv.Class).Description()
			groups = append(groups, gv)
			last = pos
		}
		cur := &groups[len(groups)-1]
		cur.Rules = append(cur.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups of run %s: %w", runID, err)
	}
	return groups, nil
}
