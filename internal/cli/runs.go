package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/arpp/internal/export"
	"github.com/roach88/arpp/internal/store"
)

// RunsOptions holds flags for the runs commands.
type RunsOptions struct {
	*RootOptions
	DBPath string
}

// RunList holds the output of runs list.
type RunList struct {
	Runs []store.RunSummary `json:"runs"`
}

// String renders the run list as a table.
func (l RunList) String() string {
	if len(l.Runs) == 0 {
		return "No runs recorded."
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Seq", "ID", "Item", "Measure", "Rules", "Groups"})
	for _, r := range l.Runs {
		t.AppendRow(table.Row{r.Seq, r.ID, r.Item, r.Measure, r.InputRules, r.GroupCount})
	}
	return t.Render()
}

// RunDetail holds the output of runs show.
type RunDetail struct {
	store.Run
}

// String renders a stored run with its groups.
func (d RunDetail) String() string {
	r := d.Run
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(&b, "item: %s\nmeasure: %s\nrules: %d\n", r.Item, r.Measure, r.InputRules)
	fmt.Fprintf(&b, "minimal improvement: %s\nrelevance range: %s\nallow empty items: %t\n",
		export.FormatRank(r.Parameters.MinimalImprovement),
		export.FormatRank(r.Parameters.RelevanceRange),
		r.Parameters.AllowEmptyItems)
	if r.Parameters.Source != "" {
		fmt.Fprintf(&b, "source: %s\n", r.Parameters.Source)
	}
	for _, g := range r.Groups {
		fmt.Fprintf(&b, "\ngroup %d %s=%s %s\n", g.Class, g.RankBy, g.Rank, g.Description)
		for _, rv := range g.Rules {
			fmt.Fprintf(&b, "  %s  %s=%s\n", rv.Rule, r.Measure, rv.Value)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewRunsCommand creates the runs command group.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect classification runs recorded with classify --db",
	}
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "run database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List recorded runs in sequence order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show a recorded run and its groups",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(opts, args[0], cmd)
		},
	})

	return cmd
}

func runRunsList(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := runsFormatter(opts, cmd)
	s, err := openRunStore(formatter, opts.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to list runs", nil, err)
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	return formatter.Success(RunList{Runs: runs})
}

func runRunsShow(opts *RunsOptions, id string, cmd *cobra.Command) error {
	formatter := runsFormatter(opts, cmd)
	s, err := openRunStore(formatter, opts.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.ReadRun(cmd.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeRunNotFound, fmt.Sprintf("run not found: %s", id), nil, err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to read run", nil, err)
	}
	return formatter.Success(RunDetail{Run: run})
}

func runsFormatter(opts *RunsOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openRunStore opens an existing run database; it never creates one.
func openRunStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run database not found: %s", path), nil, err)
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to open run database", nil, err)
	}
	return s, nil
}
