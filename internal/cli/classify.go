package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/arpp/internal/classify"
	"github.com/roach88/arpp/internal/config"
	"github.com/roach88/arpp/internal/export"
	"github.com/roach88/arpp/internal/group"
	"github.com/roach88/arpp/internal/ingest"
	"github.com/roach88/arpp/internal/store"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	Items              []string
	Measure            string
	MinimalImprovement float64
	RelevanceRange     float64
	AllowEmpty         bool
	ConfigFile         string
	DBPath             string
	Export             string
	Output             string
}

// ItemResult is the classification of one item of interest.
type ItemResult struct {
	Item    string             `json:"item"`
	Measure string             `json:"measure"`
	RunID   string             `json:"run_id,omitempty"`
	Groups  []export.GroupView `json:"groups"`
}

// ClassifyResult holds the output of the classify command.
type ClassifyResult struct {
	Source string       `json:"source"`
	Rules  int          `json:"rules"`
	Items  []ItemResult `json:"items"`

	styles *Styles
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify <rules.csv>",
		Short: "Classify rules around one or more items of interest",
		Long: `Classify association rules exported by arules around an item of interest.

Each --item is classified independently over the same rules. Flags override
values from --config, which override ARPP_* environment variables and the
built-in defaults.

Exit codes:
  0 - Classification succeeded
  1 - Invalid config, malformed rules or classification error
  2 - Command error (missing file, unusable database, etc.)

Examples:
  arpp classify rules.csv --item survived=yes
  arpp classify rules.csv --item survived=yes --measure confidence --min-improvement 0.01
  arpp classify rules.csv --item survived=yes --item survived=no --db runs.db
  arpp classify rules.csv --item survived=yes --export csv --output groups.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "item of interest, e.g. survived=yes (repeatable)")
	cmd.Flags().StringVar(&opts.Measure, "measure", config.DefaultMeasure, "interest measure")
	cmd.Flags().Float64Var(&opts.MinimalImprovement, "min-improvement", classify.DefaultMinimalImprovement, "minimal gain over generalizations")
	cmd.Flags().Float64Var(&opts.RelevanceRange, "relevance-range", 0, "width of the neutral zone around the measure's neutral value")
	cmd.Flags().BoolVar(&opts.AllowEmpty, "allow-empty", false, "keep rules with empty-valued items (attribute=)")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "config file (YAML)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "record runs in this SQLite database")
	cmd.Flags().StringVar(&opts.Export, "export", "", "export format (table|csv|markdown|html)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the export to this file instead of stdout")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

func runClassify(opts *ClassifyOptions, rulesPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	defer logger.Sync() //nolint:errcheck

	var format export.Format
	if opts.Export != "" {
		f, err := export.ParseFormat(opts.Export)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --export", err)
		}
		format = f
		if format == export.FormatCSV && len(uniqueItems(opts.Items)) > 1 {
			return NewExitError(ExitCommandError, "csv export takes a single --item")
		}
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalidConfig, "failed to load config", nil, err)
	}
	applyClassifyFlags(cmd, opts, cfg)
	if err := cfg.Check(); err != nil {
		errs, _ := config.AsValidationErrors(err)
		return formatter.Fail(ExitFailure, ErrCodeInvalidConfig, err.Error(), errs, err)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalidConfig, err.Error(), nil, err)
	}

	rules, err := ingest.ReadFile(rulesPath, cfg.Ingest(reg, logger))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("rules file not found: %s", rulesPath), nil, err)
		}
		return formatter.Fail(ExitFailure, ErrCodeReadFailed, err.Error(), nil, err)
	}
	formatter.VerboseLog("Read %d rules from %s", len(rules), rulesPath)

	items := uniqueItems(opts.Items)
	groupsByItem, err := classify.ClassifyEach(items, rules, cfg.Classify(logger))
	if err != nil {
		var ce *classify.Error
		details := map[string]string{}
		if errors.As(err, &ce) {
			details["item"] = ce.Item
			details["reason"] = string(ce.Code)
		}
		return formatter.Fail(ExitFailure, ErrCodeClassifyFailed, err.Error(), details, err)
	}

	result := ClassifyResult{
		Source: rulesPath,
		Rules:  len(rules),
		Items:  make([]ItemResult, 0, len(items)),
		styles: stylesFor(cmd.OutOrStdout()),
	}
	for _, item := range items {
		result.Items = append(result.Items, ItemResult{
			Item:    item,
			Measure: cfg.Measure,
			Groups:  export.Views(groupsByItem[item], cfg.Measure),
		})
	}

	if opts.DBPath != "" {
		if err := recordRuns(cmd, opts.DBPath, cfg, &result); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to record runs", nil, err)
		}
	}

	if format != "" {
		if err := writeExport(cmd.OutOrStdout(), opts.Output, format, items, groupsByItem, cfg.Measure); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write export", nil, err)
		}
		if opts.Output == "" {
			return nil
		}
		formatter.VerboseLog("Wrote %s export to %s", format, opts.Output)
	}

	logger.Debug("classify done", zap.Int("items", len(items)), zap.Int("rules", len(rules)))
	return formatter.Success(result)
}

// applyClassifyFlags lets explicitly set flags override the loaded config.
func applyClassifyFlags(cmd *cobra.Command, opts *ClassifyOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("measure") {
		cfg.Measure = opts.Measure
	}
	if flags.Changed("min-improvement") {
		cfg.MinimalImprovement = opts.MinimalImprovement
	}
	if flags.Changed("relevance-range") {
		cfg.RelevanceRange = opts.RelevanceRange
	}
	if flags.Changed("allow-empty") {
		cfg.AllowEmptyItems = opts.AllowEmpty
	}
}

func recordRuns(cmd *cobra.Command, dbPath string, cfg *config.Config, result *ClassifyResult) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	params := store.Parameters{
		MinimalImprovement: cfg.MinimalImprovement,
		RelevanceRange:     cfg.RelevanceRange,
		AllowEmptyItems:    cfg.AllowEmptyItems,
		Source:             result.Source,
	}
	for i := range result.Items {
		ir := &result.Items[i]
		run, err := s.WriteRun(cmd.Context(), store.Run{
			Item:       ir.Item,
			Measure:    ir.Measure,
			Parameters: params,
			InputRules: result.Rules,
			Groups:     ir.Groups,
		})
		if err != nil {
			return err
		}
		ir.RunID = run.ID
	}
	return nil
}

func writeExport(stdout io.Writer, path string, format export.Format, items []string, groupsByItem map[string][]group.Group, measureName string) (err error) {
	w := stdout
	if path != "" {
		var f *os.File
		f, err = os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	for i, item := range items {
		if len(items) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", item)
		}
		if err := export.Write(w, groupsByItem[item], measureName, format); err != nil {
			return err
		}
	}
	return nil
}

func uniqueItems(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// String renders the result for text output.
func (r ClassifyResult) String() string {
	st := r.styles
	if st == nil {
		st = NewStyles(false)
	}

	var b strings.Builder
	for i, item := range r.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		header := fmt.Sprintf("%s (%s): %d groups from %d rules", item.Item, item.Measure, len(item.Groups), r.Rules)
		b.WriteString(st.Header.Render(header))
		if item.RunID != "" {
			b.WriteString(" " + st.Muted.Render("run "+item.RunID))
		}
		b.WriteString("\n")

		for _, g := range item.Groups {
			fmt.Fprintf(&b, "\n%s %s %s\n",
				st.Group.Render(fmt.Sprintf("group %d", g.Class)),
				st.Rank.Render(g.RankBy+"="+g.Rank),
				st.Muted.Render(g.Description))
			for _, rv := range g.Rules {
				fmt.Fprintf(&b, "  %s  %s\n", rv.Rule, st.Muted.Render(item.Measure+"="+rv.Value))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
