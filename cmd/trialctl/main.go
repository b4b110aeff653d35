package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"trialdash/adapters/tabular"
	"trialdash/domain/chart"
	domain "trialdash/domain/stats"
	"trialdash/internal"
	"trialdash/internal/analysis"
	procdata "trialdash/internal/dataset"
	"trialdash/internal/report"
	"trialdash/internal/session"
	"trialdash/internal/testkit"
	"trialdash/internal/validation"
	"trialdash/internal/visualization"

	"github.com/spf13/cobra"
)

var dateColumns string

func main() {
	rootCmd := &cobra.Command{
		Use:          "trialctl",
		Short:        "Validate, summarize and analyze clinical trial datasets from the command line",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dateColumns, "date-columns", "", "Comma separated columns to parse as dates")

	rootCmd.AddCommand(
		newValidateCmd(),
		newSummarizeCmd(),
		newAnalyzeCmd(),
		newChartCmd(),
		newReportCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readOptions() tabular.ReadOptions {
	opts := tabular.DefaultReadOptions()
	opts.DateColumns = tabular.ParseDateColumns(dateColumns)
	return opts
}

// load runs a file through the same validate, preprocess, summarize pipeline
// the server applies to uploads.
func load(path string) (*session.Session, error) {
	raw, err := tabular.ReadFile(path, readOptions())
	if err != nil {
		return nil, err
	}
	store := session.NewStore(0, internal.NewLogger(internal.LogLevelError))
	return store.Load(store.Create().ID, raw)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a CSV or XLSX file against the trial dataset rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := tabular.ReadFile(args[0], readOptions())
			if err != nil {
				return err
			}
			ok, message := validation.Validate(raw)
			fmt.Fprintln(cmd.OutOrStdout(), message)
			if !ok {
				return fmt.Errorf("%s failed validation", args[0])
			}
			return nil
		},
	}
}

func newSummarizeCmd() *cobra.Command {
	var preview int

	cmd := &cobra.Command{
		Use:   "summarize FILE",
		Short: "Print the dataset overview and summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), procdata.Overview(sess.Dataset, sess.Summary, preview))
		},
	}

	cmd.Flags().IntVar(&preview, "preview", 5, "Number of leading rows to include")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var req domain.Request
	var columns string

	cmd := &cobra.Command{
		Use:   "analyze KIND FILE",
		Short: "Run one statistical analysis and print its result as JSON",
		Long: `Run one statistical analysis against a trial dataset.

Kinds: ` + joinKinds(domain.Kinds) + `

Example: trialctl analyze t_test trial.csv --group treatment_group --value followup_score --group-a Placebo --group-b "Drug A"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Kind = domain.Kind(args[0])
			req.Columns = splitList(columns)

			sess, err := load(args[1])
			if err != nil {
				return err
			}
			result, err := analysis.Run(sess.Dataset, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&req.Column, "column", "", "Numeric column for basic_stats")
	cmd.Flags().StringVar(&req.GroupColumn, "group", "treatment_group", "Grouping column")
	cmd.Flags().StringVar(&req.ValueColumn, "value", "", "Numeric value column")
	cmd.Flags().StringVar(&req.GroupA, "group-a", "", "First group level for two-sample tests")
	cmd.Flags().StringVar(&req.GroupB, "group-b", "", "Second group level for two-sample tests")
	cmd.Flags().StringVar(&req.ColumnA, "column-a", "", "First categorical column for chi_square")
	cmd.Flags().StringVar(&req.ColumnB, "column-b", "", "Second categorical column for chi_square")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma separated numeric columns for correlation and pca")
	cmd.Flags().IntVar(&req.Components, "components", 0, "Number of principal components")
	return cmd
}

func newChartCmd() *cobra.Command {
	var req chart.Request
	var columns string
	var pngPath string
	var width, height int

	cmd := &cobra.Command{
		Use:   "chart KIND FILE",
		Short: "Build a chart spec, or render it to PNG with --png",
		Long: `Build a chart specification against a trial dataset.

Kinds: ` + joinKinds(chart.Kinds),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Kind = chart.Kind(args[0])
			req.Columns = splitList(columns)

			sess, err := load(args[1])
			if err != nil {
				return err
			}
			spec, err := visualization.Build(sess.Dataset, req)
			if err != nil {
				return err
			}
			if pngPath == "" {
				return printJSON(cmd.OutOrStdout(), spec)
			}

			var buf bytes.Buffer
			if err := visualization.RenderPNG(spec, width, height, &buf); err != nil {
				return err
			}
			if err := os.WriteFile(pngPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", pngPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", pngPath, buf.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&req.XField, "x", "", "X axis column")
	cmd.Flags().StringVar(&req.YField, "y", "", "Y axis column")
	cmd.Flags().StringVar(&req.ColorField, "color", "", "Column that colors scatter points")
	cmd.Flags().StringVar(&req.GroupField, "group", "", "Grouping column")
	cmd.Flags().StringVar(&req.ValueField, "value", "", "Value column")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma separated columns for the heatmap")
	cmd.Flags().BoolVar(&req.Trendline, "trendline", false, "Fit an OLS trendline per scatter series")
	cmd.Flags().StringVar(&pngPath, "png", "", "Write a PNG to this path instead of printing the spec")
	cmd.Flags().IntVar(&width, "width", visualization.DefaultWidth, "PNG width in pixels")
	cmd.Flags().IntVar(&height, "height", visualization.DefaultHeight, "PNG height in pixels")
	return cmd
}

func newReportCmd() *cobra.Command {
	var asHTML bool
	var preview int

	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Render the dataset summary report as Markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(args[0])
			if err != nil {
				return err
			}
			ov := procdata.Overview(sess.Dataset, sess.Summary, preview)
			if asHTML {
				_, err = cmd.OutOrStdout().Write(report.HTML(sess.Summary, ov))
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), report.Markdown(sess.Summary, ov))
			return err
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render a complete HTML page")
	cmd.Flags().IntVar(&preview, "preview", 5, "Number of leading rows to include")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	config := testkit.DefaultTrialConfig()
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic clinical trial CSV",
		Long: `Write a reproducible synthetic trial dataset.

Example: trialctl generate --patients 300 --seed 7 --missing-rate 0.05 -o trial.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.PatientCount <= 0 {
				return fmt.Errorf("--patients must be positive")
			}
			if config.MissingRate < 0 || config.MissingRate >= 1 {
				return fmt.Errorf("--missing-rate must be in [0, 1)")
			}

			data := testkit.TrialCSV(config)
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d patients to %s\n", config.PatientCount, output)
			return nil
		},
	}

	cmd.Flags().IntVar(&config.PatientCount, "patients", config.PatientCount, "Number of patients")
	cmd.Flags().Int64Var(&config.Seed, "seed", config.Seed, "Random seed for deterministic output")
	cmd.Flags().Float64Var(&config.MissingRate, "missing-rate", config.MissingRate, "Share of blank age and site cells")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (stdout when empty)")
	return cmd
}

func splitList(raw string) []string {
	return tabular.ParseDateColumns(raw)
}

func joinKinds[K ~string](kinds []K) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
