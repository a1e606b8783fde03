package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"goeda/adapters/excel"
	"goeda/adapters/memory"
	"goeda/app"
	"goeda/domain/profile"
	"goeda/internal/analysis"
	"goeda/internal/config"
	"goeda/internal/logger"
	"goeda/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env carries what every subcommand needs, built once the flags are parsed
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	reader   *excel.DataReader
	analyzer *analysis.Analyzer
}

func newRootCmd() *cobra.Command {
	var logLevel string
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "goeda",
		Short:         "Profile tabular datasets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			e.cfg = cfg
			e.logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, "console")

			readerConfig := excel.DefaultReaderConfig()
			readerConfig.MaxRows = cfg.Analysis.SampleRows
			e.reader = excel.NewDataReader(readerConfig, e.logger)
			e.analyzer = analysis.NewAnalyzer(analysis.WithLogger(e.logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to the configured level")

	rootCmd.AddCommand(
		newProfileCmd(e),
		newReportCmd(e),
		newBatchCmd(e),
	)
	return rootCmd
}

func newProfileCmd(e *env) *cobra.Command {
	var pretty bool
	var label string

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Print the JSON profile of a CSV, TSV, TXT or XLSX file",
		Long: `Read a file, run the full analysis and print the profile as JSON.

Example: goeda profile sales.csv --pretty --label "Q1 sales"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.profileFile(args[0], label)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p, pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().StringVar(&label, "label", "", "Dataset label; defaults to the file name")
	return cmd
}

func newReportCmd(e *env) *cobra.Command {
	var asHTML bool
	var label string

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Print a Markdown or HTML report of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.profileFile(args[0], label)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asHTML {
				_, err = out.Write(report.HTML(p))
			} else {
				_, err = io.WriteString(out, report.Markdown(p))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render a standalone HTML page instead of Markdown")
	cmd.Flags().StringVar(&label, "label", "", "Dataset label; defaults to the file name")
	return cmd
}

func newBatchCmd(e *env) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Profile several files concurrently and print a summary table",
		Long: `Profile every file with a bounded number of analyses in flight.

Files that cannot be read or analyzed are reported in the table; the command
fails only when every file failed.

Example: goeda batch data/*.csv --concurrency 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency <= 0 {
				concurrency = e.cfg.Analysis.BatchConcurrency
			}
			service := app.NewProfileService(memory.NewDatasetRepository(), e.reader, e.analyzer, e.logger)

			results, err := service.ProfileBatch(cmd.Context(), args, concurrency)
			if err != nil {
				return err
			}
			failed, err := writeBatchTable(cmd.OutOrStdout(), results)
			if err != nil {
				return err
			}
			if failed == len(results) {
				return fmt.Errorf("all %d files failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum analyses in flight; defaults to the configured batch concurrency")
	return cmd
}

func (e *env) profileFile(path, label string) (*profile.DatasetProfile, error) {
	table, err := e.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = filepath.Base(path)
	}
	for _, rowErr := range table.Errors {
		e.logger.Warn("skipped row", zap.Int("row", rowErr.RowIndex), zap.String("reason", rowErr.Message))
	}
	return e.analyzer.Analyze(table.Rows, label)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// writeBatchTable prints one line per file and returns how many failed
func writeBatchTable(w io.Writer, results []app.BatchResult) (int, error) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tROWS\tCOLUMNS\tMISSING\tQUALITY\tERROR")

	failed := 0
	for _, r := range results {
		name := filepath.Base(r.Path)
		switch {
		case r.Dataset != nil && r.Err == nil:
			ds := r.Dataset
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f%%\t%s\t\n",
				name, ds.Status, ds.RecordCount, ds.FieldCount, ds.MissingRate, ds.Verdict)
		default:
			failed++
			status := "error"
			if r.Dataset != nil {
				status = string(r.Dataset.Status)
			}
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t%s\n", name, status, r.Error())
		}
	}
	return failed, tw.Flush()
}
