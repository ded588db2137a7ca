package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core"
	"github.com/agenthands/dupscan/internal/core/model"
	"github.com/agenthands/dupscan/internal/driver"
	"github.com/agenthands/dupscan/internal/logging"
	"github.com/agenthands/dupscan/internal/report"
	"github.com/agenthands/dupscan/internal/source"
)

var scanFlags struct {
	mode      string
	pathA     string
	pathB     string
	sheetA    string
	sheetB    string
	threshold float64
	output    string
	deadline  time.Duration
	workers   int
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan records for duplicates and write a report",
	Long: `Load the configured sources, find duplicate clusters and write the report.

Examples:
  # Find duplicates inside one worklist
  dupscan scan -a worklist.xlsx

  # Match a partner inventory against the worklist
  dupscan scan --mode cross -a worklist.xlsx -b inventory.xls --sheet-b "RPA List"

  # Read the partner list from a graph database and print JSON
  dupscan scan --mode cross -a worklist.csv -b bolt://localhost:7687 -o -

Exit status is 0 when the scan completed, 1 on error and 3 when the deadline
stopped the scan early (the partial report is still written).`,
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringVar(&scanFlags.mode, "mode", "", "self or cross")
	f.StringVarP(&scanFlags.pathA, "source-a", "a", "", "worklist file or graph URI")
	f.StringVarP(&scanFlags.pathB, "source-b", "b", "", "partner file or graph URI (cross mode)")
	f.StringVar(&scanFlags.sheetA, "sheet-a", "", "sheet of source A (default: first sheet)")
	f.StringVar(&scanFlags.sheetB, "sheet-b", "", "sheet of source B (default: first sheet)")
	f.Float64VarP(&scanFlags.threshold, "threshold", "t", 0, "match threshold between 0 and 1")
	f.StringVarP(&scanFlags.output, "output", "o", "", "report path (.xlsx or .json, - for stdout)")
	f.DurationVar(&scanFlags.deadline, "deadline", 0, "stop scoring after this long and report partial results")
	f.IntVar(&scanFlags.workers, "workers", 0, "worker pool size (default: number of CPUs)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := core.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	in, err := source.LoadInput(ctx, cfg, graphDialer(cfg, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	rep, err := engine.Run(ctx, in)
	if err != nil {
		return err
	}

	out := cfg.Report.Path
	if out == "" {
		out = report.DefaultPath(time.Now())
	}
	w, err := report.New(out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := w.Write(ctx, rep); err != nil {
		return err
	}

	// stdout belongs to the JSON report when writing to "-"
	summaryOut := cmd.OutOrStdout()
	if out == "-" {
		summaryOut = cmd.ErrOrStderr()
	}
	printSummary(summaryOut, rep, out)

	if !rep.Complete {
		return errIncomplete
	}
	return nil
}

// loadConfig layers the config file, the environment and the command-line
// flags, in that order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Scan.Mode = config.Mode(strings.ToLower(scanFlags.mode))
	}
	if flags.Changed("threshold") {
		cfg.Scan.Threshold = scanFlags.threshold
	}
	if flags.Changed("deadline") {
		cfg.Scan.Deadline.Duration = scanFlags.deadline
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = scanFlags.workers
	}
	if flags.Changed("source-a") {
		cfg.Sources.A.Path = scanFlags.pathA
	}
	if flags.Changed("source-b") {
		cfg.Sources.B.Path = scanFlags.pathB
	}
	if flags.Changed("sheet-a") {
		cfg.Sources.A.Sheet = scanFlags.sheetA
	}
	if flags.Changed("sheet-b") {
		cfg.Sources.B.Sheet = scanFlags.sheetB
	}
	if flags.Changed("output") {
		cfg.Report.Path = scanFlags.output
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	return logging.New(w, cfg.Log.Level, cfg.Log.Format)
}

// graphDialer connects with the [memgraph] credentials to whichever URI a
// source names.
func graphDialer(cfg *config.Config, logger *slog.Logger) source.Dialer {
	return func(ctx context.Context, uri string) (driver.GraphDriver, error) {
		c := cfg.Memgraph
		c.URI = uri
		return driver.NewMemgraphDriver(ctx, c, logger)
	}
}

func printSummary(w io.Writer, rep *model.Report, out string) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	s := rep.Summary
	fmt.Fprintf(w, "\n%s (%s mode, threshold %.2f)\n", bold("Duplicate scan"), rep.Mode, rep.Threshold)
	fmt.Fprintf(w, "  Records:         %d (%d skipped)\n", s.RecordsIn, s.RecordsSkipped)
	fmt.Fprintf(w, "  Candidate pairs: %d (%d scored)\n", s.CandidatePairs, s.PairsScored)
	if s.OversizedBlocks > 0 {
		fmt.Fprintf(w, "  Oversized blocks: %s\n", yellow(s.OversizedBlocks))
	}

	if s.Clusters == 0 {
		fmt.Fprintf(w, "  %s\n", green("No duplicates found"))
	} else {
		fmt.Fprintf(w, "  Clusters:        %s covering %d records\n", cyan(s.Clusters), s.ClusteredRecords)
		for i, c := range rep.Clusters {
			if i == 10 {
				fmt.Fprintf(w, "    ... %d more\n", len(rep.Clusters)-i)
				break
			}
			ids := make([]string, len(c.Members))
			for j, m := range c.Members {
				ids[j] = m.String()
			}
			fmt.Fprintf(w, "    %s  %.3f  %s\n", cyan(c.Representative.String()), c.Confidence, strings.Join(ids, ", "))
		}
	}

	if !rep.Complete {
		fmt.Fprintf(w, "  %s %s, results are partial\n", yellow("Incomplete:"), rep.IncompleteReason)
	}
	if out != "-" {
		fmt.Fprintf(w, "  Report:          %s\n", out)
	}
	fmt.Fprintf(w, "  Elapsed:         %s\n", rep.Elapsed().Round(time.Millisecond))
}
