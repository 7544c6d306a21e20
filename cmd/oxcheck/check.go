package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oxcheck/internal/diag"
	"oxcheck/internal/diagfmt"
	"oxcheck/internal/driver"
	"oxcheck/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <program.oxp>",
	Short: "Run ownership and borrow analysis on a serialized program",
	Long:  `Check every function of a program file produced by a front end; reports use-after-move, borrow conflicts, and unsafe thread captures`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

// init registers CLI flags for the check command: output format, worker
// count, config file location, and the optional borrow event and timing dumps.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for function analysis (0=auto)")
	checkCmd.Flags().String("config", "", "path to oxcheck.toml (default: alongside the program)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("emit-events", false, "dump the borrow event log after analysis")
	checkCmd.Flags().Bool("timings", false, "print per-phase timings to stderr")
}

// runCheck executes the "check" command: loads the program file, resolves
// configuration, analyzes all functions (in parallel when asked), renders
// the merged diagnostics in the chosen format, and exits non-zero when any
// diagnostics contain errors.
func runCheck(cmd *cobra.Command, args []string) error {
	programPath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	emitEvents, err := cmd.Flags().GetBool("emit-events")
	if err != nil {
		return fmt.Errorf("failed to get emit-events flag: %w", err)
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	cfg, err := driver.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") || cfg.Output.Format == "" {
		cfg.Output.Format = format
	}
	if cmd.Root().PersistentFlags().Changed("color") {
		cfg.Output.Color = colorMode
	}
	if jobs == 0 {
		jobs = cfg.Analysis.Jobs
	}

	opts := cfg.Options()
	if cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		opts.MaxDiagnostics = maxDiagnostics
	}
	opts.RecordEvents = emitEvents

	timer := observ.NewTimer()

	phase := timer.Begin("load")
	program, facts, err := driver.LoadProgram(programPath)
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d funcs", program.NumFuncs()))

	phase = timer.Begin("analyze")
	result, err := driver.AnalyzeProgram(cmd.Context(), program, facts, opts, jobs)
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d diagnostics", result.Bag.Len()))

	phase = timer.Begin("render")
	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case "pretty":
		diagfmt.Pretty(out, result.Bag, program, diagfmt.PrettyOpts{
			Color:     colorEnabled(cfg.Output.Color, os.Stdout),
			WithNotes: withNotes,
		})
	case "json":
		if err := diagfmt.JSON(out, result.Bag, program); err != nil {
			return err
		}
	case "short":
		fmt.Fprint(out, diag.FormatShortDiagnostics(result.Bag.Items(), program, withNotes))
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json, or short)", cfg.Output.Format)
	}

	if emitEvents {
		for _, fn := range result.Funcs {
			diagfmt.Events(out, fn.Events, program)
		}
	}
	timer.End(phase, "")

	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if result.Bag.HasErrors() {
		os.Exit(1)
	}
	return nil
}
