package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyDBFlag    string
	historyLimitFlag int
	historyNoColor   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded runs",
	Long: `Inspect runs recorded with "giraftest run --history".

Examples:
  giraftest history list
  giraftest history list --limit 5
  giraftest history compare
  giraftest history compare 3f2a 9c41`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  historyListCommand,
}

var historyCompareCmd = &cobra.Command{
	Use:   "compare [run-a run-b]",
	Short: "Show cases whose outcome changed between two runs",
	Long: `Show cases whose outcome changed between two runs. Runs are given by id or
a unique id prefix. Without arguments the two most recent runs are compared.

Two runs against a freshly seeded server are expected to show no changes.
The exit status is 1 when any case changed.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return withExitCode(ExitUsageError, fmt.Errorf("compare takes no arguments or two run ids, got %d", len(args)))
		}
		return nil
	},
	RunE: historyCompareCommand,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDBFlag, "db", history.DefaultPath, "Path to the history database")
	historyCmd.PersistentFlags().BoolVar(&historyNoColor, "no-color", false, "Disable colored output")
	historyListCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of runs to show (0 = all)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyCompareCmd)
}

func openHistory() (*history.Store, error) {
	if historyNoColor {
		color.NoColor = true
	}
	store, err := history.Open(historyDBFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return store, nil
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded in %s\n", historyDBFlag)
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSERVER\tPASSED\tFAILED\tSKIPPED\tDURATION")
	for _, run := range runs {
		failed := green(run.Failed)
		if run.Failed > 0 {
			failed = red(run.Failed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%dms\n",
			run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.BaseURL,
			run.Passed, failed, run.Skipped, run.Duration.Milliseconds())
	}
	return tw.Flush()
}

func historyCompareCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var a, b string
	if len(args) == 2 {
		a, b = args[0], args[1]
	} else {
		runs, err := store.Runs(ctx, 2)
		if err != nil {
			return err
		}
		if len(runs) < 2 {
			return withExitCode(ExitUsageError, fmt.Errorf("need at least two recorded runs to compare, found %d", len(runs)))
		}
		a, b = runs[1].ID, runs[0].ID
	}

	before, err := store.Run(ctx, a)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	after, err := store.Run(ctx, b)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	changes, err := store.Compare(ctx, before.ID, after.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s -> %s\n", bold("Comparing"), before.ID, after.ID)
	if len(changes) == 0 {
		fmt.Fprintln(out, color.New(color.FgGreen).Sprint("No outcome changes"))
		return nil
	}

	for _, c := range changes {
		fmt.Fprintf(out, "  %s/%s: %s -> %s\n", c.Suite, c.Name, statusLabel(c.Before), statusLabel(c.After))
	}
	fmt.Fprintf(out, "\n%d case(s) changed\n", len(changes))
	return withExitCode(ExitTestFailure, nil)
}

func statusLabel(s runner.Status) string {
	switch s {
	case runner.StatusPassed:
		return color.New(color.FgGreen).Sprint(s)
	case runner.StatusFailed:
		return color.New(color.FgRed).Sprint(s)
	case runner.StatusSkipped:
		return color.New(color.FgYellow).Sprint(s)
	default:
		return "absent"
	}
}
