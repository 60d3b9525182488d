package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barbt/backtest"
	"github.com/rustyeddy/barbt/journal"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query recorded backtest runs",
	Long: `Query runs and trades stored in the SQLite journal.

Subcommands:
  list    - List recent runs
  show    - Show one run's report
  trades  - List the trades of one run

Examples:
  barbt runs list --db runs.db
  barbt runs show 01HZX... --org
  barbt runs trades 01HZX...`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's report",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsTrades,
}

var (
	runsDBPath string
	runsLimit  int
	runsOrg    bool
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsTradesCmd)

	runsCmd.PersistentFlags().StringVar(&runsDBPath, "db", "./barbt.sqlite", "path to SQLite journal DB")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum runs to list (0 for all)")
	runsShowCmd.Flags().BoolVar(&runsOrg, "org", false, "print as an org-mode block")
	runsTradesCmd.Flags().BoolVar(&runsOrg, "org", false, "print as org-mode entries")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(runsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tSYMBOL\tSTRATEGY\tSTATUS\tTRADES\tNET WORTH")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%.2f\n",
			r.RunID, r.Created.Local().Format(time.DateTime), r.Symbol, r.Strategy, r.Status, r.Trades, r.NetWorth)
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(runsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	if runsOrg {
		s, err := j.ExportRunOrg(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), s)
		return nil
	}

	r, err := j.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	backtest.PrintRun(cmd.OutOrStdout(), r)
	return nil
}

func runRunsTrades(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(runsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	trades, err := j.ListTradesByRunID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No trades for run %s.\n", args[0])
		return nil
	}
	if runsOrg {
		fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradesOrg(trades))
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDATE\tACTION\tPRICE\tSHARES\tBALANCE")
	for _, t := range trades {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%d\t%.2f\n", t.Seq, t.Date, t.Action, t.Price, t.Quantity, t.Cash)
	}
	return tw.Flush()
}
