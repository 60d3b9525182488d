package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barbt/market"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Prepare bar datasets",
}

var dataConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a bar file between CSV and Parquet",
	Long: `Convert reads date,open,high,low,close,volume bars from <in> and writes
them to <out>. The format of each side is chosen by extension: .parquet
and .pq are Parquet, anything else is CSV.

Examples:
  barbt data convert data/AAPL.csv data/AAPL.parquet
  barbt data convert data/AAPL.parquet /tmp/AAPL.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runDataConvert,
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataConvertCmd)
}

func runDataConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	ts, err := market.Load(symbolFromPath(in), in)
	if err != nil {
		return err
	}
	if err := market.Save(out, ts.Bars()); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d bars to %s\n", ts.Len(), out)
	return nil
}
