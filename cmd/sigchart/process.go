package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/chart"
	"github.com/newthinker/sigchart/internal/config"
	"github.com/newthinker/sigchart/internal/pipeline"
	"github.com/newthinker/sigchart/internal/storage/source"
)

var (
	processOHLCV  string
	processTrades string
	processJSON   bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the CSV pipeline once and print the result",
	Long: `Parse an OHLCV file and a trades file and print a summary, or the full
chart payload with --json. Without --ohlcv and --trades the default
datasets are read from the configured data source; a flag given alone
replaces only its own file.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processOHLCV, "ohlcv", "", "OHLCV CSV file")
	processCmd.Flags().StringVar(&processTrades, "trades", "", "trades CSV file")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "print the chart payload as JSON")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	ohlcv, trades, err := openInputs(ctx, cfg)
	if err != nil {
		return err
	}
	defer ohlcv.Close()
	if trades != nil {
		defer trades.Close()
	}

	res, err := pipeline.New(log, nil).Process(ctx, ohlcv, trades)
	if err != nil {
		return fmt.Errorf("processing: %w", err)
	}

	out := cmd.OutOrStdout()
	if processJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(chart.Build(res))
	}

	printSummary(out, res)
	log.Debug("process complete", zap.Int("candles", len(res.Candles)))
	return nil
}

// openInputs opens the files named by flags. A file without a flag comes
// from the configured data source, except that an explicit --ohlcv alone
// charts candles only.
func openInputs(ctx context.Context, cfg *config.Config) (io.ReadCloser, io.ReadCloser, error) {
	var src source.Source
	open := func(flag, def string) (io.ReadCloser, error) {
		if flag != "" {
			f, err := os.Open(flag)
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", flag, err)
			}
			return f, nil
		}
		if src == nil {
			var err error
			if src, err = source.New(cfg.Data); err != nil {
				return nil, fmt.Errorf("creating data source: %w", err)
			}
		}
		return src.Open(ctx, def)
	}

	ohlcv, err := open(processOHLCV, cfg.Data.OHLCVFile)
	if err != nil {
		return nil, nil, err
	}
	if processOHLCV != "" && processTrades == "" {
		return ohlcv, nil, nil
	}

	trades, err := open(processTrades, cfg.Data.TradesFile)
	if err != nil {
		ohlcv.Close()
		return nil, nil, err
	}
	return ohlcv, trades, nil
}

func printSummary(out io.Writer, res *pipeline.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATASET\tREAD\tACCEPTED\tDROPPED\t")
	fmt.Fprintln(w, "-------\t----\t--------\t-------\t")
	for _, row := range []struct {
		name  string
		stats pipeline.DatasetStats
	}{
		{pipeline.DatasetOHLCV, res.Stats.OHLCV},
		{pipeline.DatasetTrades, res.Stats.Trades},
	} {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", row.name, row.stats.Read, row.stats.Accepted, row.stats.Dropped)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Candles:      %d\n", len(res.Candles))
	fmt.Fprintf(out, "Signals:      %d\n", len(res.Markers))
	fmt.Fprintf(out, "Entries:      %d\n", res.Stats.Entries)
	fmt.Fprintf(out, "Stop losses:  %d\n", res.Stats.StopLosses)
	fmt.Fprintf(out, "Take profits: %d\n", res.Stats.TakeProfits)

	if len(res.Warnings) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Dropped rows")
	fmt.Fprintln(out, "------------")
	for _, wr := range res.Warnings {
		fmt.Fprintf(out, "%s row %d: %s\n", wr.Dataset, wr.Row, wr.Reason)
	}
}
