package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"heartpredict/dispatch"
	"heartpredict/ingest"
)

func newPredictCmd(opts *rootOptions) *cobra.Command {
	var csvPath, outPath string
	cmd := &cobra.Command{
		Use:   "predict --csv <file>",
		Short: "Predict every row of a CSV file and write the augmented table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()

			dispatcher, err := dispatch.New(cfg.Dispatch(), logger)
			if err != nil {
				return fmt.Errorf("init dispatcher: %w", err)
			}
			defer dispatcher.Close()

			in, err := os.Open(csvPath)
			if err != nil {
				return err
			}
			defer in.Close()

			table, result, err := predictTable(dispatcher, in)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := ingest.WriteCSV(out, table); err != nil {
				out.Close()
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
			logger.Debug("predictions written", zap.String("path", outPath))

			printSummary(cmd.OutOrStdout(), result)
			fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "Input CSV file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", ingest.DownloadName, "Output CSV file")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

// predictTable reads a table, dispatches it and appends one prediction column
// per model. Nothing is returned unless every model succeeded.
func predictTable(dispatcher *dispatch.Dispatcher, r io.Reader) (*ingest.Table, *dispatch.Result, error) {
	table, err := ingest.ReadTable(r)
	if err != nil {
		return nil, nil, err
	}
	result, err := dispatcher.Dispatch(table.Batch)
	if err != nil {
		return nil, nil, err
	}
	for i, m := range result.Models {
		if err := table.Augment(ingest.PredictionColumn(m.Name), result.Predictions[i]); err != nil {
			return nil, nil, err
		}
	}
	return table, result, nil
}

func printSummary(w io.Writer, result *dispatch.Result) {
	fmt.Fprintf(w, "Rows:    %d\n", result.Rows)
	positives := result.Positives()
	for i, m := range result.Models {
		fmt.Fprintf(w, "  %-24s %d/%d positive\n", m.Name, positives[i], result.Rows)
	}
}
