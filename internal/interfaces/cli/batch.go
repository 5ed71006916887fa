package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/SeqPrep/internal/application/encoding"
	"github.com/turtacn/SeqPrep/internal/infrastructure/fasta"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

type batchOptions struct {
	Input  string
	Output string
}

func newBatchCmd() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Encode every record of a FASTA file into JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "FASTA input file (required)")
	cmd.Flags().StringVar(&opts.Output, "out", "encoded.jsonl", "JSON lines output file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// BatchResult summarises a batch run.
type BatchResult struct {
	Input  string                `json:"input"`
	Output string                `json:"output"`
	Stats  encoding.BatchSummary `json:"summary"`
}

func (r BatchResult) String() string {
	failed := fmt.Sprintf("%d failed", r.Stats.Failed)
	if r.Stats.Failed > 0 {
		failed = color.RedString(failed)
	}
	return fmt.Sprintf("%s -> %s: %s, %s in %s",
		r.Input, r.Output,
		color.GreenString("%d encoded", r.Stats.Succeeded), failed,
		r.Stats.Duration.Round(time.Millisecond))
}

func runBatch(cmd *cobra.Command, opts *batchOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	recs, err := fasta.ReadFile(opts.Input)
	if err != nil {
		return err
	}
	records := encoding.RecordsFromFASTA(recs)

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()
	rt, err := newRuntime(ctx, cliCtx.Config, cliCtx.Logger, "batch")
	if err != nil {
		return err
	}
	defer rt.Close()

	start := time.Now()
	results, err := rt.svc.EncodeBatch(ctx, records)
	if err != nil {
		return err
	}
	summary := encoding.Summarize(results, time.Since(start))

	if err := writeJSONLines(opts.Output, results); err != nil {
		return err
	}
	cliCtx.Logger.Info("batch finished",
		logging.String("input", opts.Input),
		logging.Int("total", summary.Total),
		logging.Int("failed", summary.Failed))
	return PrintResult(cmd, BatchResult{Input: opts.Input, Output: opts.Output, Stats: summary})
}

func writeJSONLines(path string, results []encoding.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create output").WithDetail("path=" + path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, errors.CodeSerialization, "failed to encode result")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to write output").WithDetail("path=" + path)
	}
	return f.Close()
}
