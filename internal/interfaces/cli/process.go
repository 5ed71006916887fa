package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/SeqPrep/internal/application/encoding"
	"github.com/turtacn/SeqPrep/pkg/types/common"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

type processOptions struct {
	Tokens bool
}

func newProcessCmd() *cobra.Command {
	opts := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process [sequence...]",
		Short: "Encode raw sequences given as arguments or one per stdin line",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Tokens, "tokens", false, "also print the decoded tokens")
	return cmd
}

// ProcessResult is the output for one input sequence.
type ProcessResult struct {
	Input  string                 `json:"input"`
	IDs    sequence.IDSequence    `json:"ids,omitempty"`
	Tokens sequence.TokenSequence `json:"tokens,omitempty"`
	Error  *common.ErrorDetail    `json:"error,omitempty"`
}

// ProcessResults renders one line per input in text mode.
type ProcessResults []ProcessResult

func (rs ProcessResults) String() string {
	lines := make([]string, len(rs))
	for i, r := range rs {
		if r.Error != nil {
			lines[i] = fmt.Sprintf("%s\terror %s: %s", r.Input, r.Error.Code, r.Error.Message)
			continue
		}
		lines[i] = r.Input + "\t" + formatIDs(r.IDs)
		if r.Tokens != nil {
			lines[i] += "\t" + formatTokens(r.Tokens)
		}
	}
	return strings.Join(lines, "\n")
}

func (rs ProcessResults) TableHeaders() []string { return []string{"INPUT", "LENGTH", "IDS", "ERROR"} }

func (rs ProcessResults) TableRows() [][]string {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		errText := ""
		if r.Error != nil {
			errText = r.Error.Code
		}
		rows[i] = []string{r.Input, strconv.Itoa(len(r.IDs)), formatIDs(r.IDs), errText}
	}
	return rows
}

func runProcess(cmd *cobra.Command, args []string, opts *processOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	inputs := args
	if len(inputs) == 0 {
		if inputs, err = readLines(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()
	rt, err := newRuntime(ctx, cliCtx.Config, cliCtx.Logger, "cli")
	if err != nil {
		return err
	}
	defer rt.Close()

	results := make(ProcessResults, len(inputs))
	for i, in := range inputs {
		res := rt.svc.EncodeRecord(ctx, encoding.Record{ID: strconv.Itoa(i), Sequence: in})
		results[i] = ProcessResult{Input: in, IDs: res.IDs, Error: res.Error}
		if opts.Tokens && res.OK() {
			results[i].Tokens = rt.svc.Preprocessor().Vocabulary().Decode(res.IDs)
		}
	}
	return PrintResult(cmd, results)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func formatIDs(ids sequence.IDSequence) string {
	parts := make([]string, len(ids))
	for i, pos := range ids {
		inner := make([]string, len(pos))
		for j, id := range pos {
			inner[j] = strconv.Itoa(id)
		}
		parts[i] = strings.Join(inner, ",")
	}
	return strings.Join(parts, " ")
}

func formatTokens(ts sequence.TokenSequence) string {
	parts := make([]string, len(ts))
	for i, pos := range ts {
		parts[i] = strings.Join(pos, ",")
	}
	return strings.Join(parts, " ")
}
