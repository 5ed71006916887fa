package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/storage/minio"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

type vocabBuildOptions struct {
	K        int
	Alphabet []string
	Out      string
	Push     string
}

type vocabInspectOptions struct {
	Object string
	Limit  int
}

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build and inspect k-mer vocabularies",
	}

	buildOpts := &vocabBuildOptions{}
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Enumerate every k-mer over an alphabet and save the vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVocabBuild(cmd, buildOpts)
		},
	}
	buildCmd.Flags().IntVarP(&buildOpts.K, "k", "k", 0, "k-mer length (default: pipeline.tokenization.k)")
	buildCmd.Flags().StringSliceVar(&buildOpts.Alphabet, "alphabet", nil, "alphabet symbols (default: pipeline.augmentation.alphabet)")
	buildCmd.Flags().StringVar(&buildOpts.Out, "out", "", "output path (default: vocabulary.path or vocab.json)")
	buildCmd.Flags().StringVar(&buildOpts.Push, "push", "", "also upload to object storage under this name")

	inspectOpts := &vocabInspectOptions{}
	inspectCmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Show the size and leading tokens of a vocabulary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runVocabInspect(cmd, path, inspectOpts)
		},
	}
	inspectCmd.Flags().StringVar(&inspectOpts.Object, "object", "", "read the vocabulary from object storage instead of a file")
	inspectCmd.Flags().IntVar(&inspectOpts.Limit, "limit", 20, "number of tokens to list (0 lists all)")

	cmd.AddCommand(buildCmd, inspectCmd)
	return cmd
}

// VocabBuildResult reports a built vocabulary.
type VocabBuildResult struct {
	Path   string `json:"path"`
	K      int    `json:"k"`
	Size   int    `json:"size"`
	Object string `json:"object,omitempty"`
}

func (r VocabBuildResult) String() string {
	s := fmt.Sprintf("vocabulary k=%d size=%d written to %s", r.K, r.Size, r.Path)
	if r.Object != "" {
		s += " and uploaded as " + r.Object
	}
	return s
}

func runVocabBuild(cmd *cobra.Command, opts *vocabBuildOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config

	k := cfg.Pipeline.Tokenization.K
	if opts.K > 0 {
		k = opts.K
	}
	symbols := cfg.Pipeline.Augmentation.Alphabet
	if len(opts.Alphabet) > 0 {
		symbols = opts.Alphabet
	}
	alphabet, err := sequence.ParseAlphabet(symbols)
	if err != nil {
		return err
	}
	v, err := vocab.BuildKmer(k, alphabet)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == "" {
		out = cfg.Vocabulary.Path
	}
	if out == "" {
		out = "vocab.json"
	}
	if err := v.Save(out); err != nil {
		return err
	}
	res := VocabBuildResult{Path: out, K: k, Size: v.Size()}

	if opts.Push != "" {
		ctx, cancel := commandContext(cmd, cliCtx)
		defer cancel()
		client, err := newMinIOClient(cfg, cliCtx.Logger)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := minio.NewVocabularyRepository(client).Put(ctx, opts.Push, v); err != nil {
			return err
		}
		res.Object = opts.Push
	}

	cliCtx.Logger.Debug("vocabulary built", logging.Int("k", k), logging.Int("size", v.Size()))
	return PrintResult(cmd, res)
}

// VocabInspectResult lists the leading tokens of a vocabulary.
type VocabInspectResult struct {
	Source string       `json:"source"`
	Size   int          `json:"size"`
	Tokens []TokenEntry `json:"tokens"`
}

// TokenEntry is one vocabulary row.
type TokenEntry struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
}

func (r VocabInspectResult) TableHeaders() []string { return []string{"ID", "TOKEN"} }

func (r VocabInspectResult) TableRows() [][]string {
	rows := make([][]string, len(r.Tokens))
	for i, t := range r.Tokens {
		rows[i] = []string{strconv.Itoa(t.ID), t.Token}
	}
	return rows
}

func (r VocabInspectResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d tokens\n", r.Source, r.Size)
	sb.WriteString(FormatTable(r.TableHeaders(), r.TableRows()))
	return strings.TrimRight(sb.String(), "\n")
}

func runVocabInspect(cmd *cobra.Command, path string, opts *vocabInspectOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	var (
		v      *vocab.Vocabulary
		source string
	)
	switch {
	case opts.Object != "":
		ctx, cancel := commandContext(cmd, cliCtx)
		defer cancel()
		client, err := newMinIOClient(cliCtx.Config, cliCtx.Logger)
		if err != nil {
			return err
		}
		defer client.Close()
		v, err = minio.NewVocabularyRepository(client).Get(ctx, opts.Object)
		if err != nil {
			return err
		}
		source = "minio:" + opts.Object
	default:
		if path == "" {
			path = cliCtx.Config.Vocabulary.Path
		}
		if path == "" {
			path = "vocab.json"
		}
		v, err = vocab.LoadFile(path)
		if err != nil {
			return err
		}
		source = path
	}

	tokens := v.Tokens()
	n := len(tokens)
	if opts.Limit > 0 {
		n = min(n, opts.Limit)
	}
	res := VocabInspectResult{Source: source, Size: v.Size(), Tokens: make([]TokenEntry, n)}
	for i := 0; i < n; i++ {
		res.Tokens[i] = TokenEntry{ID: v.ID(tokens[i]), Token: tokens[i]}
	}
	return PrintResult(cmd, res)
}
