package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/preprocessing"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// IdentityPipeline is a deterministic DNA pipeline: no augmentation, k=3,
// end padding and front truncation to length.
func IdentityPipeline(length int) config.PipelineConfig {
	return config.PipelineConfig{
		Augmentation: config.AugmentationConfig{Strategy: "identity", Alphabet: []string{"A", "C", "G", "T"}},
		Tokenization: config.TokenizationConfig{Strategy: "kmer", K: 3, PaddingSymbol: "N"},
		Padding:      config.LengthConfig{Strategy: "end", OptimalLength: length},
		Truncation:   config.LengthConfig{Strategy: "front", OptimalLength: length},
	}
}

// NewPreprocessor builds cfg over the exhaustive DNA k-mer vocabulary.
func NewPreprocessor(t testing.TB, cfg config.PipelineConfig) *preprocessing.Preprocessor {
	t.Helper()
	v, err := vocab.BuildKmer(cfg.Tokenization.K, sequence.DNA)
	require.NoError(t, err)
	pre, err := preprocessing.Build(cfg, v)
	require.NoError(t, err)
	return pre
}

// FASTARecord is one entry written by WriteFASTA.
type FASTARecord struct {
	Header   string
	Sequence string
}

// WriteFASTA writes records to dir/name, wrapping sequences at 60 columns,
// and returns the path.
func WriteFASTA(t testing.TB, dir, name string, records ...FASTARecord) string {
	t.Helper()
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(">" + r.Header + "\n")
		for s := r.Sequence; len(s) > 0; {
			n := min(60, len(s))
			sb.WriteString(s[:n] + "\n")
			s = s[n:]
		}
	}
	return WriteFile(t, dir, name, sb.String())
}

// WriteFile writes body to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
