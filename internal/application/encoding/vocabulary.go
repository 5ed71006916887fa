package encoding

import (
	"context"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// VocabularyStore fetches a persisted vocabulary by name.
type VocabularyStore interface {
	Get(ctx context.Context, name string) (*vocab.Vocabulary, error)
}

// LoadVocabulary resolves cfg.Vocabulary: "file" reads Path, "minio" fetches
// Object from store, anything else enumerates every k-mer over the pipeline
// alphabet.
func LoadVocabulary(ctx context.Context, cfg *config.Config, store VocabularyStore) (*vocab.Vocabulary, error) {
	switch cfg.Vocabulary.Source {
	case "file":
		return vocab.LoadFile(cfg.Vocabulary.Path)
	case "minio":
		if store == nil {
			return nil, errors.InvalidConfig("vocabulary store not configured").WithDetail("source=minio")
		}
		return store.Get(ctx, cfg.Vocabulary.Object)
	default:
		return BuildKmerVocabulary(cfg.Pipeline)
	}
}

// BuildKmerVocabulary enumerates the k-mers of the pipeline alphabet.
func BuildKmerVocabulary(p config.PipelineConfig) (*vocab.Vocabulary, error) {
	alphabet, err := sequence.ParseAlphabet(p.Augmentation.Alphabet)
	if err != nil {
		return nil, err
	}
	return vocab.BuildKmer(p.Tokenization.K, alphabet)
}
