// Package tokenization splits symbol sequences into token positions.
package tokenization

import (
	"strconv"

	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// NameKmer is the configuration name of the k-mer strategy.
const NameKmer = "kmer"

// DefaultFiller is appended to make a sequence length divisible by k.
const DefaultFiller sequence.Symbol = 'N'

// Strategy turns a sequence into a token sequence.  Kmer is the only
// implementation.
type Strategy interface {
	Execute(seq sequence.Sequence) (sequence.TokenSequence, error)
	Name() string
	sealed()
}

// Kmer chunks a sequence into consecutive, non-overlapping k-symbol tokens,
// right-padding with Filler so that the last chunk is complete.
type Kmer struct {
	K      int
	Filler sequence.Symbol
}

// NewKmer validates k and returns a Kmer strategy.  A zero filler selects
// DefaultFiller.
func NewKmer(k int, filler sequence.Symbol) (*Kmer, error) {
	if filler == 0 {
		filler = DefaultFiller
	}
	km := &Kmer{K: k, Filler: filler}
	if err := km.validate(); err != nil {
		return nil, err
	}
	return km, nil
}

func (km *Kmer) validate() error {
	if km.K <= 0 {
		return errors.InvalidConfig("k-mer size must be positive").WithDetail("k=" + strconv.Itoa(km.K))
	}
	return nil
}

func (km *Kmer) Name() string { return NameKmer }
func (km *Kmer) sealed()      {}

// MakeDivisible returns seq extended with fillers to a multiple of K.  An
// empty sequence stays empty.  The input is not modified.
func (km *Kmer) MakeDivisible(seq sequence.Sequence) sequence.Sequence {
	out := seq.Clone()
	if km.K <= 0 {
		return out
	}
	if rem := len(out) % km.K; rem != 0 {
		for i := 0; i < km.K-rem; i++ {
			out = append(out, km.Filler)
		}
	}
	return out
}

// Execute implements Strategy.
func (km *Kmer) Execute(seq sequence.Sequence) (sequence.TokenSequence, error) {
	if err := km.validate(); err != nil {
		return nil, err
	}
	padded := km.MakeDivisible(seq)
	tokens := make(sequence.TokenSequence, 0, len(padded)/km.K)
	for i := 0; i < len(padded); i += km.K {
		tokens = append(tokens, sequence.Position{string(padded[i : i+km.K])})
	}
	return tokens, nil
}

var _ Strategy = (*Kmer)(nil)
