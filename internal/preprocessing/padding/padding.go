// Package padding extends token sequences to a minimum length with PAD
// positions.
package padding

import (
	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// Strategy names as they appear in configuration.
const (
	NameFront  = "front"
	NameEnd    = "end"
	NameRandom = "random"
)

// Strategy pads a token sequence.  Implementations never remove or reorder
// existing positions and always return a new slice.
type Strategy interface {
	Execute(tokens sequence.TokenSequence) sequence.TokenSequence
	Name() string
	Deterministic() bool
	sealed()
}

func checkLength(length int) error {
	if length < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "padding length must be non-negative, got %d", length)
	}
	return nil
}

// pad returns tokens surrounded by front and back PAD positions.
func pad(tokens sequence.TokenSequence, front, back int) sequence.TokenSequence {
	out := make(sequence.TokenSequence, 0, front+len(tokens)+back)
	for i := 0; i < front; i++ {
		out = append(out, sequence.PadPosition())
	}
	out = append(out, tokens...)
	for i := 0; i < back; i++ {
		out = append(out, sequence.PadPosition())
	}
	return out
}

func missing(tokens sequence.TokenSequence, length int) int {
	if n := length - len(tokens); n > 0 {
		return n
	}
	return 0
}

// Front prepends PAD positions.
type Front struct {
	Length int
}

// NewFront returns a Front strategy padding to length.
func NewFront(length int) (*Front, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}
	return &Front{Length: length}, nil
}

func (p *Front) Name() string        { return NameFront }
func (p *Front) Deterministic() bool { return true }
func (p *Front) sealed()             {}

// Execute implements Strategy.
func (p *Front) Execute(tokens sequence.TokenSequence) sequence.TokenSequence {
	return pad(tokens, missing(tokens, p.Length), 0)
}

// End appends PAD positions.
type End struct {
	Length int
}

// NewEnd returns an End strategy padding to length.
func NewEnd(length int) (*End, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}
	return &End{Length: length}, nil
}

func (p *End) Name() string        { return NameEnd }
func (p *End) Deterministic() bool { return true }
func (p *End) sealed()             {}

// Execute implements Strategy.
func (p *End) Execute(tokens sequence.TokenSequence) sequence.TokenSequence {
	return pad(tokens, 0, missing(tokens, p.Length))
}

// Random splits the PAD positions between both ends; the number placed in
// front is uniform over [0, missing].
type Random struct {
	Length int
	rng    random.Source
}

// NewRandom returns a Random strategy padding to length.
func NewRandom(length int, rng random.Source) (*Random, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = random.Global()
	}
	return &Random{Length: length, rng: rng}, nil
}

func (p *Random) Name() string        { return NameRandom }
func (p *Random) Deterministic() bool { return false }
func (p *Random) sealed()             {}

// Execute implements Strategy.
func (p *Random) Execute(tokens sequence.TokenSequence) sequence.TokenSequence {
	n := missing(tokens, p.Length)
	if n == 0 {
		return pad(tokens, 0, 0)
	}
	front := p.rng.IntN(n + 1)
	return pad(tokens, front, n-front)
}

var (
	_ Strategy = (*Front)(nil)
	_ Strategy = (*End)(nil)
	_ Strategy = (*Random)(nil)
)
