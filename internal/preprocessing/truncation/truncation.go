// Package truncation reduces token sequences to a maximum length.
package truncation

import (
	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// Strategy names as they appear in configuration.
const (
	NameFront         = "front"
	NameEnd           = "end"
	NameSlidingWindow = "slidingwindow"
)

// Strategy truncates a token sequence.  Implementations never add positions
// and always return a new slice.
type Strategy interface {
	Execute(tokens sequence.TokenSequence) sequence.TokenSequence
	Name() string
	Deterministic() bool
	sealed()
}

func checkLength(length int) error {
	if length < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "truncation length must be non-negative, got %d", length)
	}
	return nil
}

func window(tokens sequence.TokenSequence, start, end int) sequence.TokenSequence {
	out := make(sequence.TokenSequence, end-start)
	copy(out, tokens[start:end])
	return out
}

// Front drops positions from the front, keeping the last Length.
type Front struct {
	Length int
}

// NewFront returns a Front strategy truncating to length.
func NewFront(length int) (*Front, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}
	return &Front{Length: length}, nil
}

func (t *Front) Name() string        { return NameFront }
func (t *Front) Deterministic() bool { return true }
func (t *Front) sealed()             {}

// Execute implements Strategy.
func (t *Front) Execute(tokens sequence.TokenSequence) sequence.TokenSequence {
	if len(tokens) <= t.Length {
		return window(tokens, 0, len(tokens))
	}
	return window(tokens, len(tokens)-t.Length, len(tokens))
}

// End drops positions from the end, keeping the first Length.
type End struct {
	Length int
}

// NewEnd returns an End strategy truncating to length.
func NewEnd(length int) (*End, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}
	return &End{Length: length}, nil
}

func (t *End) Name() string        { return NameEnd }
func (t *End) Deterministic() bool { return true }
func (t *End) sealed()             {}

// Execute implements Strategy.
func (t *End) Execute(tokens sequence.TokenSequence) sequence.TokenSequence {
	if len(tokens) <= t.Length {
		return window(tokens, 0, len(tokens))
	}
	return window(tokens, 0, t.Length)
}

// SlidingWindow keeps a contiguous window of min(Length, len) positions
// starting at a uniformly chosen offset.
type SlidingWindow struct {
	Length int
	rng    random.Source
}

// NewSlidingWindow returns a SlidingWindow strategy with the given window
// length.
func NewSlidingWindow(length int, rng random.Source) (*SlidingWindow, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = random.Global()
	}
	return &SlidingWindow{Length: length, rng: rng}, nil
}

func (t *SlidingWindow) Name() string        { return NameSlidingWindow }
func (t *SlidingWindow) Deterministic() bool { return false }
func (t *SlidingWindow) sealed()             {}

// Execute implements Strategy.
func (t *SlidingWindow) Execute(tokens sequence.TokenSequence) sequence.TokenSequence {
	size := min(t.Length, len(tokens))
	start := t.rng.IntN(len(tokens) - size + 1)
	return window(tokens, start, start+size)
}

var (
	_ Strategy = (*Front)(nil)
	_ Strategy = (*End)(nil)
	_ Strategy = (*SlidingWindow)(nil)
)
