// Package augmentation implements stochastic sequence augmentation: the
// single-symbol edit primitives of Modifier and the full-sequence strategies
// built on them.
package augmentation

import (
	"slices"

	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// Modifier applies index-scoped single-symbol edits.  Every edit validates
// idx against the current length and returns the edited sequence, which
// replaces the argument; the argument must not be used afterwards.
type Modifier struct {
	alphabet sequence.Alphabet
	rng      random.Source
}

// NewModifier returns a Modifier drawing replacement symbols from alphabet.
func NewModifier(alphabet sequence.Alphabet, rng random.Source) (*Modifier, error) {
	if len(alphabet) == 0 {
		return nil, errors.InvalidConfig("augmentation alphabet must not be empty")
	}
	if rng == nil {
		rng = random.Global()
	}
	return &Modifier{alphabet: alphabet, rng: rng}, nil
}

// Alphabet returns the symbols the modifier draws from.
func (m *Modifier) Alphabet() sequence.Alphabet {
	return m.alphabet
}

func (m *Modifier) randomSymbol() sequence.Symbol {
	return m.alphabet[m.rng.IntN(len(m.alphabet))]
}

func checkIndex(seq sequence.Sequence, idx int) error {
	if idx < 0 || idx >= len(seq) {
		return errors.IndexOutOfRange(idx, len(seq))
	}
	return nil
}

// Insert adds a random symbol directly before or after seq[idx], choosing
// the side uniformly.
func (m *Modifier) Insert(seq sequence.Sequence, idx int) (sequence.Sequence, error) {
	if err := checkIndex(seq, idx); err != nil {
		return seq, err
	}
	at := idx + m.rng.IntN(2)
	return slices.Insert(seq, at, m.randomSymbol()), nil
}

// Replace overwrites seq[idx] with a random symbol.
func (m *Modifier) Replace(seq sequence.Sequence, idx int) (sequence.Sequence, error) {
	if err := checkIndex(seq, idx); err != nil {
		return seq, err
	}
	seq[idx] = m.randomSymbol()
	return seq, nil
}

// Delete removes seq[idx].
func (m *Modifier) Delete(seq sequence.Sequence, idx int) (sequence.Sequence, error) {
	if err := checkIndex(seq, idx); err != nil {
		return seq, err
	}
	return slices.Delete(seq, idx, idx+1), nil
}

// Swap exchanges seq[idx] with one of its existing neighbours, chosen
// uniformly when both exist.  A length-1 sequence is left unchanged.
func (m *Modifier) Swap(seq sequence.Sequence, idx int) (sequence.Sequence, error) {
	if err := checkIndex(seq, idx); err != nil {
		return seq, err
	}
	var neighbours [2]int
	n := 0
	if idx > 0 {
		neighbours[n] = idx - 1
		n++
	}
	if idx < len(seq)-1 {
		neighbours[n] = idx + 1
		n++
	}
	if n == 0 {
		return seq, nil
	}
	j := neighbours[m.rng.IntN(n)]
	seq[idx], seq[j] = seq[j], seq[idx]
	return seq, nil
}

// swapForward exchanges seq[idx] and seq[idx+1] when the latter exists.
func (m *Modifier) swapForward(seq sequence.Sequence, idx int) (sequence.Sequence, error) {
	if err := checkIndex(seq, idx); err != nil {
		return seq, err
	}
	if idx+1 < len(seq) {
		seq[idx], seq[idx+1] = seq[idx+1], seq[idx]
	}
	return seq, nil
}

// swapBackward exchanges seq[idx] and seq[idx-1] when the latter exists.
func (m *Modifier) swapBackward(seq sequence.Sequence, idx int) (sequence.Sequence, error) {
	if err := checkIndex(seq, idx); err != nil {
		return seq, err
	}
	if idx > 0 {
		seq[idx], seq[idx-1] = seq[idx-1], seq[idx]
	}
	return seq, nil
}
