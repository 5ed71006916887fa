// Package sequence defines the data model that flows through the
// preprocessing pipeline: raw symbol sequences, alphabets, token positions
// and mapped id sequences.  No pipeline logic lives here, only plain types
// that every layer can import.
package sequence

import (
	"strings"
	"unicode/utf8"

	"github.com/turtacn/SeqPrep/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Symbols and sequences
// ─────────────────────────────────────────────────────────────────────────────

// Symbol is one atomic alphabet element.
type Symbol = rune

// Sequence is an ordered, mutable list of symbols.  Augmentation changes its
// length; the slice returned by an edit replaces the one passed in.
type Sequence []Symbol

// FromString converts a raw string into a Sequence, one symbol per rune.
func FromString(raw string) Sequence {
	return Sequence([]rune(raw))
}

// String joins the symbols back into a string.
func (s Sequence) String() string {
	return string(s)
}

// Clone returns an independent copy of s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Alphabet
// ─────────────────────────────────────────────────────────────────────────────

// Alphabet is the set of symbols eligible for random generation, replacement
// and exhaustive vocabulary enumeration.  Order is preserved as configured.
type Alphabet []Symbol

// DNA is the nucleotide alphabet used by default.
var DNA = Alphabet{'A', 'C', 'G', 'T'}

// ParseAlphabet builds an Alphabet from configuration entries.  Each entry
// must be exactly one character, except that a single multi-character entry
// is read as one symbol per character ("ACGT").  Duplicates are dropped.
func ParseAlphabet(entries []string) (Alphabet, error) {
	if len(entries) == 1 && utf8.RuneCountInString(entries[0]) > 1 {
		entries = strings.Split(entries[0], "")
	}
	seen := make(map[Symbol]struct{}, len(entries))
	out := make(Alphabet, 0, len(entries))
	for _, e := range entries {
		if utf8.RuneCountInString(e) != 1 {
			return nil, errors.InvalidConfig("alphabet entries must be single characters").
				WithDetail("entry=" + e)
		}
		r, _ := utf8.DecodeRuneInString(e)
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, errors.InvalidConfig("alphabet must not be empty")
	}
	return out, nil
}

// Strings returns the alphabet as one-character strings.
func (a Alphabet) Strings() []string {
	out := make([]string, len(a))
	for i, s := range a {
		out[i] = string(s)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Tokens
// ─────────────────────────────────────────────────────────────────────────────

// Token is a string of exactly k symbols, or one of the reserved tokens.
type Token = string

const (
	// PadToken fills positions added by padding.
	PadToken Token = "PAD"
	// UnkToken is returned for ids with no registered token.
	UnkToken Token = "UNK"
)

// Position is one slot of a token sequence.  After tokenization it holds
// exactly one token.
type Position []Token

// PadPosition returns a fresh Position holding only PadToken.
func PadPosition() Position {
	return Position{PadToken}
}

// IsPad reports whether p is a single PAD token.
func (p Position) IsPad() bool {
	return len(p) == 1 && p[0] == PadToken
}

// TokenSequence is an ordered sequence of positions.
type TokenSequence []Position

// Len returns the number of positions.
func (ts TokenSequence) Len() int {
	return len(ts)
}

// Flatten returns every token in order, one entry per token.
func (ts TokenSequence) Flatten() []Token {
	out := make([]Token, 0, len(ts))
	for _, p := range ts {
		out = append(out, p...)
	}
	return out
}

// IDSequence is the mapped pipeline output: one inner slice of ids per
// position.
type IDSequence [][]int
