// Package vocab implements the bidirectional token↔id vocabulary used to map
// token sequences to integer ids, together with the constructors that
// populate it.
//
// A Vocabulary is built once (single writer) and then shared read-only by
// any number of concurrent pipeline calls.  AddToken must not run
// concurrently with reads.
package vocab

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

const (
	// PadID is the id reserved for sequence.PadToken.
	PadID = 0
	// UnkID is the id reserved for sequence.UnkToken.
	UnkID = 1
)

// Vocabulary maps tokens to dense ids and back.
type Vocabulary struct {
	tokenToID map[string]int
	idToToken map[int]string
	nextID    int
}

// New returns a vocabulary holding only the reserved PAD and UNK tokens.
func New() *Vocabulary {
	v := &Vocabulary{
		tokenToID: make(map[string]int),
		idToToken: make(map[int]string),
	}
	v.AddToken(sequence.PadToken)
	v.AddToken(sequence.UnkToken)
	return v
}

// AddToken registers token if unseen and returns its id.  Calling it again
// with the same token is a no-op.
func (v *Vocabulary) AddToken(token string) int {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	id := v.nextID
	v.tokenToID[token] = id
	v.idToToken[id] = token
	v.nextID++
	return id
}

// ID returns the id of token, or UnkID when the token is not registered.
func (v *Vocabulary) ID(token string) int {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	return UnkID
}

// Token returns the token registered under id, or "UNK".
func (v *Vocabulary) Token(id int) string {
	if tok, ok := v.idToToken[id]; ok {
		return tok
	}
	return sequence.UnkToken
}

// Contains reports whether token is registered.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.tokenToID[token]
	return ok
}

// Size returns the number of registered tokens, reserved ones included.
func (v *Vocabulary) Size() int {
	return len(v.tokenToID)
}

// Tokens returns every registered token ordered by id.
func (v *Vocabulary) Tokens() []string {
	ids := make([]int, 0, len(v.idToToken))
	for id := range v.idToToken {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = v.idToToken[id]
	}
	return out
}

// MapSentence maps every token of every position to its id, preserving the
// shape of tokens.
func (v *Vocabulary) MapSentence(tokens sequence.TokenSequence) sequence.IDSequence {
	out := make(sequence.IDSequence, len(tokens))
	for i, pos := range tokens {
		ids := make([]int, len(pos))
		for j, tok := range pos {
			ids[j] = v.ID(tok)
		}
		out[i] = ids
	}
	return out
}

// Decode is the inverse of MapSentence.
func (v *Vocabulary) Decode(ids sequence.IDSequence) sequence.TokenSequence {
	out := make(sequence.TokenSequence, len(ids))
	for i, pos := range ids {
		toks := make(sequence.Position, len(pos))
		for j, id := range pos {
			toks[j] = v.Token(id)
		}
		out[i] = toks
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────────────────────────────────────────

// WriteTo encodes the token→id map as an indented JSON object.
func (v *Vocabulary) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(v.tokenToID, "", "    ")
	if err != nil {
		return 0, errors.Persistence(err, "failed to encode vocabulary")
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), errors.Persistence(err, "failed to write vocabulary")
	}
	return int64(n), nil
}

// ReadFrom replaces the vocabulary with the JSON token→id map read from r and
// rebuilds the inverse map.  On failure the vocabulary is left unchanged.
func (v *Vocabulary) ReadFrom(r io.Reader) (int64, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(r)
	if err != nil {
		return n, errors.Persistence(err, "failed to read vocabulary")
	}
	var tokenToID map[string]int
	if err := json.Unmarshal(buf.Bytes(), &tokenToID); err != nil {
		return n, errors.Persistence(err, "failed to decode vocabulary")
	}
	idToToken := make(map[int]string, len(tokenToID))
	next := 0
	for tok, id := range tokenToID {
		if id < 0 {
			return n, errors.Persistence(nil, "vocabulary id is negative").WithDetail("token=" + tok)
		}
		if prev, dup := idToToken[id]; dup {
			return n, errors.Persistence(nil, "vocabulary id assigned twice").
				WithDetail("tokens=" + prev + "," + tok)
		}
		idToToken[id] = tok
		if id >= next {
			next = id + 1
		}
	}
	v.tokenToID = tokenToID
	v.idToToken = idToToken
	v.nextID = next
	return n, nil
}

// Save writes the vocabulary to path, creating parent directories.
func (v *Vocabulary) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Persistence(err, "failed to create vocabulary directory").WithDetail("path=" + path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Persistence(err, "failed to create vocabulary file").WithDetail("path=" + path)
	}
	if _, err := v.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Persistence(err, "failed to close vocabulary file").WithDetail("path=" + path)
	}
	return nil
}

// Load replaces the vocabulary with the one stored at path.
func (v *Vocabulary) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Persistence(err, "failed to open vocabulary file").WithDetail("path=" + path)
	}
	defer f.Close()
	if _, err := v.ReadFrom(f); err != nil {
		var ae *errors.AppError
		if stderrors.As(err, &ae) {
			return ae.WithDetail("path=" + path)
		}
		return err
	}
	return nil
}

// LoadFile returns a new vocabulary read from path.
func LoadFile(path string) (*Vocabulary, error) {
	v := New()
	if err := v.Load(path); err != nil {
		return nil, err
	}
	return v, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

// Constructor populates a vocabulary from data.
type Constructor interface {
	Build(data []string, v *Vocabulary) error
}

// BuildFromConstructor delegates population of v to c.  Exhaustive
// constructors ignore data.
func (v *Vocabulary) BuildFromConstructor(c Constructor, data []string) error {
	if c == nil {
		return errors.New(errors.CodeConstruction, "vocabulary constructor is nil")
	}
	return c.Build(data, v)
}
