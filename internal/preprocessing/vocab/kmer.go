package vocab

import (
	"sort"
	"strconv"

	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// KmerConstructor registers every length-K string over Alphabet, in sorted
// order.  It is exhaustive and ignores the data passed to Build.
type KmerConstructor struct {
	K        int
	Alphabet sequence.Alphabet
}

// NewKmerConstructor validates k and alphabet.
func NewKmerConstructor(k int, alphabet sequence.Alphabet) (*KmerConstructor, error) {
	c := &KmerConstructor{K: k, Alphabet: alphabet}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *KmerConstructor) validate() error {
	if c.K <= 0 {
		return errors.InvalidConfig("k-mer size must be positive").WithDetail(detailK(c.K))
	}
	if len(c.Alphabet) == 0 {
		return errors.InvalidConfig("k-mer alphabet must not be empty")
	}
	return nil
}

// Build adds all |Alphabet|^K k-mers to v.
func (c *KmerConstructor) Build(_ []string, v *Vocabulary) error {
	if err := c.validate(); err != nil {
		return err
	}
	for _, kmer := range c.Kmers() {
		v.AddToken(kmer)
	}
	return nil
}

// Kmers enumerates the cartesian product Alphabet^K in sorted order.
func (c *KmerConstructor) Kmers() []string {
	if c.K <= 0 || len(c.Alphabet) == 0 {
		return nil
	}
	total := 1
	for i := 0; i < c.K; i++ {
		total *= len(c.Alphabet)
	}
	out := make([]string, 0, total)
	idx := make([]int, c.K)
	buf := make([]rune, c.K)
	for {
		for i, j := range idx {
			buf[i] = c.Alphabet[j]
		}
		out = append(out, string(buf))

		// odometer increment, rightmost digit fastest
		pos := c.K - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(c.Alphabet) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	sort.Strings(out)
	return out
}

// BuildKmer returns a new vocabulary populated by a KmerConstructor.
func BuildKmer(k int, alphabet sequence.Alphabet) (*Vocabulary, error) {
	c, err := NewKmerConstructor(k, alphabet)
	if err != nil {
		return nil, err
	}
	v := New()
	if err := v.BuildFromConstructor(c, nil); err != nil {
		return nil, err
	}
	return v, nil
}

func detailK(k int) string {
	return "k=" + strconv.Itoa(k)
}
