package augmentation

import (
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// Strategy names as they appear in configuration.
const (
	NameBase     = "base"
	NameIdentity = "identity"
	NameRandom   = "random"
)

// DefaultMutationProbability is the per-position mutation probability of the
// base strategy.
const DefaultMutationProbability = 0.05

// Strategy transforms a whole sequence.  The set of implementations is
// closed: Base, Identity and Random.
type Strategy interface {
	// Execute returns the augmented sequence.  seq must not be used after
	// the call.
	Execute(seq sequence.Sequence) (sequence.Sequence, error)
	// Name returns the configuration name of the strategy.
	Name() string
	// Deterministic reports whether Execute is free of randomness.
	Deterministic() bool

	sealed()
}

func checkProbability(p float64) error {
	if p < 0 || p > 1 {
		return errors.Newf(errors.CodeInvalidConfig, "modification probability must be within [0,1], got %g", p)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Base
// ─────────────────────────────────────────────────────────────────────────────

type method int

const (
	methodDelete method = iota
	methodInsert
	methodReplace
	methodSwapForward
	methodSwapBackward
)

var methodWeights = [...]struct {
	m method
	w float64
}{
	{methodDelete, 0.25},
	{methodInsert, 0.25},
	{methodReplace, 0.25},
	{methodSwapForward, 0.125},
	{methodSwapBackward, 0.125},
}

// pickMethod maps a uniform u in [0,1) onto the weighted method table.
func pickMethod(u float64) method {
	acc := 0.0
	for _, mw := range methodWeights {
		acc += mw.w
		if u < acc {
			return mw.m
		}
	}
	return methodWeights[len(methodWeights)-1].m
}

// Base makes one left-to-right pass over the sequence, mutating each visited
// position with a fixed probability.  The cursor advance after each mutation
// depends on the method:
//
//	delete                         0
//	insert, replace                +1
//	swap-forward                   +2 (+1 when falling back at the last index)
//	swap-backward                  +1 (+2 when falling back at index 0)
type Base struct {
	mod         *Modifier
	probability float64
}

// BaseOption configures a Base strategy.
type BaseOption func(*Base)

// WithMutationProbability overrides DefaultMutationProbability.
func WithMutationProbability(p float64) BaseOption {
	return func(b *Base) { b.probability = p }
}

// NewBase returns the base augmentation strategy.
func NewBase(mod *Modifier, opts ...BaseOption) (*Base, error) {
	if mod == nil {
		return nil, errors.InvalidConfig("augmentation modifier is nil")
	}
	b := &Base{mod: mod, probability: DefaultMutationProbability}
	for _, opt := range opts {
		opt(b)
	}
	if err := checkProbability(b.probability); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Base) Name() string        { return NameBase }
func (b *Base) Deterministic() bool { return b.probability == 0 }
func (b *Base) sealed()             {}

// Execute implements Strategy.
func (b *Base) Execute(seq sequence.Sequence) (sequence.Sequence, error) {
	if len(seq) == 0 {
		return sequence.Sequence{b.mod.randomSymbol()}, nil
	}

	var err error
	idx := 0
	for idx < len(seq) {
		if b.mod.rng.Float64() >= b.probability {
			idx++
			continue
		}

		advance := 1
		switch pickMethod(b.mod.rng.Float64()) {
		case methodDelete:
			seq, err = b.mod.Delete(seq, idx)
			advance = 0
		case methodInsert:
			seq, err = b.mod.Insert(seq, idx)
		case methodReplace:
			seq, err = b.mod.Replace(seq, idx)
		case methodSwapForward:
			if idx < len(seq)-1 {
				seq, err = b.mod.swapForward(seq, idx)
				advance = 2
			} else {
				seq, err = b.mod.swapBackward(seq, idx)
			}
		case methodSwapBackward:
			if idx > 0 {
				seq, err = b.mod.swapBackward(seq, idx)
			} else {
				seq, err = b.mod.swapForward(seq, idx)
				advance = 2
			}
		}
		if err != nil {
			return nil, err
		}
		idx += advance
	}

	if len(seq) == 0 {
		return sequence.Sequence{b.mod.randomSymbol()}, nil
	}
	return seq, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Identity
// ─────────────────────────────────────────────────────────────────────────────

// Identity returns its input unchanged.
type Identity struct{}

// NewIdentity returns the identity strategy.
func NewIdentity() *Identity { return &Identity{} }

func (Identity) Name() string        { return NameIdentity }
func (Identity) Deterministic() bool { return true }
func (Identity) sealed()             {}

// Execute implements Strategy.
func (Identity) Execute(seq sequence.Sequence) (sequence.Sequence, error) {
	return seq, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Random
// ─────────────────────────────────────────────────────────────────────────────

// Random visits each position and, with the configured probability, applies
// one of the Modifier primitives chosen uniformly.  Delete re-examines the
// cursor; every other primitive advances it by one.
type Random struct {
	mod         *Modifier
	probability float64
}

// NewRandom returns the random augmentation strategy.
func NewRandom(mod *Modifier, probability float64) (*Random, error) {
	if mod == nil {
		return nil, errors.InvalidConfig("augmentation modifier is nil")
	}
	if err := checkProbability(probability); err != nil {
		return nil, err
	}
	return &Random{mod: mod, probability: probability}, nil
}

func (r *Random) Name() string        { return NameRandom }
func (r *Random) Deterministic() bool { return r.probability == 0 }
func (r *Random) sealed()             {}

// Execute implements Strategy.
func (r *Random) Execute(seq sequence.Sequence) (sequence.Sequence, error) {
	if len(seq) == 0 {
		return sequence.Sequence{r.mod.randomSymbol()}, nil
	}

	var err error
	idx := 0
	for idx < len(seq) {
		if r.mod.rng.Float64() >= r.probability {
			idx++
			continue
		}
		switch r.mod.rng.IntN(4) {
		case 0:
			seq, err = r.mod.Insert(seq, idx)
			idx++
		case 1:
			seq, err = r.mod.Replace(seq, idx)
			idx++
		case 2:
			seq, err = r.mod.Delete(seq, idx)
		default:
			seq, err = r.mod.Swap(seq, idx)
			idx++
		}
		if err != nil {
			return nil, err
		}
	}

	if len(seq) == 0 {
		return sequence.Sequence{r.mod.randomSymbol()}, nil
	}
	return seq, nil
}

var (
	_ Strategy = (*Base)(nil)
	_ Strategy = (*Identity)(nil)
	_ Strategy = (*Random)(nil)
)
