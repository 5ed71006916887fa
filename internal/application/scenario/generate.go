// Package scenario generates pipeline configuration grids and runs them,
// writing the vocabulary, the encoded output and a run report per scenario.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

// Grid spans the cross product of pipeline parameters.
type Grid struct {
	Ks                      []int
	Augmentations           []string
	Paddings                []string
	Truncations             []string
	OptimalLength           int
	Alphabet                []string
	ModificationProbability float64
}

// DefaultGrid is the grid of every augmentation, padding and truncation
// strategy for k ∈ {3,5}.
func DefaultGrid() Grid {
	return Grid{
		Ks:                      []int{3, 5},
		Augmentations:           []string{"base", "random", "identity"},
		Paddings:                []string{"front", "end", "random"},
		Truncations:             []string{"front", "end", "slidingwindow"},
		OptimalLength:           8,
		Alphabet:                []string{"A", "C", "G", "T"},
		ModificationProbability: 0.5,
	}
}

// Scenario is one named configuration of a grid.
type Scenario struct {
	Name   string
	Config *config.Config
}

// Name returns the canonical scenario name k<k>_<aug>_<pad>_<trunc>.
func Name(k int, aug, pad, trunc string) string {
	return fmt.Sprintf("k%d_%s_%s_%s", k, aug, pad, trunc)
}

// Generate returns one scenario per grid point, k varying slowest.
func Generate(g Grid) []Scenario {
	out := make([]Scenario, 0, len(g.Ks)*len(g.Augmentations)*len(g.Paddings)*len(g.Truncations))
	for _, k := range g.Ks {
		for _, aug := range g.Augmentations {
			for _, pad := range g.Paddings {
				for _, trunc := range g.Truncations {
					name := Name(k, aug, pad, trunc)
					cfg := config.Default()
					cfg.Scenario.Name = name
					cfg.Pipeline = config.PipelineConfig{
						Augmentation: config.AugmentationConfig{
							Strategy:                aug,
							Alphabet:                append([]string(nil), g.Alphabet...),
							ModificationProbability: g.ModificationProbability,
						},
						Tokenization: config.TokenizationConfig{Strategy: "kmer", K: k, PaddingSymbol: config.DefaultPaddingSymbol},
						Padding:      config.LengthConfig{Strategy: pad, OptimalLength: g.OptimalLength},
						Truncation:   config.LengthConfig{Strategy: trunc, OptimalLength: g.OptimalLength},
					}
					out = append(out, Scenario{Name: name, Config: cfg})
				}
			}
		}
	}
	return out
}

// fileConfig is the persisted subset of a scenario configuration.
type fileConfig struct {
	Pipeline config.PipelineConfig `yaml:"pipeline"`
	Scenario config.ScenarioConfig `yaml:"scenario"`
}

// WriteAll writes <dir>/<name>.yaml for every scenario and returns the paths
// in input order.
func WriteAll(dir string, scenarios []Scenario) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create scenario directory").WithDetail("dir=" + dir)
	}
	paths := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		data, err := yaml.Marshal(fileConfig{Pipeline: s.Config.Pipeline, Scenario: s.Config.Scenario})
		if err != nil {
			return paths, errors.Wrap(err, errors.CodeSerialization, "failed to marshal scenario").WithDetail("name=" + s.Name)
		}
		path := filepath.Join(dir, s.Name+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errors.Wrap(err, errors.CodeInternal, "failed to write scenario").WithDetail("path=" + path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
