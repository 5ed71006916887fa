package scenario

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/turtacn/SeqPrep/internal/application/encoding"
	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/fasta"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SeqPrep/internal/preprocessing"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

// Run artefact file names.
const (
	VocabularyFile = "vocab.json"
	EncodedFile    = "encoded.jsonl"
	ReportFile     = "run.json"
)

// chunkSize is the number of records encoded between progress updates.
const chunkSize = 256

// ArtifactStore uploads a finished run directory.
type ArtifactStore interface {
	UploadDir(ctx context.Context, run, dir string) ([]string, error)
}

// RunOptions configures Run.
type RunOptions struct {
	// RunsDir overrides the configured scenario.runs_dir.
	RunsDir string
	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
	// Store, when set, receives every artefact of the run.
	Store       ArtifactStore
	Metrics     *prometheus.PipelineMetrics
	Logger      logging.Logger
	Concurrency int
}

// Report is written to run.json.
type Report struct {
	RunID      string            `json:"run_id"`
	Name       string            `json:"name"`
	Dir        string            `json:"dir"`
	Pipeline   map[string]string `json:"pipeline"`
	Vocabulary int               `json:"vocabulary_size"`
	Records    int               `json:"records"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	StartedAt  common.Timestamp  `json:"started_at"`
	DurationMs int64             `json:"duration_ms"`
	Artifacts  []string          `json:"artifacts,omitempty"`
}

// Run loads the configuration at cfgPath and runs it as the scenario named
// after the file.
func Run(ctx context.Context, cfgPath string, opts RunOptions) (*Report, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to load scenario").WithDetail("path=" + cfgPath)
	}
	cfg.Scenario.Name = strings.TrimSuffix(filepath.Base(cfgPath), filepath.Ext(cfgPath))
	return RunConfig(ctx, cfg, cfgPath, opts)
}

// RunAll runs every .yaml, .yml and .json file of dir in name order.  It
// stops at the first failing scenario.
func RunAll(ctx context.Context, dir string, opts RunOptions) ([]*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to read scenario directory").WithDetail("dir=" + dir)
	}
	var paths []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			if !e.IsDir() {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		return nil, errors.InvalidConfig("no scenario files found").WithDetail("dir=" + dir)
	}
	sort.Strings(paths)

	reports := make([]*Report, 0, len(paths))
	for _, p := range paths {
		r, err := Run(ctx, p, opts)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// RunConfig executes cfg.  When cfgPath is non-empty the file is copied into
// the run directory.
func RunConfig(ctx context.Context, cfg *config.Config, cfgPath string, opts RunOptions) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = cfg.Scenario.RunsDir
	}
	dir := filepath.Join(runsDir, cfg.Scenario.Name)
	report := &Report{
		RunID:     common.GenerateID("run"),
		Name:      cfg.Scenario.Name,
		Dir:       dir,
		StartedAt: common.NewTimestamp(),
	}
	logger = logger.Named("scenario").With(logging.String("scenario", report.Name), logging.String("run_id", report.RunID))
	start := time.Now()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create run directory").WithDetail("dir=" + dir)
	}
	if cfgPath != "" {
		if err := copyFile(cfgPath, filepath.Join(dir, filepath.Base(cfgPath))); err != nil {
			return nil, err
		}
	}

	v, err := encoding.BuildKmerVocabulary(cfg.Pipeline)
	if err != nil {
		return nil, err
	}
	if err := v.Save(filepath.Join(dir, VocabularyFile)); err != nil {
		return nil, err
	}
	report.Vocabulary = v.Size()

	pre, err := preprocessing.Build(cfg.Pipeline, v, preprocessing.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	report.Pipeline = pre.Describe()

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = cfg.Worker.Concurrency
	}
	svc := encoding.NewService(pre, cfg.Pipeline,
		encoding.WithConcurrency(concurrency),
		encoding.WithMetrics(opts.Metrics, "scenario"),
		encoding.WithLogger(logger))

	records, err := loadRecords(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	report.Records = len(records)

	if err := encodeToFile(ctx, svc, records, filepath.Join(dir, EncodedFile), opts.Progress, report); err != nil {
		return nil, err
	}
	report.DurationMs = time.Since(start).Milliseconds()

	if err := writeReport(filepath.Join(dir, ReportFile), report); err != nil {
		return nil, err
	}

	if opts.Store != nil {
		keys, err := opts.Store.UploadDir(ctx, report.Name+"/"+report.RunID, dir)
		if err != nil {
			return nil, err
		}
		report.Artifacts = keys
		if err := writeReport(filepath.Join(dir, ReportFile), report); err != nil {
			return nil, err
		}
	}

	logger.Info("scenario finished",
		logging.Int("records", report.Records),
		logging.Int("failed", report.Failed),
		logging.Int64("duration_ms", report.DurationMs))
	return report, nil
}

func loadRecords(sc config.ScenarioConfig) ([]encoding.Record, error) {
	if sc.FastaPath != "" {
		recs, err := fasta.ReadFile(sc.FastaPath)
		if err != nil {
			return nil, err
		}
		return encoding.RecordsFromFASTA(recs), nil
	}
	return []encoding.Record{{ID: "sample", Sequence: sc.SampleSequence}}, nil
}

func encodeToFile(ctx context.Context, svc *encoding.Service, records []encoding.Record, path string, progress io.Writer, report *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create output").WithDetail("path=" + path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	var bar *mpb.Bar
	var p *mpb.Progress
	if progress != nil && len(records) > 0 {
		p = mpb.NewWithContext(ctx, mpb.WithOutput(progress), mpb.WithWidth(60))
		bar = p.AddBar(int64(len(records)),
			mpb.PrependDecorators(
				decor.Name(report.Name+" "),
				decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	var runErr error
	for off := 0; off < len(records); off += chunkSize {
		chunk := records[off:min(off+chunkSize, len(records))]
		results, err := svc.EncodeBatch(ctx, chunk)
		if err != nil {
			runErr = err
			break
		}
		for _, r := range results {
			if r.OK() {
				report.Succeeded++
			} else {
				report.Failed++
			}
			if err := enc.Encode(r); err != nil {
				runErr = errors.Wrap(err, errors.CodeSerialization, "failed to write result")
				break
			}
		}
		if runErr != nil {
			break
		}
		if bar != nil {
			bar.IncrBy(len(chunk))
		}
	}

	if bar != nil {
		if runErr != nil {
			bar.Abort(false)
		}
		p.Wait()
	}
	if runErr != nil {
		return runErr
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to flush output").WithDetail("path=" + path)
	}
	return nil
}

func writeReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal run report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to write run report").WithDetail("path=" + path)
	}
	return nil
}

func copyFile(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "failed to read scenario file").WithDetail("path=" + src)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to copy scenario file").WithDetail("path=" + dst)
	}
	return nil
}
