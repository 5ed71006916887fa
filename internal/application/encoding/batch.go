package encoding

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/turtacn/SeqPrep/internal/infrastructure/fasta"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Summarize counts results.
func Summarize(results []Result, d time.Duration) BatchSummary {
	sum := BatchSummary{Total: len(results), Duration: d}
	for _, r := range results {
		if r.OK() {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	return sum
}

// EncodeBatch encodes records concurrently.  results[i] always belongs to
// records[i]; a failing record is reported in its Result and does not stop
// the batch.  The returned error is non-nil only when ctx ends first, in
// which case the unfinished records carry a timeout error.
func (s *Service) EncodeBatch(ctx context.Context, records []Record) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(records))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(s.concurrency)
	for i, rec := range records {
		p.Go(func(ctx context.Context) error {
			results[i] = s.EncodeRecord(ctx, rec)
			return nil
		})
	}
	_ = p.Wait()

	d := time.Since(start)
	prometheus.RecordBatch(s.metrics, s.source, len(records), d)
	sum := Summarize(results, d)
	s.logger.Info("batch encoded",
		logging.Int("total", sum.Total),
		logging.Int("failed", sum.Failed),
		logging.Duration("duration", d))

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, errors.CodeTimeout, "batch interrupted")
	}
	return results, nil
}

// RecordsFromFASTA converts FASTA records.  The description and any parsed
// taxonomy ranks become metadata.
func RecordsFromFASTA(recs []fasta.Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		md := map[string]string{}
		if r.Description != "" {
			md["description"] = r.Description
		}
		if t := fasta.ParseTaxonomy(r.ID); !t.IsZero() {
			for k, v := range map[string]string{
				"kingdom": t.Kingdom, "phylum": t.Phylum, "class": t.Class,
				"order": t.Order, "family": t.Family, "genus": t.Genus, "species": t.Species,
			} {
				if v != "" {
					md[k] = v
				}
			}
		}
		if len(md) == 0 {
			md = nil
		}
		out[i] = Record{ID: r.ID, Sequence: r.Sequence, Metadata: md}
	}
	return out
}
