package pipeline

import (
	"context"
	"fmt"

	"github.com/heimdex/reeldate/internal/discrepancy"
	"github.com/heimdex/reeldate/internal/media"
)

// Analyze reports date-source skew for the selected clips, one report per
// name prefix. It never writes to the catalog.
func (r *Runner) Analyze(ctx context.Context) ([]discrepancy.Report, error) {
	clips, _, err := r.clips(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]media.Record, 0, len(clips))
	for _, clip := range clips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.record(ctx, clip)
		if err != nil {
			r.logger.Debug("file times unavailable", "clip_id", clip.ID, "error", err)
		}
		r.fillCreated(ctx, &rec)
		records = append(records, rec)
	}

	reports := discrepancy.NewAnalyzer(r.engine).Analyze(records, func(rec media.Record) string {
		return media.PrefixKey(rec.Name)
	})
	r.logger.Info("analysis completed", "clips", len(records), "groups", len(reports))
	return reports, nil
}

// Prefixes lists the distinct name prefixes across the whole catalog,
// ignoring the runner's filter.
func (r *Runner) Prefixes(ctx context.Context) ([]string, error) {
	clips, err := r.catalog.ListClips(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	names := make([]string, len(clips))
	for i, c := range clips {
		names[i] = c.Name
	}
	return media.Prefixes(names), nil
}
