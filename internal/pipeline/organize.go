package pipeline

import (
	"context"

	"github.com/heimdex/reeldate/internal/clustering"
	"github.com/heimdex/reeldate/internal/host"
	"github.com/heimdex/reeldate/internal/logging"
	"github.com/heimdex/reeldate/internal/media"
)

// Top-level bins Organize files clips into.
const (
	BinVideos   = "Videos"
	BinPictures = "Pictures"
	BinMusic    = "Music"
)

// Organize files videos into Videos/<day bin> by their resolved capture
// date, images into Pictures and audio into Music. Anything else stays put.
func (r *Runner) Organize(ctx context.Context) (*OrganizeStats, error) {
	stats := &OrganizeStats{DryRun: r.opts.DryRun}

	clips, filtered, err := r.clips(ctx)
	if err != nil {
		return nil, err
	}
	stats.FilteredOut = filtered

	r.logger.Info("organize started",
		"clips", len(clips),
		"threshold", r.opts.Threshold,
		"max_span_days", r.opts.MaxSpanDays,
		"dry_run", r.opts.DryRun,
	)

	var (
		dated    []clustering.Dated
		pictures []string
		music    []string
	)
	for _, clip := range clips {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		log := logging.WithClip(r.logger, clip.ID, clip.Name)
		stats.TotalScanned++

		rec, err := r.record(ctx, clip)
		if rec.Path == "" {
			stats.NoPath++
			log.Warn("skipping clip without a file path", "error", err)
			continue
		}

		switch media.KindOf(rec.Path) {
		case media.KindVideo:
			if err != nil {
				log.Debug("file times unavailable", "error", err)
			}
			r.fillCreated(ctx, &rec)
			res, err := r.engine.Resolve(rec)
			if err != nil {
				stats.NoDate++
				log.Warn("no date resolved", "error", err)
				continue
			}
			dated = append(dated, clustering.Dated{Record: rec, Instant: res.Instant})
		case media.KindImage:
			pictures = append(pictures, clip.ID)
		case media.KindAudio:
			music = append(music, clip.ID)
		default:
			stats.Other++
		}
	}

	root, err := r.catalog.RootBin(ctx)
	if err != nil {
		return stats, err
	}

	groups := clustering.Cluster(clustering.Buckets(dated), r.opts.Clustering())
	names := clustering.BinNames(groups)
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Videos += r.file(ctx, root, []string{BinVideos, names[i]}, recordIDs(g.Records()), stats)
	}
	stats.Pictures = r.file(ctx, root, []string{BinPictures}, pictures, stats)
	stats.Music = r.file(ctx, root, []string{BinMusic}, music, stats)

	r.logger.Info("organize completed",
		"scanned", stats.TotalScanned,
		"videos", stats.Videos,
		"day_bins", len(groups),
		"pictures", stats.Pictures,
		"music", stats.Music,
	)
	return stats, nil
}

// file moves ids into the bin at path below root, creating bins as needed,
// and returns how many clips were moved.
func (r *Runner) file(ctx context.Context, root host.Bin, path []string, ids []string, stats *OrganizeStats) int {
	if len(ids) == 0 {
		return 0
	}
	stats.Bins = append(stats.Bins, BinMove{Path: path, Clips: len(ids)})
	if r.opts.DryRun {
		return len(ids)
	}

	bin := root
	for _, name := range path {
		next, err := r.catalog.GetOrCreateBin(ctx, bin.ID, name)
		if err != nil {
			stats.MoveFailed += len(ids)
			r.logger.Warn("cannot create bin", "bin", name, "error", err)
			return 0
		}
		bin = next
	}

	if err := r.catalog.Move(ctx, ids, bin.ID); err != nil {
		stats.MoveFailed += len(ids)
		r.logger.Warn("move failed", "bin", bin.Name, "clips", len(ids), "error", err)
		return 0
	}
	return len(ids)
}

// fillCreated falls back to the host's Date Created when the file gave no
// creation time.
func (r *Runner) fillCreated(ctx context.Context, rec *media.Record) {
	if rec.HasCreated() {
		return
	}
	if t, ok := r.dateCreated(ctx, rec.ClipID); ok {
		rec.Created = t
	}
}

func recordIDs(records []media.Record) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ClipID
	}
	return ids
}
