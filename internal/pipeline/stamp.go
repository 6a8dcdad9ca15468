package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/heimdex/reeldate/internal/host"
	"github.com/heimdex/reeldate/internal/logging"
	"github.com/heimdex/reeldate/internal/media"
	"github.com/heimdex/reeldate/internal/resolve"
	"github.com/heimdex/reeldate/internal/timecode"
)

// Stamp resolves a capture date for every selected clip and writes it as
// Start TC and Scene. Per-clip failures are counted and the run continues;
// only a catalog listing failure or cancellation ends it early.
func (r *Runner) Stamp(ctx context.Context) (*Stats, error) {
	stats := &Stats{DryRun: r.opts.DryRun}

	clips, filtered, err := r.clips(ctx)
	if err != nil {
		return nil, err
	}
	stats.FilteredOut = filtered

	projectRate, projectDrop := r.projectRate(ctx)
	drop := r.opts.DropFrame || projectDrop

	r.logger.Info("stamp started",
		"clips", len(clips),
		"mode", r.opts.Mode,
		"fallback", r.opts.Fallback,
		"project_rate", projectRate,
		"drop_frame", drop,
		"dry_run", r.opts.DryRun,
	)

	for _, clip := range clips {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		r.stampClip(ctx, clip, projectRate, drop, stats)
	}

	r.logger.Info("stamp completed",
		"scanned", stats.TotalScanned,
		"start_tc_updated", stats.StartTCUpdated,
		"scene_updated", stats.SceneUpdated,
	)
	return stats, nil
}

func (r *Runner) stampClip(ctx context.Context, clip host.Clip, projectRate float64, drop bool, stats *Stats) {
	log := logging.WithClip(r.logger, clip.ID, clip.Name)
	stats.TotalScanned++

	if r.skipInTimeline(ctx, clip, stats, log) {
		return
	}

	rec, err := r.record(ctx, clip)
	switch {
	case errors.Is(err, errNoPath):
		stats.FailedNoPath++
		log.Warn("skipping clip", "error", err)
		return
	case err != nil && rec.Path == "":
		stats.FailedOther++
		log.Warn("skipping clip", "error", err)
		return
	case err != nil:
		log.Warn("file times unavailable", "error", err)
	}
	r.fillCreated(ctx, &rec)

	res, err := r.resolveCounted(rec, stats)
	if err != nil {
		stats.FailedOther++
		log.Warn("no date resolved", "error", err)
		return
	}
	log.Debug("date resolved", "instant", res.Instant, "source", res.Label())

	if r.opts.UpdateStartTC {
		r.stampStartTC(ctx, clip, res, projectRate, drop, stats, log)
	}
	if r.opts.UpdateScene {
		r.stampScene(ctx, clip, res, stats, log)
	}
}

// resolveCounted resolves rec and tallies which sources were tried.
func (r *Runner) resolveCounted(rec media.Record, stats *Stats) (resolve.ResolvedDate, error) {
	res, err := r.engine.Resolve(rec)
	policy := r.engine.Policy()

	if policy.Mode == resolve.ModeEarliest {
		if err == nil {
			stats.EarliestResolved++
		}
		return res, err
	}

	usedFallback := true
	if policy.ParseFilename {
		stats.FilenameAttempts++
		if err == nil && res.Source == resolve.SourceFilename {
			stats.FilenameSuccess++
			usedFallback = false
		} else {
			stats.FilenameFailed++
		}
	}
	if usedFallback {
		if policy.Fallback == resolve.SourceModification {
			stats.ModificationAttempts++
			if err == nil {
				stats.ModificationSuccess++
			}
		} else {
			stats.CreationAttempts++
			if err == nil {
				stats.CreationSuccess++
			}
		}
	}
	return res, err
}

func (r *Runner) stampStartTC(ctx context.Context, clip host.Clip, res resolve.ResolvedDate, projectRate float64, drop bool, stats *Stats, log *slog.Logger) {
	old, err := r.catalog.ReadProperty(ctx, clip.ID, host.PropStartTC)
	if err != nil {
		stats.FailedSetStartTC++
		log.Warn("cannot read Start TC", "error", err)
		return
	}
	if r.opts.UpdateOnlyEmpty && !host.IsEmptyTimecode(old) {
		stats.SkippedStartTCSet++
		log.Debug("Start TC already set", "value", old)
		return
	}

	rate, err := r.clipRate(ctx, clip.ID, projectRate)
	if err != nil {
		stats.FailedFrameRate++
		log.Warn("no usable frame rate", "error", err)
		return
	}
	tc, err := timecode.Encode(res.Instant, rate, drop)
	if err != nil {
		stats.FailedFrameRate++
		log.Warn("cannot encode timecode", "rate", rate, "error", err)
		return
	}

	if r.opts.BackupStartTC && !host.IsEmptyTimecode(old) {
		if err := r.write(ctx, clip, host.PropSlateTC, "", old, "", stats); err != nil {
			stats.TCBackupFailed++
			log.Warn("Start TC backup failed", "error", err)
		} else {
			stats.TCBackupSuccess++
		}
	}

	if err := r.write(ctx, clip, host.PropStartTC, old, tc, res.Label(), stats); err != nil {
		stats.FailedSetStartTC++
		log.Warn("Start TC write failed", "value", tc, "error", err)
		return
	}
	stats.StartTCUpdated++
	stats.StartTCFrom.add(res.Source)
	log.Info("Start TC set", "value", tc, "source", res.Label(), "rate", rate)
}

func (r *Runner) stampScene(ctx context.Context, clip host.Clip, res resolve.ResolvedDate, stats *Stats, log *slog.Logger) {
	old, err := r.catalog.ReadProperty(ctx, clip.ID, host.PropScene)
	if err != nil {
		stats.FailedSetScene++
		log.Warn("cannot read Scene", "error", err)
		return
	}
	if r.opts.UpdateOnlyEmpty && !host.IsEmptyScene(old) {
		stats.SkippedSceneSet++
		log.Debug("Scene already set", "value", old)
		return
	}

	scene := res.Instant.Format(r.opts.SceneLayout())
	if err := r.write(ctx, clip, host.PropScene, old, scene, res.Label(), stats); err != nil {
		stats.FailedSetScene++
		log.Warn("Scene write failed", "value", scene, "error", err)
		return
	}
	stats.SceneUpdated++
	stats.SceneFrom.add(res.Source)
	log.Info("Scene set", "value", scene, "source", res.Label())
}

// Restore copies Slate TC back into Start TC for every selected clip whose
// Slate TC holds a valid timecode.
func (r *Runner) Restore(ctx context.Context) (*Stats, error) {
	stats := &Stats{DryRun: r.opts.DryRun}

	clips, filtered, err := r.clips(ctx)
	if err != nil {
		return nil, err
	}
	stats.FilteredOut = filtered

	r.logger.Info("restore started",
		"clips", len(clips),
		"only_empty", r.opts.RestoreOnlyEmpty,
		"dry_run", r.opts.DryRun,
	)

	for _, clip := range clips {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		r.restoreClip(ctx, clip, stats)
	}

	r.logger.Info("restore completed", "scanned", stats.TotalScanned, "restored", stats.TCRestored)
	return stats, nil
}

func (r *Runner) restoreClip(ctx context.Context, clip host.Clip, stats *Stats) {
	log := logging.WithClip(r.logger, clip.ID, clip.Name)
	stats.TotalScanned++

	if r.skipInTimeline(ctx, clip, stats, log) {
		return
	}

	slate, err := r.catalog.ReadProperty(ctx, clip.ID, host.PropSlateTC)
	slate = strings.TrimSpace(slate)
	if err != nil || !timecode.Valid(slate) {
		stats.RestoreSkippedNoSlateTC++
		log.Debug("no valid Slate TC", "value", slate, "error", err)
		return
	}

	current, err := r.catalog.ReadProperty(ctx, clip.ID, host.PropStartTC)
	if err != nil {
		stats.FailedTCRestore++
		log.Warn("cannot read Start TC", "error", err)
		return
	}
	if r.opts.RestoreOnlyEmpty && !host.IsEmptyTimecode(current) {
		stats.RestoreSkippedTCNotEmpty++
		log.Debug("Start TC not empty", "value", current)
		return
	}

	if err := r.write(ctx, clip, host.PropStartTC, current, slate, host.PropSlateTC, stats); err != nil {
		stats.FailedTCRestore++
		log.Warn("restore failed", "error", err)
		return
	}
	stats.TCRestored++
	log.Info("Start TC restored", "value", slate)
}

// skipInTimeline applies the timeline-usage policy. An unreadable Usage is
// counted and the clip is processed anyway.
func (r *Runner) skipInTimeline(ctx context.Context, clip host.Clip, stats *Stats, log *slog.Logger) bool {
	if !r.opts.SkipTimelineClips {
		return false
	}
	used, err := r.inTimeline(ctx, clip.ID)
	if err != nil {
		stats.ErrorsGettingUsage++
		log.Warn("cannot read Usage, proceeding", "error", err)
		return false
	}
	if used {
		stats.SkippedInTimeline++
		log.Debug("skipping clip used in a timeline")
	}
	return used
}

// write sets a property unless this is a dry run, and records the change.
func (r *Runner) write(ctx context.Context, clip host.Clip, prop, old, value, source string, stats *Stats) error {
	if !r.opts.DryRun {
		if err := r.catalog.WriteProperty(ctx, clip.ID, prop, value); err != nil {
			return err
		}
	}
	stats.Changes = append(stats.Changes, Change{
		ClipID:   clip.ID,
		Name:     clip.Name,
		Property: prop,
		Old:      old,
		New:      value,
		Source:   source,
	})
	return nil
}
