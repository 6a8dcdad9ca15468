// Package pipeline drives one batch run over the host catalog: stamping
// timecodes and scene dates, restoring backed-up timecodes, filing clips
// into day bins, and reporting date discrepancies.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/heimdex/reeldate/internal/config"
	"github.com/heimdex/reeldate/internal/datename"
	"github.com/heimdex/reeldate/internal/fsmeta"
	"github.com/heimdex/reeldate/internal/host"
	"github.com/heimdex/reeldate/internal/logging"
	"github.com/heimdex/reeldate/internal/media"
	"github.com/heimdex/reeldate/internal/resolve"
	"github.com/heimdex/reeldate/internal/timecode"
)

var (
	// ErrNoCatalog is returned by NewRunner when no catalog handle is given.
	ErrNoCatalog = errors.New("catalog is not available")

	errNoPath = errors.New("no usable file path")
)

// dateCreatedLayouts are the Date Created formats hosts are known to write.
var dateCreatedLayouts = []string{
	"2006-01-02 15:04:05",
	"Mon Jan 2 2006 15:04:05",
}

// Runner executes operations against one catalog under fixed options.
type Runner struct {
	catalog host.Catalog
	stater  fsmeta.Stater
	opts    config.Options
	loc     *time.Location
	engine  *resolve.Engine
	match   func(name string) bool
	logger  *slog.Logger
}

// NewRunner validates opts and binds them to catalog. A nil stater reads
// the local filesystem.
func NewRunner(catalog host.Catalog, stater fsmeta.Stater, opts config.Options, logger *slog.Logger) (*Runner, error) {
	if catalog == nil {
		return nil, ErrNoCatalog
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if stater == nil {
		stater = fsmeta.OS{}
	}

	loc, err := opts.Location()
	if err != nil {
		return nil, err
	}
	engine, err := resolve.NewEngine(datename.New(loc), opts.Policy(), loc)
	if err != nil {
		return nil, err
	}
	match, err := nameFilter(opts)
	if err != nil {
		return nil, err
	}

	return &Runner{
		catalog: catalog,
		stater:  stater,
		opts:    opts,
		loc:     loc,
		engine:  engine,
		match:   match,
		logger:  logging.WithComponent(logging.OrDiscard(logger), "pipeline"),
	}, nil
}

// Options returns the options the runner was built with.
func (r *Runner) Options() config.Options {
	return r.opts
}

// nameFilter selects clips by name prefix or by case-insensitive wildcard.
func nameFilter(opts config.Options) (func(string) bool, error) {
	if w := strings.TrimSpace(opts.Wildcard); w != "" {
		re, err := media.WildcardPattern(w)
		if err != nil {
			return nil, fmt.Errorf("wildcard %q: %w", w, err)
		}
		return re.MatchString, nil
	}
	if opts.HasPrefix() {
		prefix := strings.TrimSpace(opts.Prefix)
		return func(name string) bool { return strings.HasPrefix(name, prefix) }, nil
	}
	return func(string) bool { return true }, nil
}

// clips lists the catalog and applies the name filter. The second result
// counts clips the filter left out.
func (r *Runner) clips(ctx context.Context) ([]host.Clip, int, error) {
	all, err := r.catalog.ListClips(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list clips: %w", err)
	}
	out := make([]host.Clip, 0, len(all))
	for _, c := range all {
		if r.match(c.Name) {
			out = append(out, c)
		}
	}
	return out, len(all) - len(out), nil
}

// record builds the media record for clip from its File Path property and
// the file's timestamps. A missing file yields errNoPath along with the
// partially filled record.
func (r *Runner) record(ctx context.Context, clip host.Clip) (media.Record, error) {
	rec := media.Record{ClipID: clip.ID, Name: clip.Name}

	path, err := r.catalog.ReadProperty(ctx, clip.ID, host.PropFilePath)
	if err != nil {
		return rec, fmt.Errorf("read %s: %w", host.PropFilePath, err)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return rec, errNoPath
	}
	rec.Path = path

	times, err := r.stater.FileTimes(path)
	if errors.Is(err, fs.ErrNotExist) {
		return rec, fmt.Errorf("%w: %s", errNoPath, logging.SanitizePath(path))
	}
	if err != nil {
		return rec, err
	}
	rec.Created = times.Created
	rec.Modified = times.Modified
	return rec, nil
}

// dateCreated reads the host's Date Created property in the runner's zone.
func (r *Runner) dateCreated(ctx context.Context, clipID string) (time.Time, bool) {
	v, err := r.catalog.ReadProperty(ctx, clipID, host.PropDateCreated)
	if err != nil {
		return time.Time{}, false
	}
	v = strings.TrimSpace(v)
	for _, layout := range dateCreatedLayouts {
		if t, err := time.ParseInLocation(layout, v, r.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inTimeline reports whether the clip's Usage says it is on a timeline. A
// blank Usage reads as unused; any other unreadable value is returned as an
// error and the caller carries on.
func (r *Runner) inTimeline(ctx context.Context, clipID string) (bool, error) {
	v, err := r.catalog.ReadProperty(ctx, clipID, host.PropUsage)
	if err != nil {
		return false, err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false, fmt.Errorf("usage %q is not a number", v)
	}
	return n > 0, nil
}

// projectRate reads the project's frame rate and drop-frame flag when the
// catalog exposes them. A rate of zero means none is set.
func (r *Runner) projectRate(ctx context.Context) (float64, bool) {
	p, ok := r.catalog.(host.Project)
	if !ok {
		return 0, false
	}
	var rate float64
	if v, err := p.ProjectSetting(ctx, host.SettingFrameRate); err == nil && v != "" {
		if parsed, err := timecode.ParseRate(v); err == nil {
			rate = parsed
		} else {
			r.logger.Warn("ignoring project frame rate", "value", v, "error", err)
		}
	}
	drop, _ := p.ProjectSetting(ctx, host.SettingDropFrame)
	return rate, drop == "1"
}

// clipRate picks the frame rate for one clip: the options override, then
// the clip's FPS property, then the project rate.
func (r *Runner) clipRate(ctx context.Context, clipID string, projectRate float64) (float64, error) {
	if r.opts.FrameRate > 0 {
		return r.opts.FrameRate, nil
	}
	if v, err := r.catalog.ReadProperty(ctx, clipID, host.PropFPS); err == nil && strings.TrimSpace(v) != "" {
		return timecode.ParseRate(v)
	}
	if projectRate > 0 {
		return projectRate, nil
	}
	return 0, fmt.Errorf("%w: no clip or project frame rate", timecode.ErrInvalidFrameRate)
}
