// Package resolve picks one capture instant per media record from the
// filename, creation and modification sources.
package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/heimdex/reeldate/internal/media"
)

// ErrNoDateFound is returned when no enabled source yields an instant.
var ErrNoDateFound = errors.New("no date found")

// Source names where a resolved instant came from.
type Source int

const (
	SourceFilename Source = iota
	SourceCreation
	SourceModification
)

func (s Source) String() string {
	switch s {
	case SourceFilename:
		return "Filename"
	case SourceCreation:
		return "Creation"
	case SourceModification:
		return "Modification"
	default:
		return "Unknown"
	}
}

// Mode selects how sources are combined.
type Mode int

const (
	// ModePriority tries the filename first, then a single fallback.
	ModePriority Mode = iota
	// ModeEarliest takes the earliest of every available source.
	ModeEarliest
)

// Policy configures one run of the engine.
type Policy struct {
	Mode          Mode
	ParseFilename bool
	// Fallback must be SourceCreation or SourceModification.
	Fallback    Source
	OffsetHours float64
}

// DefaultPolicy parses filenames and falls back to the creation time.
func DefaultPolicy() Policy {
	return Policy{Mode: ModePriority, ParseFilename: true, Fallback: SourceCreation}
}

// Validate rejects policies the engine cannot apply.
func (p Policy) Validate() error {
	if p.Mode != ModePriority && p.Mode != ModeEarliest {
		return fmt.Errorf("unknown resolution mode %d", p.Mode)
	}
	if p.Mode == ModePriority && p.Fallback != SourceCreation && p.Fallback != SourceModification {
		return fmt.Errorf("fallback must be creation or modification, got %s", p.Fallback)
	}
	if p.OffsetHours < -24 || p.OffsetHours > 24 {
		return fmt.Errorf("offset %gh outside [-24, 24]", p.OffsetHours)
	}
	return nil
}

// ResolvedDate is the instant chosen for a record, with provenance.
type ResolvedDate struct {
	Instant time.Time
	Source  Source
	// Earliest marks results chosen by ModeEarliest.
	Earliest    bool
	Adjusted    bool
	OffsetHours float64
}

// Label renders provenance the way run logs show it, e.g.
// "Earliest (Creation) (Adjusted by -1.5h)".
func (r ResolvedDate) Label() string {
	var label string
	switch {
	case r.Earliest:
		label = "Earliest (" + r.Source.String() + ")"
	case r.Source == SourceFilename:
		label = "Filename"
	default:
		label = "File " + r.Source.String() + " Time"
	}
	if r.Adjusted {
		label += " (Adjusted by " + strconv.FormatFloat(r.OffsetHours, 'f', -1, 64) + "h)"
	}
	return label
}

// FilenameParser is the subset of datename.Parser the engine needs.
type FilenameParser interface {
	Parse(filename string) (time.Time, bool)
}

// Engine resolves records under a fixed policy.
type Engine struct {
	parser FilenameParser
	policy Policy
	loc    *time.Location
}

// NewEngine returns an engine comparing every source in loc. A nil loc means
// time.Local.
func NewEngine(parser FilenameParser, policy Policy, loc *time.Location) (*Engine, error) {
	if parser == nil {
		return nil, errors.New("filename parser is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{parser: parser, policy: policy, loc: loc}, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Sources returns every available raw instant for rec, unadjusted, in
// Filename, Creation, Modification order. Absent sources are zero.
func (e *Engine) Sources(rec media.Record) [3]time.Time {
	var out [3]time.Time
	if t, ok := e.parser.Parse(rec.FileName()); ok {
		out[SourceFilename] = t
	}
	if rec.HasCreated() {
		out[SourceCreation] = rec.Created.In(e.loc)
	}
	if rec.HasModified() {
		out[SourceModification] = rec.Modified.In(e.loc)
	}
	return out
}

// Resolve picks the instant for rec. It never touches host properties.
func (e *Engine) Resolve(rec media.Record) (ResolvedDate, error) {
	var (
		res ResolvedDate
		ok  bool
	)
	switch e.policy.Mode {
	case ModeEarliest:
		res, ok = e.earliest(rec)
	default:
		res, ok = e.priority(rec)
	}
	if !ok {
		return ResolvedDate{}, fmt.Errorf("%s: %w", rec.FileName(), ErrNoDateFound)
	}

	if h := e.policy.OffsetHours; h != 0 {
		res.Instant = res.Instant.Add(time.Duration(h * float64(time.Hour)))
		res.Adjusted = true
		res.OffsetHours = h
	}
	return res, nil
}

func (e *Engine) priority(rec media.Record) (ResolvedDate, bool) {
	if e.policy.ParseFilename {
		if t, ok := e.parser.Parse(rec.FileName()); ok {
			return ResolvedDate{Instant: t, Source: SourceFilename}, true
		}
	}

	switch e.policy.Fallback {
	case SourceModification:
		if rec.HasModified() {
			return ResolvedDate{Instant: rec.Modified.In(e.loc), Source: SourceModification}, true
		}
	default:
		if rec.HasCreated() {
			return ResolvedDate{Instant: rec.Created.In(e.loc), Source: SourceCreation}, true
		}
	}
	return ResolvedDate{}, false
}

func (e *Engine) earliest(rec media.Record) (ResolvedDate, bool) {
	var (
		best  ResolvedDate
		found bool
	)
	for i, t := range e.Sources(rec) {
		if t.IsZero() {
			continue
		}
		if !found || t.Before(best.Instant) {
			best = ResolvedDate{Instant: t, Source: Source(i), Earliest: true}
			found = true
		}
	}
	return best, found
}
