package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/heimdex/reeldate/internal/clustering"
	"github.com/heimdex/reeldate/internal/resolve"
	"github.com/heimdex/reeldate/internal/timecode"
)

// Option values.
const (
	ModePriority = "priority"
	ModeEarliest = "earliest"

	FallbackCreation     = "creation"
	FallbackModification = "modification"

	// SceneFormatResolve writes "Jun 23 2025 19:37:00".
	SceneFormatResolve = "resolve"
	// SceneFormatISO writes "2025-06-23 19:37:00".
	SceneFormatISO = "iso"

	// AllPrefixes selects every clip.
	AllPrefixes = "All"

	MaxOffsetHours = 24
)

var ErrInvalidOptions = errors.New("invalid options")

// Options controls a stamp, restore, organize or analyze run.
type Options struct {
	Mode          string  `yaml:"mode"`
	ParseFilename bool    `yaml:"parse_filename"`
	Fallback      string  `yaml:"fallback"`
	OffsetHours   float64 `yaml:"offset_hours"`
	// Timezone names the zone filenames are read in; empty means local time.
	Timezone string `yaml:"timezone"`

	Prefix   string `yaml:"prefix"`
	Wildcard string `yaml:"wildcard"`

	UpdateStartTC     bool   `yaml:"update_start_tc"`
	UpdateScene       bool   `yaml:"update_scene"`
	SceneFormat       string `yaml:"scene_format"`
	BackupStartTC     bool   `yaml:"backup_start_tc"`
	UpdateOnlyEmpty   bool   `yaml:"update_only_empty"`
	SkipTimelineClips bool   `yaml:"skip_timeline_clips"`
	RestoreOnlyEmpty  bool   `yaml:"restore_only_empty"`
	// FrameRate overrides every clip's FPS when positive.
	FrameRate float64 `yaml:"frame_rate"`
	DropFrame bool    `yaml:"drop_frame"`
	DryRun    bool    `yaml:"dry_run"`

	Threshold   int `yaml:"threshold"`
	MaxSpanDays int `yaml:"max_span_days"`
}

// DefaultOptions returns the options used when no file or flag says otherwise.
func DefaultOptions() Options {
	return Options{
		Mode:              ModePriority,
		ParseFilename:     true,
		Fallback:          FallbackCreation,
		Prefix:            AllPrefixes,
		UpdateStartTC:     true,
		UpdateScene:       true,
		SceneFormat:       SceneFormatResolve,
		UpdateOnlyEmpty:   false,
		SkipTimelineClips: true,
		RestoreOnlyEmpty:  true,
		Threshold:         clustering.DefaultThreshold,
		MaxSpanDays:       clustering.DefaultMaxSpanDays,
	}
}

// LoadOptions returns DefaultOptions overlaid with the YAML file at path. A
// missing file is not an error unless required is set.
func LoadOptions(path string, required bool) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	if err := loadFromFile(path, &opts); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return opts, nil
		}
		return Options{}, err
	}
	return opts, nil
}

func loadFromFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read options file: %w", err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("parse options file: %w", err)
	}
	return nil
}

// Validate checks the mutually exclusive groups and numeric bounds.
func (o Options) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch o.Mode {
	case ModePriority, ModeEarliest:
	default:
		add("mode must be %q or %q, got %q", ModePriority, ModeEarliest, o.Mode)
	}
	switch o.Fallback {
	case FallbackCreation, FallbackModification:
	default:
		add("fallback must be %q or %q, got %q", FallbackCreation, FallbackModification, o.Fallback)
	}
	switch o.SceneFormat {
	case SceneFormatResolve, SceneFormatISO:
	default:
		add("scene_format must be %q or %q, got %q", SceneFormatResolve, SceneFormatISO, o.SceneFormat)
	}
	if o.HasPrefix() && strings.TrimSpace(o.Wildcard) != "" {
		add("prefix %q and wildcard %q are mutually exclusive", o.Prefix, o.Wildcard)
	}
	if o.Threshold < 1 {
		add("threshold must be at least 1, got %d", o.Threshold)
	}
	if o.MaxSpanDays < 1 {
		add("max_span_days must be at least 1, got %d", o.MaxSpanDays)
	}
	if math.IsNaN(o.OffsetHours) || math.Abs(o.OffsetHours) > MaxOffsetHours {
		add("offset_hours must be within ±%d, got %v", MaxOffsetHours, o.OffsetHours)
	}
	if math.IsNaN(o.FrameRate) || math.IsInf(o.FrameRate, 0) || o.FrameRate < 0 {
		add("frame_rate must be zero or positive, got %v", o.FrameRate)
	} else if o.FrameRate > 0 {
		if _, err := timecode.Nominal(o.FrameRate); err != nil {
			add("frame_rate: %v", err)
		}
	}
	if _, err := o.Location(); err != nil {
		add("timezone: %v", err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(problems, "; "))
	}
	return nil
}

// HasPrefix reports whether a specific prefix filter is selected.
func (o Options) HasPrefix() bool {
	p := strings.TrimSpace(o.Prefix)
	return p != "" && p != AllPrefixes
}

// Location resolves Timezone.
func (o Options) Location() (*time.Location, error) {
	if o.Timezone == "" || strings.EqualFold(o.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(o.Timezone)
}

// Policy converts the source options to a resolution policy.
func (o Options) Policy() resolve.Policy {
	p := resolve.Policy{
		Mode:          resolve.ModePriority,
		ParseFilename: o.ParseFilename,
		Fallback:      resolve.SourceCreation,
		OffsetHours:   o.OffsetHours,
	}
	if o.Mode == ModeEarliest {
		p.Mode = resolve.ModeEarliest
	}
	if o.Fallback == FallbackModification {
		p.Fallback = resolve.SourceModification
	}
	return p
}

// Clustering returns the day grouping bounds.
func (o Options) Clustering() clustering.Options {
	return clustering.Options{Threshold: o.Threshold, MaxSpanDays: o.MaxSpanDays}
}

// SceneLayout returns the time layout for the Scene property.
func (o Options) SceneLayout() string {
	if o.SceneFormat == SceneFormatISO {
		return "2006-01-02 15:04:05"
	}
	return "Jan 02 2006 15:04:05"
}
