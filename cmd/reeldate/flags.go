package main

import (
	"github.com/spf13/cobra"

	"github.com/heimdex/reeldate/internal/config"
)

// flagValues receives option flags. Only flags set on the command line are
// copied into the options, so the options file keeps its say otherwise.
var flagValues struct {
	mode          string
	fallback      string
	parseFilename bool
	offsetHours   float64
	timezone      string
	prefix        string
	wildcard      string
	dryRun        bool

	startTC      bool
	scene        bool
	sceneFormat  string
	backup       bool
	onlyEmpty    bool
	skipTimeline bool
	frameRate    float64
	dropFrame    bool

	threshold   int
	maxSpanDays int
}

// override copies one flag into the options when the flag was set.
type override struct {
	flag  string
	apply func(o *config.Options)
}

type overrides []override

func (ov overrides) apply(cmd *cobra.Command, opts *config.Options) {
	for _, o := range ov {
		if cmd.Flags().Changed(o.flag) {
			o.apply(opts)
		}
	}
}

func sourceFlags(cmd *cobra.Command) overrides {
	f := cmd.Flags()
	f.StringVar(&flagValues.mode, "mode", config.ModePriority, "resolution mode: priority or earliest")
	f.StringVar(&flagValues.fallback, "fallback", config.FallbackCreation, "fallback source: creation or modification")
	f.BoolVar(&flagValues.parseFilename, "parse-filename", true, "try the date encoded in the filename first")
	f.Float64Var(&flagValues.offsetHours, "offset", 0, "hours added to every resolved date")
	f.StringVar(&flagValues.timezone, "timezone", "", "zone filename dates are read in (default local)")

	return overrides{
		{"mode", func(o *config.Options) { o.Mode = flagValues.mode }},
		{"fallback", func(o *config.Options) { o.Fallback = flagValues.fallback }},
		{"parse-filename", func(o *config.Options) { o.ParseFilename = flagValues.parseFilename }},
		{"offset", func(o *config.Options) { o.OffsetHours = flagValues.offsetHours }},
		{"timezone", func(o *config.Options) { o.Timezone = flagValues.timezone }},
	}
}

func selectionFlags(cmd *cobra.Command) overrides {
	f := cmd.Flags()
	f.StringVar(&flagValues.prefix, "prefix", config.AllPrefixes, "only clips whose name starts with this prefix")
	f.StringVar(&flagValues.wildcard, "wildcard", "", "only clips whose name matches this pattern (* and ?)")

	return overrides{
		{"prefix", func(o *config.Options) { o.Prefix = flagValues.prefix }},
		{"wildcard", func(o *config.Options) { o.Wildcard = flagValues.wildcard }},
	}
}

func dryRunFlag(cmd *cobra.Command) overrides {
	cmd.Flags().BoolVar(&flagValues.dryRun, "dry-run", false, "report changes without writing them")
	return overrides{
		{"dry-run", func(o *config.Options) { o.DryRun = flagValues.dryRun }},
	}
}

func timelineFlag(cmd *cobra.Command) overrides {
	cmd.Flags().BoolVar(&flagValues.skipTimeline, "skip-timeline", true, "leave clips used in a timeline untouched")
	return overrides{
		{"skip-timeline", func(o *config.Options) { o.SkipTimelineClips = flagValues.skipTimeline }},
	}
}

func stampFlags(cmd *cobra.Command) overrides {
	f := cmd.Flags()
	f.BoolVar(&flagValues.startTC, "start-tc", true, "write Start TC")
	f.BoolVar(&flagValues.scene, "scene", true, "write Scene")
	f.StringVar(&flagValues.sceneFormat, "scene-format", config.SceneFormatResolve, "Scene layout: resolve or iso")
	f.BoolVar(&flagValues.backup, "backup", false, "copy an existing Start TC to Slate TC first")
	f.BoolVar(&flagValues.onlyEmpty, "only-empty", false, "only fill properties that are empty")
	f.Float64Var(&flagValues.frameRate, "frame-rate", 0, "frame rate for every clip, overriding clip FPS")
	f.BoolVar(&flagValues.dropFrame, "drop-frame", false, "write drop-frame timecode")

	return overrides{
		{"start-tc", func(o *config.Options) { o.UpdateStartTC = flagValues.startTC }},
		{"scene", func(o *config.Options) { o.UpdateScene = flagValues.scene }},
		{"scene-format", func(o *config.Options) { o.SceneFormat = flagValues.sceneFormat }},
		{"backup", func(o *config.Options) { o.BackupStartTC = flagValues.backup }},
		{"only-empty", func(o *config.Options) { o.UpdateOnlyEmpty = flagValues.onlyEmpty }},
		{"frame-rate", func(o *config.Options) { o.FrameRate = flagValues.frameRate }},
		{"drop-frame", func(o *config.Options) { o.DropFrame = flagValues.dropFrame }},
	}
}

func restoreFlags(cmd *cobra.Command) overrides {
	cmd.Flags().BoolVar(&flagValues.onlyEmpty, "only-empty", true, "only restore when Start TC is empty")
	return overrides{
		{"only-empty", func(o *config.Options) { o.RestoreOnlyEmpty = flagValues.onlyEmpty }},
	}
}

func organizeFlags(cmd *cobra.Command) overrides {
	f := cmd.Flags()
	f.IntVar(&flagValues.threshold, "threshold", 0, "minimum clips for a day to get its own bin")
	f.IntVar(&flagValues.maxSpanDays, "max-span", 0, "most days one bin may cover")

	return overrides{
		{"threshold", func(o *config.Options) { o.Threshold = flagValues.threshold }},
		{"max-span", func(o *config.Options) { o.MaxSpanDays = flagValues.maxSpanDays }},
	}
}

func join(groups ...overrides) overrides {
	var out overrides
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
