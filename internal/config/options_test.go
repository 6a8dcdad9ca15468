package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/reeldate/internal/resolve"
)

func TestDefaultOptions_Valid(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: earliest
offset_hours: -1.5
wildcard: "PXL_*"
prefix: ""
scene_format: iso
threshold: 10
`), 0644))

	opts, err := LoadOptions(path, true)
	require.NoError(t, err)

	assert.Equal(t, ModeEarliest, opts.Mode)
	assert.Equal(t, -1.5, opts.OffsetHours)
	assert.Equal(t, "PXL_*", opts.Wildcard)
	assert.Equal(t, 10, opts.Threshold)
	assert.Equal(t, 7, opts.MaxSpanDays, "unset keys keep defaults")
	assert.Equal(t, "2006-01-02 15:04:05", opts.SceneLayout())
	require.NoError(t, opts.Validate())
}

func TestLoadOptions_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	opts, err := LoadOptions(path, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)

	_, err = LoadOptions(path, true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOptions_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: [1"), 0644))

	_, err := LoadOptions(path, false)
	assert.Error(t, err)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"unknown mode", func(o *Options) { o.Mode = "latest" }},
		{"unknown fallback", func(o *Options) { o.Fallback = "filename" }},
		{"unknown scene format", func(o *Options) { o.SceneFormat = "rfc3339" }},
		{"prefix and wildcard", func(o *Options) { o.Prefix = "PXL"; o.Wildcard = "VID*" }},
		{"zero threshold", func(o *Options) { o.Threshold = 0 }},
		{"zero span", func(o *Options) { o.MaxSpanDays = 0 }},
		{"offset too large", func(o *Options) { o.OffsetHours = 25 }},
		{"negative frame rate", func(o *Options) { o.FrameRate = -24 }},
		{"frame rate above its rounding", func(o *Options) { o.FrameRate = 25.4 }},
		{"bad timezone", func(o *Options) { o.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
		})
	}
}

func TestOptions_AllPrefixWithWildcard(t *testing.T) {
	opts := DefaultOptions()
	opts.Wildcard = "*.mp4"
	assert.False(t, opts.HasPrefix())
	assert.NoError(t, opts.Validate())
}

func TestOptions_Policy(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeEarliest
	opts.Fallback = FallbackModification
	opts.OffsetHours = 2

	p := opts.Policy()

	assert.Equal(t, resolve.ModeEarliest, p.Mode)
	assert.Equal(t, resolve.SourceModification, p.Fallback)
	assert.Equal(t, 2.0, p.OffsetHours)
	assert.True(t, p.ParseFilename)
}

func TestOptions_Location(t *testing.T) {
	opts := DefaultOptions()
	loc, err := opts.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	opts.Timezone = "UTC"
	loc, err = opts.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
