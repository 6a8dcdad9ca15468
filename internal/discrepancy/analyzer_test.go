package discrepancy

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/heimdex/reeldate/internal/datename"
	"github.com/heimdex/reeldate/internal/media"
	"github.com/heimdex/reeldate/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSources returns canned source instants keyed by record name.
type fakeSources struct {
	byName map[string][3]time.Time
}

func (f fakeSources) Sources(rec media.Record) [3]time.Time {
	return f.byName[rec.Name]
}

var base = time.Date(2025, 6, 23, 9, 0, 0, 0, time.UTC)

type clipTimes struct {
	name              string
	filename, created time.Time
	modified          time.Time
}

func build(clips []clipTimes) ([]media.Record, fakeSources) {
	src := fakeSources{byName: map[string][3]time.Time{}}
	recs := make([]media.Record, 0, len(clips))
	for _, c := range clips {
		recs = append(recs, media.Record{Name: c.name})
		src.byName[c.name] = [3]time.Time{c.filename, c.created, c.modified}
	}
	return recs, src
}

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

func samples(values ...float64) []Sample {
	out := make([]Sample, len(values))
	for i, v := range values {
		out[i] = Sample{Seconds: v}
	}
	return out
}

func TestModeOf(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, ModeOf(nil))
	})

	t.Run("rounds to minute", func(t *testing.T) {
		m := ModeOf(samples(3590, 3610, 3625, 100))
		require.NotNil(t, m)
		assert.Equal(t, 3600.0, m.Seconds)
		assert.Equal(t, 3, m.Support)
		assert.True(t, m.FromMode())
	})

	t.Run("first seen wins ties", func(t *testing.T) {
		m := ModeOf(samples(600, 1200, 1200, 600))
		require.NotNil(t, m)
		assert.Equal(t, 600.0, m.Seconds)

		m = ModeOf(samples(1200, 600, 600, 1200))
		assert.Equal(t, 1200.0, m.Seconds)
	})

	t.Run("all unique falls back to mean", func(t *testing.T) {
		m := ModeOf(samples(100, 200, 400))
		require.NotNil(t, m)
		assert.InDelta(t, 233.333, m.Seconds, 0.001)
		assert.False(t, m.FromMode())
		assert.Equal(t, 3, m.Samples)
	})

	t.Run("single sample is its own mode", func(t *testing.T) {
		m := ModeOf(samples(-7201))
		require.NotNil(t, m)
		assert.Equal(t, -7200.0, m.Seconds)
		assert.True(t, m.FromMode())
	})
}

func TestAnalyzeGroup_ModificationSkewOverNoisyCreation(t *testing.T) {
	var clips []clipTimes
	for i := 0; i < 10; i++ {
		name := base.Add(time.Duration(i) * time.Hour)
		clips = append(clips, clipTimes{
			name:     fmt.Sprintf("VID_%02d", i),
			filename: name,
			created:  name.Add(secs(7200 + i*500)),
			modified: name.Add(secs(3600 + (i%3)*10)),
		})
	}
	recs, src := build(clips)

	r := NewAnalyzer(src).AnalyzeGroup("VID", recs)

	assert.Equal(t, NoAgreement, r.Verdict)
	assert.Equal(t, 10, r.Count)
	require.NotNil(t, r.CreationFilename)
	assert.False(t, r.CreationFilename.FromMode())

	require.NotNil(t, r.Dominant)
	assert.Equal(t, ModificationFilename, r.Dominant.Pair)
	assert.Equal(t, 3600.0, r.Dominant.Seconds)

	require.NotNil(t, r.FirstExample)
	require.NotNil(t, r.LastExample)
	assert.Equal(t, "VID_00", r.FirstExample.Name)
	assert.Equal(t, "VID_09", r.LastExample.Name)
	assert.True(t, r.FirstExample.Second.Equal(base))
}

func TestAnalyzeGroup_Verdicts(t *testing.T) {
	tests := []struct {
		name     string
		created  int
		modified int
		verdict  Verdict
		note     *Offset
	}{
		{
			name:     "modification matches filename",
			created:  5000,
			modified: 30,
			verdict:  ModificationMatchesFilename,
		},
		{
			name:     "creation matches filename",
			created:  0,
			modified: 7200,
			verdict:  CreationMatchesFilename,
			note:     &Offset{Pair: ModificationCreation, Seconds: 7200},
		},
		{
			name:     "modification matches creation",
			created:  -3600,
			modified: -3600,
			verdict:  ModificationMatchesCreation,
			note:     &Offset{Pair: CreationFilename, Seconds: -3600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var clips []clipTimes
			for i := 0; i < 3; i++ {
				n := base.Add(time.Duration(i) * 24 * time.Hour)
				clips = append(clips, clipTimes{
					name:     fmt.Sprintf("c%d", i),
					filename: n,
					created:  n.Add(secs(tt.created)),
					modified: n.Add(secs(tt.modified)),
				})
			}
			recs, src := build(clips)

			r := NewAnalyzer(src).AnalyzeGroup("c", recs)

			assert.Equal(t, tt.verdict, r.Verdict)
			assert.Equal(t, tt.note, r.Note)
			assert.Nil(t, r.Dominant)
		})
	}
}

func TestAnalyzeGroup_MissingSources(t *testing.T) {
	recs, src := build([]clipTimes{
		{name: "a", created: base, modified: base.Add(secs(10))},
		{name: "b", created: base, modified: base.Add(secs(20))},
	})

	r := NewAnalyzer(src).AnalyzeGroup("x", recs)

	assert.Nil(t, r.CreationFilename)
	assert.Nil(t, r.ModificationFilename)
	require.NotNil(t, r.ModificationCreation)
	assert.Equal(t, ModificationMatchesCreation, r.Verdict)
	assert.Nil(t, r.Note)
}

func TestAnalyzeGroup_NoSamples(t *testing.T) {
	recs, src := build([]clipTimes{{name: "a", filename: base}})

	r := NewAnalyzer(src).AnalyzeGroup("x", recs)

	assert.Equal(t, NoAgreement, r.Verdict)
	assert.Nil(t, r.Dominant)
	assert.Nil(t, r.FirstExample)
}

func TestAnalyzeGroup_DominantPrefersCreationOnEqualSupport(t *testing.T) {
	var clips []clipTimes
	for i := 0; i < 4; i++ {
		n := base.Add(time.Duration(i) * time.Hour)
		clips = append(clips, clipTimes{
			name:     fmt.Sprintf("c%d", i),
			filename: n,
			created:  n.Add(secs(-1800)),
			modified: n.Add(secs(5400)),
		})
	}
	recs, src := build(clips)

	r := NewAnalyzer(src).AnalyzeGroup("c", recs)

	require.NotNil(t, r.Dominant)
	assert.Equal(t, CreationFilename, r.Dominant.Pair)
	assert.Equal(t, -1800.0, r.Dominant.Seconds)
}

func TestAnalyzeGroup_SingleExample(t *testing.T) {
	recs, src := build([]clipTimes{
		{name: "a", filename: base, created: base.Add(secs(7200))},
	})

	r := NewAnalyzer(src).AnalyzeGroup("a", recs)

	require.NotNil(t, r.FirstExample)
	assert.Nil(t, r.LastExample)
}

func TestAnalyze_GroupsSortedByKey(t *testing.T) {
	recs := []media.Record{
		{Name: "VID_20250101_100000.mp4"},
		{Name: "PXL_20250101_100000000.mp4"},
		{Name: "VID_20250102_100000.mp4"},
	}
	engine, err := resolve.NewEngine(datename.New(time.UTC), resolve.DefaultPolicy(), time.UTC)
	require.NoError(t, err)

	reports := NewAnalyzer(engine).Analyze(recs, func(r media.Record) string {
		return media.PrefixKey(r.Name)
	})

	require.Len(t, reports, 2)
	assert.Equal(t, "PXL", reports[0].Key)
	assert.Equal(t, 1, reports[0].Count)
	assert.Equal(t, "VID", reports[1].Key)
	assert.Equal(t, 2, reports[1].Count)
}

func TestFormatDuration(t *testing.T) {
	tests := map[float64]string{
		0:      "0s",
		45:     "45s",
		59.9:   "59s",
		3600:   "1h",
		-3660:  "1h 1m",
		93784:  "1d 2h 3m",
		86405:  "1d",
		172800: "2d",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDuration(in), "FormatDuration(%v)", in)
	}
}

func TestRender(t *testing.T) {
	reports := []Report{
		{Key: "GX", Count: 2, Verdict: ModificationMatchesFilename},
		{
			Key:      "VID",
			Count:    3,
			Verdict:  NoAgreement,
			Dominant: &Offset{Pair: ModificationFilename, Seconds: 3600},
			FirstExample: &Example{
				Name:   "VID_1.mp4",
				First:  base.Add(time.Hour),
				Second: base,
			},
		},
		{
			Key:     "PXL",
			Count:   1,
			Verdict: CreationMatchesFilename,
			Note:    &Offset{Pair: ModificationCreation, Seconds: -120},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, reports))
	out := buf.String()

	assert.Contains(t, out, "===== Prefix: GX (2 clips) =====")
	assert.Contains(t, out, "Filename and Modification dates are consistent.")
	assert.Contains(t, out, "Most common offset: Modification is 1h after Filename.")
	assert.Contains(t, out, "First Clip: VID_1.mp4")
	assert.Contains(t, out, "- Modification: 2025-06-23 10:00:00")
	assert.NotContains(t, out, "Last Clip")
	assert.Contains(t, out, "Note: Modification date is typically 2m before Creation date.")
}
