package resolve

import (
	"errors"
	"testing"
	"time"

	"github.com/heimdex/reeldate/internal/datename"
	"github.com/heimdex/reeldate/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, policy Policy) *Engine {
	t.Helper()
	e, err := NewEngine(datename.New(time.UTC), policy, time.UTC)
	require.NoError(t, err)
	return e
}

var (
	filenameTime = time.Date(2025, 6, 23, 19, 37, 0, 500000000, time.UTC)
	createdTime  = time.Date(2025, 6, 23, 20, 0, 0, 0, time.UTC)
	modifiedTime = time.Date(2025, 6, 23, 18, 0, 0, 0, time.UTC)
)

func TestResolve_PriorityFilenameWins(t *testing.T) {
	for _, fallback := range []Source{SourceCreation, SourceModification} {
		e := newEngine(t, Policy{Mode: ModePriority, ParseFilename: true, Fallback: fallback})
		rec := media.Record{Name: "20250623_193700_5.mp4", Created: createdTime, Modified: modifiedTime}

		got, err := e.Resolve(rec)
		require.NoError(t, err)
		assert.Equal(t, SourceFilename, got.Source)
		assert.True(t, filenameTime.Equal(got.Instant))
		assert.False(t, got.Adjusted)
		assert.Equal(t, "Filename", got.Label())
	}
}

func TestResolve_PriorityFallbackModification(t *testing.T) {
	e := newEngine(t, Policy{Mode: ModePriority, ParseFilename: true, Fallback: SourceModification})
	rec := media.Record{Name: "holiday.mp4", Created: createdTime, Modified: modifiedTime}

	got, err := e.Resolve(rec)
	require.NoError(t, err)
	assert.Equal(t, SourceModification, got.Source)
	assert.True(t, modifiedTime.Equal(got.Instant))
	assert.Equal(t, "File Modification Time", got.Label())
}

func TestResolve_PriorityFilenameDisabled(t *testing.T) {
	e := newEngine(t, Policy{Mode: ModePriority, ParseFilename: false, Fallback: SourceCreation})
	rec := media.Record{Name: "20250623_193700.mp4", Created: createdTime}

	got, err := e.Resolve(rec)
	require.NoError(t, err)
	assert.Equal(t, SourceCreation, got.Source)
}

func TestResolve_PriorityFallbackMissing(t *testing.T) {
	e := newEngine(t, Policy{Mode: ModePriority, ParseFilename: true, Fallback: SourceCreation})
	rec := media.Record{Name: "holiday.mp4", Modified: modifiedTime}

	_, err := e.Resolve(rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDateFound))
}

func TestResolve_EarliestPicksMinimum(t *testing.T) {
	e := newEngine(t, Policy{Mode: ModeEarliest})

	tests := []struct {
		name     string
		rec      media.Record
		want     time.Time
		wantFrom Source
	}{
		{
			name:     "modification earliest",
			rec:      media.Record{Name: "20250623_193700_5.mp4", Created: createdTime, Modified: modifiedTime},
			want:     modifiedTime,
			wantFrom: SourceModification,
		},
		{
			name:     "filename earliest",
			rec:      media.Record{Name: "20250623_193700_5.mp4", Created: createdTime, Modified: createdTime.Add(time.Hour)},
			want:     filenameTime,
			wantFrom: SourceFilename,
		},
		{
			name:     "creation earliest",
			rec:      media.Record{Name: "20250623_193700_5.mp4", Created: modifiedTime.Add(-time.Minute), Modified: modifiedTime},
			want:     modifiedTime.Add(-time.Minute),
			wantFrom: SourceCreation,
		},
		{
			name:     "only creation available",
			rec:      media.Record{Name: "holiday.mp4", Created: createdTime},
			want:     createdTime,
			wantFrom: SourceCreation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Resolve(tt.rec)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Instant), "got %v, want %v", got.Instant, tt.want)
			assert.Equal(t, tt.wantFrom, got.Source)
			assert.True(t, got.Earliest)
		})
	}
}

func TestResolve_EarliestTieKeepsSourceOrder(t *testing.T) {
	e := newEngine(t, Policy{Mode: ModeEarliest})
	rec := media.Record{Name: "holiday.mp4", Created: createdTime, Modified: createdTime}

	got, err := e.Resolve(rec)
	require.NoError(t, err)
	assert.Equal(t, SourceCreation, got.Source)
	assert.Equal(t, "Earliest (Creation)", got.Label())
}

func TestResolve_EarliestNothingAvailable(t *testing.T) {
	e := newEngine(t, Policy{Mode: ModeEarliest})
	_, err := e.Resolve(media.Record{Name: "holiday.mp4"})
	assert.ErrorIs(t, err, ErrNoDateFound)
}

func TestResolve_OffsetApplied(t *testing.T) {
	e := newEngine(t, Policy{Mode: ModePriority, ParseFilename: true, Fallback: SourceCreation, OffsetHours: -1.5})
	rec := media.Record{Name: "20250623_193700.mp4"}

	got, err := e.Resolve(rec)
	require.NoError(t, err)
	assert.True(t, got.Adjusted)
	assert.Equal(t, -1.5, got.OffsetHours)
	assert.True(t, time.Date(2025, 6, 23, 18, 7, 0, 0, time.UTC).Equal(got.Instant))
	assert.Equal(t, "Filename (Adjusted by -1.5h)", got.Label())
}

func TestResolve_SourcesComparedInOneLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	e, err := NewEngine(datename.New(loc), Policy{Mode: ModeEarliest}, loc)
	require.NoError(t, err)

	// 17:00 UTC is 19:00 local, earlier than the 19:37 filename stamp.
	rec := media.Record{Name: "20250623_193700.mp4", Created: time.Date(2025, 6, 23, 17, 0, 0, 0, time.UTC)}
	got, err := e.Resolve(rec)
	require.NoError(t, err)
	assert.Equal(t, SourceCreation, got.Source)
	assert.Equal(t, 19, got.Instant.Hour())
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.NoError(t, Policy{Mode: ModeEarliest}.Validate())
	assert.Error(t, Policy{Mode: ModePriority, Fallback: SourceFilename}.Validate())
	assert.Error(t, Policy{Mode: Mode(7)}.Validate())
	assert.Error(t, Policy{Mode: ModeEarliest, OffsetHours: 30}.Validate())
}

func TestNewEngine_RequiresParser(t *testing.T) {
	_, err := NewEngine(nil, DefaultPolicy(), time.UTC)
	assert.Error(t, err)
}
