package clustering

import (
	"testing"
	"time"

	"github.com/heimdex/reeldate/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jan(day int) time.Time {
	return time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC)
}

func spanDays(spans []Span) [][]int {
	out := make([][]int, len(spans))
	for i, s := range spans {
		for _, d := range s.Days {
			out[i] = append(out[i], d.Day())
		}
	}
	return out
}

func TestGroupDays_ThresholdBreaksRun(t *testing.T) {
	counts := map[time.Time]int{jan(1): 5, jan(2): 3, jan(3): 25, jan(4): 4, jan(5): 2}

	spans := GroupDays(counts, DefaultOptions())

	assert.Equal(t, [][]int{{1, 2}, {3}, {4, 5}}, spanDays(spans))
}

func TestGroupDays_SpanCap(t *testing.T) {
	counts := map[time.Time]int{}
	for d := 1; d <= 9; d++ {
		counts[jan(d)] = 1
	}

	spans := GroupDays(counts, DefaultOptions())

	require.Len(t, spans, 2)
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5, 6, 7}, {8, 9}}, spanDays(spans))
	for _, s := range spans {
		assert.Less(t, DaysBetween(s.Start(), s.End()), DefaultMaxSpanDays)
	}
}

func TestGroupDays_GapStopsGroup(t *testing.T) {
	counts := map[time.Time]int{jan(1): 1, jan(2): 1, jan(4): 1, jan(5): 1}

	spans := GroupDays(counts, DefaultOptions())

	assert.Equal(t, [][]int{{1, 2}, {4, 5}}, spanDays(spans))
}

func TestGroupDays_ThresholdIsInclusive(t *testing.T) {
	counts := map[time.Time]int{jan(1): 20, jan(2): 21, jan(3): 20}

	spans := GroupDays(counts, DefaultOptions())

	assert.Equal(t, [][]int{{1}, {2}, {3}}, spanDays(spans))

	counts[jan(2)] = 20
	assert.Equal(t, [][]int{{1, 2, 3}}, spanDays(GroupDays(counts, DefaultOptions())))
}

func TestGroupDays_NoLookAheadPastOversizedDay(t *testing.T) {
	counts := map[time.Time]int{jan(1): 1, jan(2): 50, jan(3): 1}

	spans := GroupDays(counts, Options{Threshold: 20, MaxSpanDays: 7})

	assert.Equal(t, [][]int{{1}, {2}, {3}}, spanDays(spans))
}

func TestGroupDays_Exhaustive(t *testing.T) {
	counts := map[time.Time]int{}
	for d := 1; d <= 31; d += 1 + d%3 {
		counts[jan(d)] = d % 25
	}

	spans := GroupDays(counts, Options{Threshold: 10, MaxSpanDays: 3})

	seen := map[time.Time]bool{}
	var prev time.Time
	for _, s := range spans {
		require.NotEmpty(t, s.Days)
		assert.True(t, prev.IsZero() || s.Start().After(prev), "spans out of order")
		prev = s.End()
		for _, d := range s.Days {
			assert.False(t, seen[d], "day %v in two spans", d)
			seen[d] = true
		}
	}
	assert.Len(t, seen, len(counts))
}

func TestGroupDays_Empty(t *testing.T) {
	assert.Empty(t, GroupDays(nil, DefaultOptions()))
}

func TestSessionDay(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want time.Time
	}{
		{"before rollover", time.Date(2025, 1, 2, 2, 59, 59, 0, time.UTC), jan(1)},
		{"at rollover", time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC), jan(2)},
		{"midnight", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), jan(1)},
		{"month boundary", time.Date(2025, 2, 1, 1, 0, 0, 0, time.UTC), jan(31)},
		{"local wall clock", time.Date(2025, 1, 2, 1, 0, 0, 0, time.FixedZone("PST", -8*3600)), jan(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(SessionDay(tt.t)), "got %v", SessionDay(tt.t))
		})
	}
}

func TestCluster(t *testing.T) {
	at := func(day, hour int) time.Time { return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC) }
	dated := []Dated{
		{Record: media.Record{Name: "a"}, Instant: at(1, 10)},
		{Record: media.Record{Name: "b"}, Instant: at(2, 1)}, // still Jan 1
		{Record: media.Record{Name: "c"}, Instant: at(2, 12)},
		{Record: media.Record{Name: "d"}, Instant: at(10, 12)},
	}

	buckets := Buckets(dated)
	require.Len(t, buckets, 3)
	assert.Len(t, buckets[0].Records, 2)

	groups := Cluster(buckets, DefaultOptions())
	require.Len(t, groups, 2)

	assert.True(t, jan(1).Equal(groups[0].Start()))
	assert.True(t, jan(2).Equal(groups[0].End()))
	var names []string
	for _, r := range groups[0].Records() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.True(t, groups[1].Single())
}

func TestBinName(t *testing.T) {
	single := Group{Buckets: []DayBucket{{Day: time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)}}}
	assert.Equal(t, "Monday, May 12th", BinName(single))

	multi := Group{Buckets: []DayBucket{
		{Day: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Day: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)},
		{Day: time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)},
	}}
	assert.Equal(t, "Thursday, May 1st - Saturday, May 3rd", BinName(multi))
}

func TestBinNames(t *testing.T) {
	day := func(y int, m time.Month, d int) Group {
		return Group{Buckets: []DayBucket{{Day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}}}
	}

	sameYear := []Group{day(2025, 5, 12), day(2025, 6, 23)}
	assert.Equal(t, []string{"Monday, May 12th", "Monday, June 23rd"}, BinNames(sameYear))

	years := []Group{day(2025, 5, 12), day(2031, 5, 12)}
	assert.Equal(t, []string{"Monday, May 12th 2025", "Monday, May 12th 2031"}, BinNames(years))

	newYear := []Group{{Buckets: []DayBucket{
		{Day: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
		{Day: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}}
	assert.Equal(t, []string{"Wednesday, December 31st 2025 - Thursday, January 1st 2026"}, BinNames(newYear))

	assert.Empty(t, BinNames(nil))
}

func TestOrdinalSuffix(t *testing.T) {
	want := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th", 21: "st", 22: "nd", 23: "rd", 31: "st"}
	for day, suffix := range want {
		assert.Equal(t, suffix, ordinalSuffix(day), "day %d", day)
	}
}
