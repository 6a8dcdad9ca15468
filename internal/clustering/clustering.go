// Package clustering files dated records into day buckets and merges runs of
// quiet, consecutive days into shared groups.
package clustering

import (
	"sort"
	"time"

	"github.com/heimdex/reeldate/internal/media"
)

const (
	DefaultThreshold   = 20
	DefaultMaxSpanDays = 7

	// SessionRollover is the clock hour before which an instant still counts
	// toward the previous day's shoot.
	SessionRollover = 3
)

// Options bounds how days merge.
type Options struct {
	// Threshold is the largest day count that may share a group.
	Threshold int
	// MaxSpanDays is the exclusive limit on last-minus-first within a group.
	MaxSpanDays int
}

// DefaultOptions returns Threshold 20 and MaxSpanDays 7.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, MaxSpanDays: DefaultMaxSpanDays}
}

// Day truncates t to its calendar date, expressed as midnight UTC so that
// day arithmetic is free of DST.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SessionDay is the calendar date t is filed under: instants before 03:00
// belong to the previous day.
func SessionDay(t time.Time) time.Time {
	d := Day(t)
	if t.Hour() < SessionRollover {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// DaysBetween returns b - a in whole days for dates produced by Day.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// Span is one group of days as produced by GroupDays.
type Span struct {
	Days []time.Time
}

// Start is the first day of the span.
func (s Span) Start() time.Time { return s.Days[0] }

// End is the last day of the span.
func (s Span) End() time.Time { return s.Days[len(s.Days)-1] }

// GroupDays partitions the days of counts in one ascending sweep. A day over
// the threshold stands alone; otherwise a group absorbs each following day
// while it is exactly one day later, within the threshold and inside the
// span limit, and stops at the first day that is not.
func GroupDays(counts map[time.Time]int, opts Options) []Span {
	sizes := make(map[time.Time]int, len(counts))
	for d, n := range counts {
		sizes[Day(d)] += n
	}
	days := make([]time.Time, 0, len(sizes))
	for d := range sizes {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var spans []Span
	for i := 0; i < len(days); {
		first := days[i]
		if sizes[first] > opts.Threshold {
			spans = append(spans, Span{Days: []time.Time{first}})
			i++
			continue
		}

		group := []time.Time{first}
		j := i + 1
		for ; j < len(days); j++ {
			cand := days[j]
			last := group[len(group)-1]
			if DaysBetween(last, cand) != 1 {
				break
			}
			if sizes[cand] > opts.Threshold {
				break
			}
			if DaysBetween(first, cand) >= opts.MaxSpanDays {
				break
			}
			group = append(group, cand)
		}
		spans = append(spans, Span{Days: group})
		i = j
	}
	return spans
}

// DayBucket holds the records filed under one date.
type DayBucket struct {
	Day     time.Time
	Records []media.Record
}

// Group is a run of buckets that share one destination bin.
type Group struct {
	Buckets []DayBucket
}

// Start is the first date in the group.
func (g Group) Start() time.Time { return g.Buckets[0].Day }

// End is the last date in the group.
func (g Group) End() time.Time { return g.Buckets[len(g.Buckets)-1].Day }

// Single reports whether the group covers one day.
func (g Group) Single() bool { return len(g.Buckets) == 1 }

// Records returns the group's records in date order.
func (g Group) Records() []media.Record {
	var out []media.Record
	for _, b := range g.Buckets {
		out = append(out, b.Records...)
	}
	return out
}

// Dated pairs a record with the instant it resolved to.
type Dated struct {
	Record  media.Record
	Instant time.Time
}

// Buckets files records by SessionDay, keeping input order within a day,
// and returns the buckets in date order.
func Buckets(records []Dated) []DayBucket {
	index := make(map[time.Time]int)
	var buckets []DayBucket
	for _, r := range records {
		d := SessionDay(r.Instant)
		if i, ok := index[d]; ok {
			buckets[i].Records = append(buckets[i].Records, r.Record)
			continue
		}
		index[d] = len(buckets)
		buckets = append(buckets, DayBucket{Day: d, Records: []media.Record{r.Record}})
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })
	return buckets
}

// Counts is the per-day histogram of buckets.
func Counts(buckets []DayBucket) map[time.Time]int {
	counts := make(map[time.Time]int, len(buckets))
	for _, b := range buckets {
		counts[b.Day] += len(b.Records)
	}
	return counts
}

// Cluster groups buckets with GroupDays.
func Cluster(buckets []DayBucket, opts Options) []Group {
	byDay := make(map[time.Time]DayBucket, len(buckets))
	for _, b := range buckets {
		byDay[b.Day] = b
	}

	spans := GroupDays(Counts(buckets), opts)
	groups := make([]Group, 0, len(spans))
	for _, s := range spans {
		g := Group{Buckets: make([]DayBucket, 0, len(s.Days))}
		for _, d := range s.Days {
			g.Buckets = append(g.Buckets, byDay[d])
		}
		groups = append(groups, g)
	}
	return groups
}
