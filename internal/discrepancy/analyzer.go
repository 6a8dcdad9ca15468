// Package discrepancy measures systematic clock skew between the filename,
// creation and modification dates of a batch of clips.
package discrepancy

import (
	"math"
	"sort"
	"time"

	"github.com/heimdex/reeldate/internal/media"
	"github.com/heimdex/reeldate/internal/resolve"
)

// Tolerance is the largest offset still treated as agreement, and the
// rounding step applied before taking the mode.
const Tolerance = 60.0

// Pair identifies an ordered source difference, first operand minus second.
type Pair int

const (
	CreationFilename Pair = iota
	ModificationFilename
	ModificationCreation
)

// Operands returns the sources subtracted by p.
func (p Pair) Operands() (resolve.Source, resolve.Source) {
	switch p {
	case CreationFilename:
		return resolve.SourceCreation, resolve.SourceFilename
	case ModificationFilename:
		return resolve.SourceModification, resolve.SourceFilename
	default:
		return resolve.SourceModification, resolve.SourceCreation
	}
}

func (p Pair) String() string {
	a, b := p.Operands()
	return a.String() + "-" + b.String()
}

// Sample is one record's signed difference for a pair, in seconds.
type Sample struct {
	Record  media.Record
	Pair    Pair
	Seconds float64
	// First and Second are the operand instants.
	First, Second time.Time
}

// Mode summarizes a pair's samples.
type Mode struct {
	Seconds float64
	// Support counts samples whose rounded value equals the mode; zero when
	// the value is a mean fallback.
	Support int
	Samples int
}

// FromMode reports whether Seconds is a true mode rather than a mean.
func (m Mode) FromMode() bool { return m.Support > 0 }

// Consistent reports whether the pair agrees within Tolerance.
func (m *Mode) Consistent() bool {
	return m != nil && math.Abs(m.Seconds) <= Tolerance
}

// Verdict is the analyzer's conclusion for a group.
type Verdict int

const (
	ModificationMatchesFilename Verdict = iota
	CreationMatchesFilename
	ModificationMatchesCreation
	NoAgreement
)

// Offset is a typical signed offset for a pair.
type Offset struct {
	Pair    Pair
	Seconds float64
}

// Example is an illustrative record for a reported offset.
type Example struct {
	Name          string
	First, Second time.Time
}

// Report is the diagnostic for one group of records.
type Report struct {
	Key   string
	Count int

	CreationFilename     *Mode
	ModificationFilename *Mode
	ModificationCreation *Mode

	Verdict Verdict
	// Note accompanies a partial agreement: the typical offset of the pair
	// that does not agree.
	Note *Offset
	// Dominant is set for NoAgreement when a filename pair is available.
	Dominant *Offset
	// FirstExample and LastExample bracket the records that follow Dominant.
	FirstExample *Example
	LastExample  *Example
}

// Mode returns the summary for p, or nil when no samples exist.
func (r *Report) Mode(p Pair) *Mode {
	switch p {
	case CreationFilename:
		return r.CreationFilename
	case ModificationFilename:
		return r.ModificationFilename
	default:
		return r.ModificationCreation
	}
}

// SourceReader yields the raw, unadjusted instants of a record in
// Filename, Creation, Modification order. resolve.Engine satisfies it.
type SourceReader interface {
	Sources(rec media.Record) [3]time.Time
}

// KeyFunc assigns a record to an analysis group.
type KeyFunc func(rec media.Record) string

// Analyzer builds reports. It only reads records.
type Analyzer struct {
	sources SourceReader
}

// NewAnalyzer returns an analyzer over sources.
func NewAnalyzer(sources SourceReader) *Analyzer {
	return &Analyzer{sources: sources}
}

// Analyze groups records by key and reports on each group in key order.
func (a *Analyzer) Analyze(records []media.Record, key KeyFunc) []Report {
	groups := make(map[string][]media.Record)
	var keys []string
	for _, rec := range records {
		k := key(rec)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], rec)
	}
	sort.Strings(keys)

	reports := make([]Report, 0, len(keys))
	for _, k := range keys {
		reports = append(reports, a.AnalyzeGroup(k, groups[k]))
	}
	return reports
}

// Samples computes every resolvable offset sample for records.
func (a *Analyzer) Samples(records []media.Record) map[Pair][]Sample {
	out := make(map[Pair][]Sample, 3)
	for _, rec := range records {
		src := a.sources.Sources(rec)
		for _, p := range []Pair{CreationFilename, ModificationFilename, ModificationCreation} {
			x, y := p.Operands()
			first, second := src[x], src[y]
			if first.IsZero() || second.IsZero() {
				continue
			}
			out[p] = append(out[p], Sample{
				Record:  rec,
				Pair:    p,
				Seconds: first.Sub(second).Seconds(),
				First:   first,
				Second:  second,
			})
		}
	}
	return out
}

// AnalyzeGroup reports on one group of records.
func (a *Analyzer) AnalyzeGroup(key string, records []media.Record) Report {
	samples := a.Samples(records)
	r := Report{
		Key:                  key,
		Count:                len(records),
		CreationFilename:     ModeOf(samples[CreationFilename]),
		ModificationFilename: ModeOf(samples[ModificationFilename]),
		ModificationCreation: ModeOf(samples[ModificationCreation]),
	}

	switch {
	case r.ModificationFilename.Consistent():
		r.Verdict = ModificationMatchesFilename
	case r.CreationFilename.Consistent():
		r.Verdict = CreationMatchesFilename
		if m := r.ModificationCreation; m != nil {
			r.Note = &Offset{Pair: ModificationCreation, Seconds: m.Seconds}
		}
	case r.ModificationCreation.Consistent():
		r.Verdict = ModificationMatchesCreation
		if m := r.CreationFilename; m != nil {
			r.Note = &Offset{Pair: CreationFilename, Seconds: m.Seconds}
		}
	default:
		r.Verdict = NoAgreement
		p, m := dominant(r.CreationFilename, r.ModificationFilename)
		if m == nil {
			break
		}
		r.Dominant = &Offset{Pair: p, Seconds: m.Seconds}
		r.FirstExample, r.LastExample = examples(samples[p], m.Seconds)
	}
	return r
}

// dominant picks the filename pair to report when nothing agrees. A real
// mode beats a mean fallback; between two modes the better supported wins;
// otherwise Creation-Filename is preferred.
func dominant(cn, mn *Mode) (Pair, *Mode) {
	switch {
	case cn == nil && mn == nil:
		return 0, nil
	case mn == nil:
		return CreationFilename, cn
	case cn == nil:
		return ModificationFilename, mn
	}

	if mn.FromMode() && !cn.FromMode() {
		return ModificationFilename, mn
	}
	if mn.FromMode() && cn.FromMode() && support(mn) > support(cn) {
		return ModificationFilename, mn
	}
	return CreationFilename, cn
}

func support(m *Mode) float64 {
	if m.Samples == 0 {
		return 0
	}
	return float64(m.Support) / float64(m.Samples)
}

// examples returns the earliest and latest samples, ordered by the first
// operand, whose offset lies within Tolerance of mode.
func examples(samples []Sample, mode float64) (*Example, *Example) {
	var matching []Sample
	for _, s := range samples {
		if math.Abs(s.Seconds-mode) < Tolerance {
			matching = append(matching, s)
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}
	sort.SliceStable(matching, func(i, j int) bool { return matching[i].First.Before(matching[j].First) })

	first := toExample(matching[0])
	if len(matching) == 1 {
		return first, nil
	}
	return first, toExample(matching[len(matching)-1])
}

func toExample(s Sample) *Example {
	return &Example{Name: s.Record.Name, First: s.First, Second: s.Second}
}

// ModeOf rounds each sample to the nearest minute and returns the most
// frequent value, the first seen on ties. When every rounded value is
// distinct it falls back to the mean of the unrounded seconds. Returns nil
// for no samples.
func ModeOf(samples []Sample) *Mode {
	if len(samples) == 0 {
		return nil
	}

	counts := make(map[float64]int, len(samples))
	var order []float64
	for _, s := range samples {
		v := math.Round(s.Seconds/Tolerance) * Tolerance
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	var (
		best      float64
		bestCount int
	)
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}

	if bestCount > 1 || len(samples) == 1 {
		return &Mode{Seconds: best, Support: bestCount, Samples: len(samples)}
	}

	var sum float64
	for _, s := range samples {
		sum += s.Seconds
	}
	return &Mode{Seconds: sum / float64(len(samples)), Samples: len(samples)}
}
