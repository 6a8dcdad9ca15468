package datename

import (
	"regexp"
	"strconv"
	"time"
)

// Rule is one filename pattern paired with the validator that turns its
// submatches into calendar fields. Rules are tried in order; a rule whose
// match fails validation does not stop the search.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// Validate receives the full submatch slice and reports whether the
	// captured values form a legal calendar instant.
	Validate func(m []string) (Fields, bool)
}

// Fields is a broken-down wall-clock instant, not yet bound to a location.
type Fields struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Microsecond          int
}

// Time binds the fields to loc.
func (f Fields) Time(loc *time.Location) time.Time {
	return time.Date(f.Year, time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, f.Microsecond*1000, loc)
}

// DefaultRules is the ordered rule set, most specific first.
var DefaultRules = []Rule{
	{
		Name:     "camera",
		Pattern:  regexp.MustCompile(`(?i)^(?:PXL_|VID_?|IMG_?|DJI_|GOPR|GPMF|GH|GX|G[EH]P)?(\d{4})(\d{2})(\d{2})_?(\d{2})(\d{2})(\d{2})[._-]?(\d{1,6})?`),
		Validate: dateTime,
	},
	{
		Name:     "plain",
		Pattern:  regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})[._-]?(\d{1,6})?`),
		Validate: dateTime,
	},
	{
		Name:     "dashed",
		Pattern:  regexp.MustCompile(`(?i)^(?:signal-)?(\d{4})-(\d{2})-(\d{2})-(\d{2})-(\d{2})-(\d{2})(?:[_-](\d{1,6}))?`),
		Validate: dateTime,
	},
	{
		Name:     "embedded",
		Pattern:  regexp.MustCompile(`(?:^|\D)(\d{4})(\d{2})(\d{2})[_-](\d{2})(\d{2})(\d{2})(?:[._-](\d{1,6}))?(?:\D|$)`),
		Validate: dateTime,
	},
	{
		Name:     "messenger",
		Pattern:  regexp.MustCompile(`(?i)^(?:IMG-|VID-)?(\d{4})(\d{2})(\d{2})-WA\d+`),
		Validate: dateOnly,
	},
	{
		Name:     "date",
		Pattern:  regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`),
		Validate: dateOnly,
	},
}

func dateTime(m []string) (Fields, bool) {
	if len(m) < 7 {
		return Fields{}, false
	}
	f, ok := dateOnly(m)
	if !ok {
		return Fields{}, false
	}
	f.Hour = atoi(m[4])
	f.Minute = atoi(m[5])
	f.Second = atoi(m[6])
	if f.Hour > 23 || f.Minute > 59 || f.Second > 59 {
		return Fields{}, false
	}
	if len(m) > 7 && m[7] != "" {
		f.Microsecond = Microseconds(m[7])
	}
	return f, true
}

func dateOnly(m []string) (Fields, bool) {
	if len(m) < 4 {
		return Fields{}, false
	}
	f := Fields{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
	if f.Year < 1 || f.Month < 1 || f.Month > 12 || f.Day < 1 {
		return Fields{}, false
	}
	if f.Day > daysIn(f.Year, f.Month) {
		return Fields{}, false
	}
	return f, true
}

// Microseconds right-pads a 1-6 digit fraction with zeros and reads the
// first six digits, so "5" is 500000 and "1234567" is 123456.
func Microseconds(frac string) int {
	padded := (frac + "000000")[:6]
	return atoi(padded)
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
