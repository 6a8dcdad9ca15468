package clustering

import (
	"strconv"
	"time"
)

// DayName renders a date as "Monday, May 12th".
func DayName(d time.Time) string {
	return d.Format("Monday, January ") + strconv.Itoa(d.Day()) + ordinalSuffix(d.Day())
}

// DayNameWithYear renders a date as "Monday, May 12th 2025".
func DayNameWithYear(d time.Time) string {
	return DayName(d) + " " + strconv.Itoa(d.Year())
}

// BinName names the bin for g: the single day, or "first - last".
func BinName(g Group) string {
	return binName(g, DayName)
}

// BinNames names the bin of every group. When the groups cover more than one
// calendar year each name carries its year, so the same weekday and date in
// different years land in different bins.
func BinNames(groups []Group) []string {
	day := DayName
	if spansYears(groups) {
		day = DayNameWithYear
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = binName(g, day)
	}
	return names
}

func binName(g Group, day func(time.Time) string) string {
	if g.Single() {
		return day(g.Start())
	}
	return day(g.Start()) + " - " + day(g.End())
}

func spansYears(groups []Group) bool {
	if len(groups) == 0 {
		return false
	}
	year := groups[0].Start().Year()
	for _, g := range groups {
		if g.Start().Year() != year || g.End().Year() != year {
			return true
		}
	}
	return false
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
