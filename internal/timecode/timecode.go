// Package timecode encodes wall-clock instants as SMPTE-style time-of-day
// timecodes.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFrameRate is returned for rates that cannot drive a frame count.
var ErrInvalidFrameRate = errors.New("invalid frame rate")

// Timecode is a decomposed HH:MM:SS:FF value.
type Timecode struct {
	Hours, Minutes, Seconds, Frames int
	DropFrame                       bool
}

// String formats the timecode, using ';' separators for drop-frame. The
// separator is notation only; frame numbering is never dropped.
func (tc Timecode) String() string {
	sep := ":"
	if tc.DropFrame {
		sep = ";"
	}
	return fmt.Sprintf("%02d%s%02d%s%02d%s%02d", tc.Hours, sep, tc.Minutes, sep, tc.Seconds, sep, tc.Frames)
}

// Nominal returns round(rate), the frames-per-second divisor, or an error
// when the rate is unusable. A rate above its rounding is rejected: a day's
// frames would then count past 23:59:59.
func Nominal(rate float64) (int64, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFrameRate, rate)
	}
	fps := int64(math.Round(rate))
	if fps < 1 {
		return 0, fmt.Errorf("%w: %v rounds to zero", ErrInvalidFrameRate, rate)
	}
	if float64(fps) < rate {
		return 0, fmt.Errorf("%w: %v exceeds its nominal rate %d", ErrInvalidFrameRate, rate, fps)
	}
	return fps, nil
}

// FromInstant computes the time-of-day timecode of t at rate.
func FromInstant(t time.Time, rate float64, dropFrame bool) (Timecode, error) {
	fps, err := Nominal(rate)
	if err != nil {
		return Timecode{}, err
	}

	wholeSeconds := int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
	fraction := float64(t.Nanosecond()) / float64(time.Second)

	total := int64(math.Floor(float64(wholeSeconds)*rate)) + int64(math.Floor(fraction*rate))

	perDay := int64(math.Round(24 * 3600 * rate))
	total %= perDay

	frames := total % fps
	secs := total / fps
	return Timecode{
		Hours:     int(secs / 3600),
		Minutes:   int(secs / 60 % 60),
		Seconds:   int(secs % 60),
		Frames:    int(frames),
		DropFrame: dropFrame,
	}, nil
}

// Encode returns the formatted time-of-day timecode of t at rate.
func Encode(t time.Time, rate float64, dropFrame bool) (string, error) {
	tc, err := FromInstant(t, rate, dropFrame)
	if err != nil {
		return "", err
	}
	return tc.String(), nil
}

// ParseRate reads a frame rate property such as "23.976" or "25".
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidFrameRate)
	}
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
	}
	if _, err := Nominal(rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// IsDropFrameRate reports whether rate is one of the NTSC rates that are
// conventionally shown with drop-frame notation.
func IsDropFrameRate(rate float64) bool {
	return math.Abs(rate-29.97) < 0.01 || math.Abs(rate-59.94) < 0.01
}

var pattern = regexp.MustCompile(`^\d{2}[:;]\d{2}[:;]\d{2}[:;]\d{2}$`)

// Valid reports whether s looks like HH:MM:SS:FF with ':' or ';'.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
