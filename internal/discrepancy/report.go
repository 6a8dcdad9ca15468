package discrepancy

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const exampleLayout = "2006-01-02 15:04:05"

// FormatDuration renders the magnitude of seconds as "1d 2h 3m". Seconds are
// shown only when no larger unit is present; zero renders as "0s".
func FormatDuration(seconds float64) string {
	total := int64(math.Abs(seconds))
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	secs := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 && secs > 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

func relation(seconds float64) string {
	if seconds >= 0 {
		return "after"
	}
	return "before"
}

// describe phrases an offset as "<first> is <duration> after <second>".
func describe(o Offset) string {
	a, b := o.Pair.Operands()
	return fmt.Sprintf("%s is %s %s %s", a, FormatDuration(o.Seconds), relation(o.Seconds), b)
}

func (v Verdict) String() string {
	switch v {
	case ModificationMatchesFilename:
		return "Filename and Modification dates are consistent."
	case CreationMatchesFilename:
		return "Filename and Creation dates are consistent."
	case ModificationMatchesCreation:
		return "Creation and Modification dates are consistent."
	default:
		return "No two sources are consistently within 1 minute."
	}
}

// Render writes a human-readable summary of reports to w.
func Render(w io.Writer, reports []Report) error {
	var b strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&b, "===== Prefix: %s (%d clips) =====\n", r.Key, r.Count)
		fmt.Fprintf(&b, "  - %s\n", r.Verdict)
		if r.Note != nil {
			a, c := r.Note.Pair.Operands()
			fmt.Fprintf(&b, "    - Note: %s date is typically %s %s %s date.\n",
				a, FormatDuration(r.Note.Seconds), relation(r.Note.Seconds), c)
		}
		if r.Dominant != nil {
			fmt.Fprintf(&b, "  - Most common offset: %s.\n", describe(*r.Dominant))
			a, c := r.Dominant.Pair.Operands()
			if r.FirstExample != nil {
				b.WriteString("    - Example Discrepancy:\n")
				writeExample(&b, "First Clip: ", a.String(), c.String(), r.FirstExample)
			}
			if r.LastExample != nil {
				writeExample(&b, "Last Clip:  ", a.String(), c.String(), r.LastExample)
			}
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeExample(b *strings.Builder, label, first, second string, ex *Example) {
	fmt.Fprintf(b, "      - %s%s\n", label, ex.Name)
	fmt.Fprintf(b, "        - %s: %s\n", first, ex.First.Format(exampleLayout))
	fmt.Fprintf(b, "        - %s: %s\n", second, ex.Second.Format(exampleLayout))
}
