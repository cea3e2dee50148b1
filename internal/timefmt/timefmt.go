// Package timefmt renders and parses the human-readable timestamp stored on
// every canonical event, e.g. "30th January 2026 - 8:06 AM UTC".
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	ZoneUTC = "UTC"
	ZoneIST = "IST"
)

// istOffset is the fixed secondary-zone offset appended on read.
var istOffset = 5*time.Hour + 30*time.Minute

// Ordinal returns the English ordinal suffix for a day of month.
func Ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
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

// Format renders t (converted to UTC) in the canonical grammar.
func Format(t time.Time) string {
	return render(t.UTC(), ZoneUTC)
}

func render(t time.Time, zone string) string {
	return fmt.Sprintf("%d%s %s %d - %s %s",
		t.Day(), Ordinal(t.Day()), t.Month().String(), t.Year(), t.Format("3:04 PM"), zone)
}

// Parse reads a canonical UTC timestamp back into a time.Time.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutSuffix(s, " "+ZoneUTC)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp %q: missing %s zone", s, ZoneUTC)
	}
	datePart, clockPart, ok := strings.Cut(rest, " - ")
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp %q: missing date/time separator", s)
	}

	fields := strings.Fields(datePart)
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("timestamp %q: malformed date", s)
	}
	day, err := parseDay(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}

	date, err := time.Parse("January 2006", fields[1]+" "+fields[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	clock, err := time.Parse("3:04 PM", clockPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}

	t := time.Date(date.Year(), date.Month(), day, clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("timestamp %q: day out of range", s)
	}
	return t, nil
}

func parseDay(s string) (int, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("malformed day %q", s)
	}
	num, suffix := s[:len(s)-2], s[len(s)-2:]
	day, err := strconv.Atoi(num)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("malformed day %q", s)
	}
	if Ordinal(day) != suffix {
		return 0, fmt.Errorf("day %q has wrong ordinal suffix", s)
	}
	return day, nil
}

// HasIST reports whether s already carries the secondary-zone annotation.
func HasIST(s string) bool {
	return strings.Contains(s, ZoneIST)
}

// AnnotateIST appends the IST rendering of a canonical UTC timestamp in
// parentheses. Already annotated or unparseable input is returned unchanged.
func AnnotateIST(s string) string {
	if HasIST(s) {
		return s
	}
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return s + " (" + render(t.Add(istOffset), ZoneIST) + ")"
}

// Sanitize makes a timestamp safe for use inside a synthesized identifier.
func Sanitize(s string) string {
	return strings.NewReplacer(" ", "-", ":", "-").Replace(s)
}
