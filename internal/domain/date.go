package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseableDate reports a date value no supported format could read.
var ErrUnparseableDate = errors.New("unparseable date")

// dateLayouts is tried in order; the first layout that parses the whole
// string wins. Day-first layouts precede month-first ones so ambiguous
// triples like "03-04-2024" resolve as 3 April.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-Jan-2006",
	"2006/01/02",
}

// dateSeparators folds the separator variants seen in hand-maintained sheets
// into a single token for the permissive fallback.
var dateSeparators = strings.NewReplacer("/", "-", ".", "-", ",", "-", " ", "-")

// ParseDate parses a date-like string into a calendar date. It tries the
// explicit layout list first, then a permissive day-first interpretation.
// Failures return ErrUnparseableDate; callers drop the owning row when the
// table declares a Date column.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrUnparseableDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	if t, ok := parseDayFirst(raw); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
}

// parseDayFirst handles date strings outside the explicit layout list: mixed
// separators, month names in odd positions, unpadded fields. The year must be
// a four-digit field at either end; of the remaining two fields, the day is
// taken before the month whenever the assignment is ambiguous.
func parseDayFirst(raw string) (time.Time, bool) {
	var fields []string
	for f := range strings.SplitSeq(dateSeparators.Replace(raw), "-") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) != 3 {
		return time.Time{}, false
	}

	var year int
	var rest []string
	switch {
	case isFourDigits(fields[0]):
		year, _ = strconv.Atoi(fields[0])
		rest = []string{fields[1], fields[2]}
		// Year-first strings read year-month-day.
		rest[0], rest[1] = rest[1], rest[0]
	case isFourDigits(fields[2]):
		year, _ = strconv.Atoi(fields[2])
		rest = []string{fields[0], fields[1]}
	default:
		return time.Time{}, false
	}

	day, month, ok := pickDayMonth(rest[0], rest[1])
	if !ok {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 31 -> Mar 2); reject those.
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// pickDayMonth assigns the two non-year fields, preferring the day-first
// reading. Either field may be a month name.
func pickDayMonth(a, b string) (int, time.Month, bool) {
	if m, ok := monthOf(a); ok {
		d, ok := dayOf(b)
		return d, m, ok
	}
	if m, ok := monthOf(b); ok {
		d, ok := dayOf(a)
		return d, m, ok
	}

	av, errA := strconv.Atoi(a)
	bv, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return 0, 0, false
	}

	switch {
	case av >= 1 && av <= 31 && bv >= 1 && bv <= 12:
		return av, time.Month(bv), true
	case av >= 1 && av <= 12 && bv >= 1 && bv <= 31:
		return bv, time.Month(av), true
	default:
		return 0, 0, false
	}
}

// monthOf matches month names only ("Jun", "June"). Numeric months are
// resolved by pickDayMonth so the day-first preference applies.
func monthOf(s string) (time.Month, bool) {
	if t, err := time.Parse("Jan", s); err == nil {
		return t.Month(), true
	}
	if t, err := time.Parse("January", s); err == nil {
		return t.Month(), true
	}
	return 0, false
}

func dayOf(s string) (int, bool) {
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
