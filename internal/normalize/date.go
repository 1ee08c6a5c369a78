package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the canonical output layout for all parsed dates.
const ISODate = "2006-01-02"

// monthNames maps French and English month spellings (full and common
// abbreviations) to month numbers. OCR output loses accents often enough
// that both accented and bare spellings are listed.
var monthNames = map[string]time.Month{
	"janvier": time.January, "janv": time.January, "jan": time.January,
	"fevrier": time.February, "février": time.February, "fevr": time.February, "fev": time.February, "fév": time.February,
	"mars": time.March, "mar": time.March,
	"avril": time.April, "avr": time.April,
	"mai": time.May,
	"juin": time.June,
	"juillet": time.July, "juil": time.July,
	"aout": time.August, "août": time.August, "aou": time.August,
	"septembre": time.September, "sept": time.September, "sep": time.September,
	"octobre": time.October, "oct": time.October,
	"novembre": time.November, "nov": time.November,
	"decembre": time.December, "décembre": time.December, "dec": time.December, "déc": time.December,
	"january":  time.January,
	"february": time.February, "feb": time.February,
	"march": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

var (
	numericDateRe = regexp.MustCompile(`^(\d{1,4})[/.\-](\d{1,2})[/.\-](\d{1,4})$`)
	// "25 décembre 2023" / "25 dec 2023"
	dayFirstTextRe = regexp.MustCompile(`(?i)^(\d{1,2})(?:er|st|nd|rd|th)?\s+([a-zA-Zéûà]+)\.?\s+(\d{2,4})$`)
	// "December 25, 2023" / "Dec 25 2023"
	monthFirstTextRe = regexp.MustCompile(`(?i)^([a-zA-Zéûà]+)\.?\s+(\d{1,2})(?:er|st|nd|rd|th)?,?\s+(\d{2,4})$`)
)

// MonthByName resolves a month spelling in either supported language.
func MonthByName(name string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// PivotYear expands a two-digit year with a pivot at 50: <50 becomes 20xx,
// >=50 becomes 19xx. Four-digit years pass through.
func PivotYear(y int) int {
	if y >= 100 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

// ResolveDMY disambiguates three numeric date components. Order of
// preference: a leading number > 31 is a year (ISO-like year-month-day),
// a trailing number > 31 is a year with day-month-year order, and when
// neither disambiguates, day-month-year is assumed. The day-first default
// is a deliberate locale bias (receipts from the primary deployment are
// French), not a verified inference.
func ResolveDMY(a, b, c int) (year int, month time.Month, day int, ok bool) {
	switch {
	case a > 31:
		year, month, day = PivotYear(a), time.Month(b), c
	case c > 31:
		year, month, day = PivotYear(c), time.Month(b), a
	default:
		year, month, day = PivotYear(c), time.Month(b), a
	}
	if !validDate(year, month, day) {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// validDate rejects impossible calendar dates (month 13, Feb 30) instead of
// letting time.Date silently normalize them.
func validDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return false
	}
	if year < 1900 || year > 2100 {
		return false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == month && t.Day() == day
}

// ParseDate parses one raw date substring into the canonical YYYY-MM-DD
// form. It handles numeric forms with /, - and . separators, two-digit
// years, and month-name spellings in French and English in both day-first
// and month-first orders. Invalid calendar dates return ok=false.
func ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		c, _ := strconv.Atoi(m[3])
		year, month, day, ok := ResolveDMY(a, b, c)
		if !ok {
			return "", false
		}
		return formatISO(year, month, day), true
	}

	if m := dayFirstTextRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := MonthByName(m[2])
		if !ok {
			return "", false
		}
		y, _ := strconv.Atoi(m[3])
		year := PivotYear(y)
		if !validDate(year, month, day) {
			return "", false
		}
		return formatISO(year, month, day), true
	}

	if m := monthFirstTextRe.FindStringSubmatch(s); m != nil {
		month, ok := MonthByName(m[1])
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		year := PivotYear(y)
		if !validDate(year, month, day) {
			return "", false
		}
		return formatISO(year, month, day), true
	}

	return "", false
}

func formatISO(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}
