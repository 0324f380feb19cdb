package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
)

// lenientDateLayouts are tried, in order, when a date string matches
// neither the ISO nor the slash form.
var lenientDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// NormalizeDate converts an OCR-returned date string to YYYY-MM-DD.
// Ambiguous numeric dates are disambiguated with the first-component
// rule: a leading component above 12 means day-first, otherwise
// month-first is assumed. Two-digit years below 50 map to 20xx, the
// rest to 19xx. Unparseable input yields nil, never an error.
func NormalizeDate(raw string) *string {
	if raw == "" {
		return nil
	}

	if isoDatePattern.MatchString(raw) {
		return &raw
	}

	if m := slashDatePattern.FindStringSubmatch(raw); m != nil {
		part1, _ := strconv.Atoi(m[1])
		part2, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])

		if year < 100 {
			if year < 50 {
				year = 2000 + year
			} else {
				year = 1900 + year
			}
		}

		var month, day int
		if part1 > 12 {
			day, month = part1, part2
		} else {
			month, day = part1, part2
		}

		if month > 0 && month <= 12 && day > 0 && day <= 31 {
			formatted := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			return &formatted
		}
	}

	for _, layout := range lenientDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			formatted := t.Format("2006-01-02")
			return &formatted
		}
	}

	return nil
}
