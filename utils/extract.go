package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DefaultTime is used when a booking never mentioned a time.
const DefaultTime = "10:00"

const DateLayout = "2006-01-02"

var (
	timePattern    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)\b|\b(\d{1,2})[:.](\d{2})\b`)
	weekdayPattern = regexp.MustCompile(`(?i)\b(mon|tue|wed|thu|fri|sat|sun)[a-z]*\b`)
	sameDayWords   = []string{"today", "tonight"}

	dateParser = newDateParser()
)

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ExtractCity returns the first known city mentioned in text, in the
// catalog's spelling.
func ExtractCity(text string, cities []string) string {
	return firstWord(text, cities)
}

func ExtractDepartment(text string, departments []string) string {
	return firstWord(text, departments)
}

func ExtractHospital(text string, names []string) string {
	return firstWord(text, names)
}

// firstWord matches candidates as whole words so that short labels such as
// "ENT" are not found inside "appointment".
func firstWord(text string, candidates []string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(c) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return c
		}
	}
	return ""
}

// RemoveWords drops every whole-word occurrence of the given names from text
// and collapses the leftover spacing.
func RemoveWords(text string, lists ...[]string) string {
	for _, names := range lists {
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				continue
			}
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
			text = re.ReplaceAllString(text, " ")
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// ExtractTime finds the first clock time in text ("11am", "2:30 pm",
// "14.15") and returns it as 24-hour "HH:MM". Out-of-range values are
// treated as absent.
func ExtractTime(text string) (string, bool) {
	for _, m := range timePattern.FindAllStringSubmatch(text, -1) {
		if m[3] != "" {
			hour, _ := strconv.Atoi(m[1])
			minute := 0
			if m[2] != "" {
				minute, _ = strconv.Atoi(m[2])
			}
			if hour < 1 || hour > 12 || minute > 59 {
				continue
			}
			switch {
			case strings.EqualFold(m[3], "am") && hour == 12:
				hour = 0
			case strings.EqualFold(m[3], "pm") && hour != 12:
				hour += 12
			}
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}

		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		if hour > 23 || minute > 59 {
			continue
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	return "", false
}

// ExtractDate parses a natural-language date relative to now. Expressions
// that only name a time of day are not dates. Dates that fall before today
// are moved forward: a weekday by one week, anything else by one year.
func ExtractDate(text string, now time.Time) (time.Time, bool) {
	r, err := dateParser.Parse(text, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}

	today := truncateDay(now)
	day := truncateDay(r.Time)
	lower := strings.ToLower(r.Text)

	if day.Equal(today) && !containsAny(strings.ToLower(text), sameDayWords) {
		return time.Time{}, false
	}

	for day.Before(today) {
		if weekdayPattern.MatchString(lower) {
			day = day.AddDate(0, 0, 7)
		} else {
			day = day.AddDate(1, 0, 0)
		}
	}
	return day, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
