package parsers

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// patternGroup is a single named, total extractor: it either returns a
// complete EventDate or reports ok=false, never panics. Groups are tried
// in a fixed order: the ISO family, then the non-ISO family.
type patternGroup func(s string) (EventDate, bool)

var isoGroups = []patternGroup{
	parseISOSingleDate,
	parseISOSingleYear,
	parseISOMonthNameDate,
	parseISODateRange,
	parseISODayDateRange,
	parseISODayMonthRange,
	parseISODateTimeRange,
	parseISOMonthDate,
	parseISOMonthDateRange,
	parseISOMonthYearDateRange,
	parseISOYearRange,
	parseISOVerboseDateTimeRange,
	parseISOVerboseDateTime,
}

var nonISOGroups = []patternGroup{
	parseNonISODateTime,
	parseNonISOSingleDate,
}

// ParseDate attempts to extract an EventDate from s, trying the ISO pattern
// family then the non-ISO family, validating each syntactic match against
// the year-range bounds. It never panics and never returns an error: a
// caller that needs "no match" sees ok=false.
func ParseDate(s string, minYear, maxYear int) (EventDate, bool) {
	s = normalize(s)
	if s == "" {
		return EventDate{}, false
	}

	for _, g := range isoGroups {
		if ed, ok := g(s); ok && isValid(ed, minYear, maxYear) {
			return ed, true
		}
	}
	for _, g := range nonISOGroups {
		if ed, ok := g(s); ok && isValid(ed, minYear, maxYear) {
			return ed, true
		}
	}
	return EventDate{}, false
}

// ParseDateDefault calls ParseDate with this repo's default year bounds:
// years from 1600 up to the current year.
func ParseDateDefault(s string) (EventDate, bool) {
	return ParseDate(s, 1600, time.Now().Year())
}

var subSecondRe = regexp.MustCompile(`(T\d{2}:\d{2}:\d{2})\.\d+(Z|[+-]\d{2}:?\d{2})?`)

// normalize trims the input and strips sub-second precision from anything
// matching a full ISO date-time, keeping the zone suffix.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = subSecondRe.ReplaceAllString(s, "$1$2")
	return s
}

func isValid(ed EventDate, minYear, maxYear int) bool {
	sy, ok := atoi(ed.StartYear)
	if !ok {
		return false
	}
	ey := sy
	if ed.EndYear != "" {
		ey, ok = atoi(ed.EndYear)
		if !ok {
			return false
		}
	}
	if sy > ey {
		return false
	}
	if ey < minYear {
		return false
	}
	if sy > maxYear {
		return false
	}
	return true
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// --- ISO family -------------------------------------------------------

var offsetRe = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)

func stripOffset(s string) string {
	return offsetRe.ReplaceAllString(s, "")
}

var reISOSingleDate = regexp.MustCompile(`^(\d{4})[-/](\d{2})[-/](\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2}))?)?$`)

func parseISOSingleDate(s string) (EventDate, bool) {
	m := reISOSingleDate.FindStringSubmatch(stripOffset(s))
	if m == nil {
		return EventDate{}, false
	}
	return singleDateFromYMD(m[1], m[2], m[3])
}

func singleDateFromYMD(y, mo, d string) (EventDate, bool) {
	t, err := time.Parse("2006-01-02", y+"-"+mo+"-"+d)
	if err != nil {
		return EventDate{}, false
	}
	return EventDate{
		ParsedStartDate: t,
		StartDay:        d,
		StartMonth:      mo,
		StartYear:       y,
		ParsedEndDate:   t,
		EndDay:          d,
		EndMonth:        mo,
		EndYear:         y,
		SingleDate:      true,
	}, true
}

var reISOSingleYear = regexp.MustCompile(`^(\d{4})(?:-00-00)?$`)

func parseISOSingleYear(s string) (EventDate, bool) {
	m := reISOSingleYear.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	y := m[1]
	t, _ := time.Parse("2006", y)
	return EventDate{
		ParsedStartDate: t,
		StartYear:       y,
		ParsedEndDate:   t,
		EndYear:         y,
		SingleDate:      true,
	}, true
}

var monthNames = map[string]string{
	"january": "01", "february": "02", "march": "03", "april": "04",
	"may": "05", "june": "06", "july": "07", "august": "08",
	"september": "09", "october": "10", "november": "11", "december": "12",
}

var shortMonthNames = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04", "may": "05", "jun": "06",
	"jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

var reISOMonthNameDate = regexp.MustCompile(`(?i)^(\d{4})-([a-zA-Z]+)-(\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2}))?)?$`)

func parseISOMonthNameDate(s string) (EventDate, bool) {
	m := reISOMonthNameDate.FindStringSubmatch(stripOffset(s))
	if m == nil {
		return EventDate{}, false
	}
	mo, ok := monthNames[strings.ToLower(m[2])]
	if !ok {
		return EventDate{}, false
	}
	return singleDateFromYMD(m[1], mo, m[3])
}

func splitRange(s string) (string, string, bool) {
	idx := strings.Index(s, "/")
	if idx <= 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func parseISODateRange(s string) (EventDate, bool) {
	left, right, ok := splitRange(s)
	if !ok {
		return EventDate{}, false
	}
	l, lok := parseISOSingleDate(left)
	if !lok {
		l, lok = parseISOMonthNameDate(left)
	}
	r, rok := parseISOSingleDate(right)
	if !rok {
		r, rok = parseISOMonthNameDate(right)
	}
	if !lok || !rok {
		return EventDate{}, false
	}
	return EventDate{
		ParsedStartDate: l.ParsedStartDate,
		StartDay:        l.StartDay,
		StartMonth:      l.StartMonth,
		StartYear:       l.StartYear,
		ParsedEndDate:   r.ParsedEndDate,
		EndDay:          r.EndDay,
		EndMonth:        r.EndMonth,
		EndYear:         r.EndYear,
		SingleDate:      false,
	}, true
}

var reISODayDateRange = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})/(\d{2})$`)

func parseISODayDateRange(s string) (EventDate, bool) {
	m := reISODayDateRange.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	start, sok := singleDateFromYMD(m[1], m[2], m[3])
	end, eok := singleDateFromYMD(m[1], m[2], m[4])
	if !sok || !eok {
		return EventDate{}, false
	}
	start.ParsedEndDate = end.ParsedEndDate
	start.EndDay, start.EndMonth, start.EndYear = end.EndDay, end.EndMonth, end.EndYear
	start.SingleDate = false
	return start, true
}

var reISODayMonthRange = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})/(\d{2})-(\d{2})$`)

func parseISODayMonthRange(s string) (EventDate, bool) {
	m := reISODayMonthRange.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	start, sok := singleDateFromYMD(m[1], m[2], m[3])
	end, eok := singleDateFromYMD(m[1], m[4], m[5])
	if !sok || !eok {
		return EventDate{}, false
	}
	start.ParsedEndDate = end.ParsedEndDate
	start.EndDay, start.EndMonth, start.EndYear = end.EndDay, end.EndMonth, end.EndYear
	start.SingleDate = false
	return start, true
}

var reISODateTimeRangeHalf = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2}):(\d{2})$`)

func parseISODateTimeRange(s string) (EventDate, bool) {
	left, right, ok := splitRange(s)
	if !ok {
		return EventDate{}, false
	}
	lm := reISODateTimeRangeHalf.FindStringSubmatch(stripOffset(left))
	rm := reISODateTimeRangeHalf.FindStringSubmatch(stripOffset(right))
	if lm == nil || rm == nil {
		return EventDate{}, false
	}
	start, sok := singleDateFromYMD(lm[1], lm[2], lm[3])
	end, eok := singleDateFromYMD(rm[1], rm[2], rm[3])
	if !sok || !eok {
		return EventDate{}, false
	}
	start.ParsedEndDate = end.ParsedEndDate
	start.EndDay, start.EndMonth, start.EndYear = end.EndDay, end.EndMonth, end.EndYear
	start.SingleDate = false
	return start, true
}

var reISOMonthDateA = regexp.MustCompile(`^(\d{4})-(\d{2})(?:-00)?$`)
var reISOMonthDateB = regexp.MustCompile(`(?i)^([a-zA-Z]{3})-(\d{4})$`)

func parseISOMonthDate(s string) (EventDate, bool) {
	if m := reISOMonthDateA.FindStringSubmatch(s); m != nil {
		t, _ := time.Parse("2006-01", m[1]+"-"+m[2])
		return EventDate{
			ParsedStartDate: t, StartMonth: m[2], StartYear: m[1],
			ParsedEndDate: t, EndMonth: m[2], EndYear: m[1],
			SingleDate: true,
		}, true
	}
	if m := reISOMonthDateB.FindStringSubmatch(s); m != nil {
		mo, ok := shortMonthNames[strings.ToLower(m[1])]
		if !ok {
			return EventDate{}, false
		}
		t, _ := time.Parse("2006-01", m[2]+"-"+mo)
		return EventDate{
			ParsedStartDate: t, StartMonth: mo, StartYear: m[2],
			ParsedEndDate: t, EndMonth: mo, EndYear: m[2],
			SingleDate: true,
		}, true
	}
	return EventDate{}, false
}

var reISOMonthDateRange = regexp.MustCompile(`^(\d{4})-(\d{2})/(\d{2})$`)

func parseISOMonthDateRange(s string) (EventDate, bool) {
	m := reISOMonthDateRange.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	st, _ := time.Parse("2006-01", m[1]+"-"+m[2])
	en, _ := time.Parse("2006-01", m[1]+"-"+m[3])
	return EventDate{
		ParsedStartDate: st, StartMonth: m[2], StartYear: m[1],
		ParsedEndDate: en, EndMonth: m[3], EndYear: m[1],
		SingleDate: false,
	}, true
}

var reISOMonthYearDateRange = regexp.MustCompile(`^(\d{4})-(\d{2})/(\d{4})-(\d{2})$`)

func parseISOMonthYearDateRange(s string) (EventDate, bool) {
	m := reISOMonthYearDateRange.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	st, _ := time.Parse("2006-01", m[1]+"-"+m[2])
	en, _ := time.Parse("2006-01", m[3]+"-"+m[4])
	return EventDate{
		ParsedStartDate: st, StartMonth: m[2], StartYear: m[1],
		ParsedEndDate: en, EndMonth: m[4], EndYear: m[3],
		SingleDate: false,
	}, true
}

var reISOYearRange = regexp.MustCompile(`^(\d{4})/(\d{1,4})$`)

func parseISOYearRange(s string) (EventDate, bool) {
	m := reISOYearRange.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	startYear := m[1]
	suffix := m[2]
	endYear := expandYearSuffix(startYear, suffix)
	st, _ := time.Parse("2006", startYear)
	en, _ := time.Parse("2006", endYear)
	return EventDate{
		ParsedStartDate: st, StartYear: startYear,
		ParsedEndDate: en, EndYear: endYear,
		SingleDate: false,
	}, true
}

// expandYearSuffix inherits the decade/century/millennium of startYear when
// suffix is shorter than 4 digits, for year-range notation like "1998/9".
func expandYearSuffix(startYear, suffix string) string {
	if len(suffix) >= 4 {
		return suffix
	}
	prefixLen := 4 - len(suffix)
	return startYear[:prefixLen] + suffix
}

var reISOVerboseDateTime = regexp.MustCompile(`^[A-Za-z]{3} ([A-Za-z]{3}) (\d{2}) (\d{2}):(\d{2}):(\d{2}) [A-Za-z]+ (\d{4})$`)

func parseISOVerboseDateTime(s string) (EventDate, bool) {
	m := reISOVerboseDateTime.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	mo, ok := shortMonthNames[strings.ToLower(m[1])]
	if !ok {
		return EventDate{}, false
	}
	return singleDateFromYMD(m[6], mo, m[2])
}

func parseISOVerboseDateTimeRange(s string) (EventDate, bool) {
	left, right, ok := splitRange(s)
	if !ok {
		return EventDate{}, false
	}
	l, lok := parseISOVerboseDateTime(left)
	r, rok := parseISOVerboseDateTime(right)
	if !lok || !rok {
		return EventDate{}, false
	}
	l.ParsedEndDate = r.ParsedEndDate
	l.EndDay, l.EndMonth, l.EndYear = r.EndDay, r.EndMonth, r.EndYear
	l.SingleDate = false
	return l, true
}

// --- non-ISO family -----------------------------------------------------

var reNonISODateTime = regexp.MustCompile(`^(\d{4})[-/.](\d{2})[-/.](\d{2}) (\d{2}):(\d{2}):(\d{2})(?:\.\d+)?$`)

func parseNonISODateTime(s string) (EventDate, bool) {
	m := reNonISODateTime.FindStringSubmatch(s)
	if m == nil {
		return EventDate{}, false
	}
	return singleDateFromYMD(m[1], m[2], m[3])
}

var reNonISONumericDate = regexp.MustCompile(`^(\d{2})[-/](\d{2})[-/](\d{4})$`)
var reNonISOShortMonthDate = regexp.MustCompile(`(?i)^(\d{2})[-/]([a-zA-Z]{3})[-/](\d{4})$`)
var reNonISOSpacedMonthDate = regexp.MustCompile(`(?i)^(\d{2}) ([a-zA-Z]{3}) (\d{4})$`)

func parseNonISOSingleDate(s string) (EventDate, bool) {
	if m := reNonISONumericDate.FindStringSubmatch(s); m != nil {
		return singleDateFromYMD(m[3], m[2], m[1])
	}
	if m := reNonISOShortMonthDate.FindStringSubmatch(s); m != nil {
		mo, ok := shortMonthNames[strings.ToLower(m[2])]
		if !ok {
			return EventDate{}, false
		}
		return singleDateFromYMD(m[3], mo, m[1])
	}
	if m := reNonISOSpacedMonthDate.FindStringSubmatch(s); m != nil {
		mo, ok := shortMonthNames[strings.ToLower(m[2])]
		if !ok {
			return EventDate{}, false
		}
		return singleDateFromYMD(m[3], mo, m[1])
	}
	return EventDate{}, false
}
