package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_ISODateTimeRange(t *testing.T) {
	ed, ok := ParseDateDefault("2007-03-01T13:00:00Z/2008-05-11T15:30:00Z")
	require.True(t, ok)
	assert.False(t, ed.SingleDate)
	assert.Equal(t, "2007", ed.StartYear)
	assert.Equal(t, "03", ed.StartMonth)
	assert.Equal(t, "01", ed.StartDay)
	assert.Equal(t, "2008", ed.EndYear)
	assert.Equal(t, "05", ed.EndMonth)
	assert.Equal(t, "11", ed.EndDay)
}

func TestParseDate_ISOMonthDate(t *testing.T) {
	ed, ok := ParseDateDefault("1906-06")
	require.True(t, ok)
	assert.True(t, ed.SingleDate)
	assert.Equal(t, "1906", ed.StartYear)
	assert.Equal(t, "06", ed.StartMonth)
	assert.Equal(t, "", ed.StartDay)
}

func TestParseDate_ISODayDateRange(t *testing.T) {
	ed, ok := ParseDateDefault("2007-11-13/15")
	require.True(t, ok)
	assert.False(t, ed.SingleDate)
	assert.Equal(t, "2007", ed.StartYear)
	assert.Equal(t, "11", ed.StartMonth)
	assert.Equal(t, "13", ed.StartDay)
	assert.Equal(t, "2007", ed.EndYear)
	assert.Equal(t, "11", ed.EndMonth)
	assert.Equal(t, "15", ed.EndDay)
}

func TestParseDate_FutureYearRejected(t *testing.T) {
	_, ok := ParseDateDefault("2999-01-01")
	assert.False(t, ok)
}

func TestParseDate_SingleDate(t *testing.T) {
	ed, ok := ParseDateDefault("2015-07-04")
	require.True(t, ok)
	assert.True(t, ed.SingleDate)
	assert.Equal(t, "2015", ed.StartYear)
	assert.Equal(t, "07", ed.StartMonth)
	assert.Equal(t, "04", ed.StartDay)
	assert.Equal(t, ed.StartYear, ed.EndYear)
	assert.Equal(t, ed.StartMonth, ed.EndMonth)
	assert.Equal(t, ed.StartDay, ed.EndDay)
}

func TestParseDate_SingleYear(t *testing.T) {
	ed, ok := ParseDateDefault("1998")
	require.True(t, ok)
	assert.True(t, ed.SingleDate)
	assert.Equal(t, "1998", ed.StartYear)
	assert.Equal(t, "", ed.StartMonth)
}

func TestParseDate_MonthNameDate(t *testing.T) {
	ed, ok := ParseDateDefault("2012-March-05")
	require.True(t, ok)
	assert.Equal(t, "2012", ed.StartYear)
	assert.Equal(t, "03", ed.StartMonth)
	assert.Equal(t, "05", ed.StartDay)
}

func TestParseDate_NonISONumericDate(t *testing.T) {
	ed, ok := ParseDateDefault("04-07-2015")
	require.True(t, ok)
	assert.Equal(t, "2015", ed.StartYear)
	assert.Equal(t, "07", ed.StartMonth)
	assert.Equal(t, "04", ed.StartDay)
}

func TestParseDate_NonISOShortMonthDate(t *testing.T) {
	ed, ok := ParseDateDefault("04-Jul-2015")
	require.True(t, ok)
	assert.Equal(t, "2015", ed.StartYear)
	assert.Equal(t, "07", ed.StartMonth)
	assert.Equal(t, "04", ed.StartDay)
}

func TestParseDate_YearRangeInheritsPrefix(t *testing.T) {
	ed, ok := ParseDateDefault("1987/88")
	require.True(t, ok)
	assert.Equal(t, "1987", ed.StartYear)
	assert.Equal(t, "1988", ed.EndYear)
}

func TestParseDate_EndBeforeStartIsInvalid(t *testing.T) {
	_, ok := ParseDate("2010/2005", 1600, 2030)
	assert.False(t, ok)
}

func TestParseDate_EmptyInput(t *testing.T) {
	_, ok := ParseDateDefault("")
	assert.False(t, ok)
	_, ok = ParseDateDefault("   ")
	assert.False(t, ok)
}

func TestParseDate_Garbage(t *testing.T) {
	_, ok := ParseDateDefault("not a date")
	assert.False(t, ok)
}

func TestParseDate_SubSecondPrecisionStripped(t *testing.T) {
	ed, ok := ParseDateDefault("2007-03-01T13:00:00.123Z")
	require.True(t, ok)
	assert.Equal(t, "2007", ed.StartYear)
	assert.Equal(t, "03", ed.StartMonth)
	assert.Equal(t, "01", ed.StartDay)
}

func TestParseDate_YearOnlyZeroMonthDayFallsThroughToSingleYear(t *testing.T) {
	ed, ok := ParseDateDefault("2007-00-00")
	require.True(t, ok)
	assert.True(t, ed.SingleDate)
	assert.Equal(t, "2007", ed.StartYear)
	assert.Equal(t, "", ed.StartMonth)
	assert.Equal(t, "", ed.StartDay)
}

func TestParseDate_InvalidDayOfMonthRejected(t *testing.T) {
	_, ok := ParseDateDefault("2007-02-30")
	assert.False(t, ok)
}

func TestParseDate_InvalidMonthRejected(t *testing.T) {
	_, ok := ParseDateDefault("2007-13-01")
	assert.False(t, ok)
}
