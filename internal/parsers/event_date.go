// Package parsers holds the value parsers that sit on the per-record hot
// path: the date-range extractor and the character-level JSON scanners.
package parsers

import "time"

// EventDate is the parsed temporal envelope for an occurrence record's
// event date.
type EventDate struct {
	ParsedStartDate time.Time
	StartDay        string
	StartMonth      string
	StartYear       string

	ParsedEndDate time.Time
	EndDay        string
	EndMonth      string
	EndYear       string

	SingleDate bool
}
