// Package calendar builds and reads iCalendar (RFC 5545) documents for class sessions.
package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

// Event one class occurrence
type Event struct {
	UID         string
	Summary     string
	Description string
	URL         string
	Location    string
	Start       time.Time
	End         time.Time
}

// Build renders events as a published VCALENDAR feed
func Build(name string, events []Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Our Coding Kiddos//Class Schedule//EN")
	cal.SetXWRCalName(name)
	cal.SetRefreshInterval("PT6H")

	for _, e := range events {
		ev := cal.AddEvent(e.UID)
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(e.Start.UTC())
		ev.SetEndAt(e.End.UTC())
		ev.SetSummary(e.Summary)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.URL != "" {
			ev.SetURL(e.URL)
		}
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
	}
	return cal.Serialize()
}
