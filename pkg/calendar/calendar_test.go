package calendar

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weeklyClass = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
UID:scratch-club
SUMMARY:Scratch Club
DTSTART;TZID=America/New_York:20260302T160000
DTEND;TZID=America/New_York:20260302T170000
RRULE:FREQ=WEEKLY;COUNT=6
EXDATE;TZID=America/New_York:20260316T160000
END:VEVENT
BEGIN:VEVENT
SUMMARY:Parent Q&A
DTSTART:20260305T230000Z
DTEND:20260306T000000Z
END:VEVENT
BEGIN:VEVENT
DTSTART:20260305T230000Z
DTEND:20260306T000000Z
END:VEVENT
END:VCALENDAR`

func TestParse_ExpandsWeeklyRecurrence(t *testing.T) {
	events, err := Parse(strings.NewReader(weeklyClass), time.UTC, time.Time{})
	require.NoError(t, err)

	var club []Event
	for _, e := range events {
		if e.Summary == "Scratch Club" {
			club = append(club, e)
		}
	}
	// 6 occurrences minus one EXDATE
	require.Len(t, club, 5)
	assert.Equal(t, time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC), club[0].Start)
	assert.Equal(t, time.Hour, club[0].End.Sub(club[0].Start))
	assert.Equal(t, "scratch-club", club[0].UID)
	for _, e := range club {
		assert.NotEqual(t, 16, e.Start.Day(), "excluded date must be skipped")
	}
	// 16:00 New York wall clock is kept across the DST change on March 8
	assert.Equal(t, time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC), club[1].Start)
}

func TestParse_SkipsEventsWithoutSummary(t *testing.T) {
	events, err := Parse(strings.NewReader(weeklyClass), time.UTC, time.Time{})
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestParse_Horizon(t *testing.T) {
	horizon := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	events, err := Parse(strings.NewReader(weeklyClass), time.UTC, horizon)
	require.NoError(t, err)
	for _, e := range events {
		if e.Summary == "Scratch Club" {
			assert.False(t, e.Start.After(horizon))
		}
	}
}

func TestParse_Empty(t *testing.T) {
	events, err := Parse(strings.NewReader("BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//T//T//EN\nEND:VCALENDAR"), time.UTC, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParse_DurationWithoutEnd(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     time.Duration
	}{
		{"minutes", "PT90M", 90 * time.Minute},
		{"hours and minutes", "PT1H15M", 75 * time.Minute},
		{"days and hours", "P1DT2H", 26 * time.Hour},
		{"weeks", "P1W", 7 * 24 * time.Hour},
		{"unreadable falls back to an hour", "90 minutes", time.Hour},
		{"negative falls back to an hour", "-PT30M", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//T//T//EN\r\n" +
				"BEGIN:VEVENT\r\nSUMMARY:Python Lab\r\nDTSTART:20260305T230000Z\r\n" +
				"DURATION:" + tt.duration + "\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
			events, err := Parse(strings.NewReader(doc), time.UTC, time.Time{})
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].End.Sub(events[0].Start))
		})
	}
}

func TestParseRRule(t *testing.T) {
	r := parseRRule("FREQ=WEEKLY;INTERVAL=2;COUNT=8")
	assert.Equal(t, "WEEKLY", r.freq)
	assert.Equal(t, 2, r.interval)
	assert.Equal(t, 8, r.count)

	r = parseRRule("FREQ=DAILY;UNTIL=20260320")
	assert.Equal(t, time.Date(2026, 3, 20, 23, 59, 59, 0, time.UTC), r.until)
}

func TestBuild(t *testing.T) {
	start := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)
	out := Build("Ada's classes", []Event{{
		UID:     "session-1@ourcodingkiddos",
		Summary: "Python Basics: Loops",
		URL:     "https://meet.example.com/abc",
		Start:   start,
		End:     start.Add(45 * time.Minute),
	}}, start)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "UID:session-1@ourcodingkiddos")
	assert.Contains(t, out, "SUMMARY:Python Basics: Loops")
	assert.Contains(t, out, "DTSTART:20260401T150000Z")
	assert.Contains(t, out, "DTEND:20260401T154500Z")

	// round trip
	events, err := Parse(strings.NewReader(out), time.UTC, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, start, events[0].Start)
}
