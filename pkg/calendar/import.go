package calendar

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	// MaxImportSize caps uploaded .ics files
	MaxImportSize = 2 << 20
	// maxOccurrences per recurring event
	maxOccurrences = 200
	// defaultDuration when an event has an unreadable DURATION and no DTEND
	defaultDuration = time.Hour
)

// Parse reads VEVENTs and expands DAILY/WEEKLY recurrences into concrete occurrences up to
// horizon. Events without a summary or start time are skipped.
func Parse(r io.Reader, loc *time.Location, horizon time.Time) ([]Event, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(r, MaxImportSize))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	var out []Event
	for _, vevt := range cal.Events() {
		out = append(out, expandEvent(vevt, loc, horizon)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func expandEvent(vevt *ics.VEvent, loc *time.Location, horizon time.Time) []Event {
	summary := propValue(vevt, ics.ComponentPropertySummary)
	if summary == "" {
		return nil
	}

	start, err := parseDateTime(vevt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return nil
	}
	end, err := parseDateTime(vevt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		prop := vevt.GetProperty(ics.ComponentPropertyDuration)
		if prop == nil {
			return nil
		}
		d, ok := parseDuration(prop.Value)
		if !ok {
			d = defaultDuration
		}
		end = start.Add(d)
	}
	if !end.After(start) {
		return nil
	}
	length := end.Sub(start)

	base := Event{
		UID:         propValue(vevt, ics.ComponentPropertyUniqueId),
		Summary:     summary,
		Description: propValue(vevt, ics.ComponentPropertyDescription),
		URL:         propValue(vevt, ics.ComponentPropertyUrl),
		Location:    propValue(vevt, ics.ComponentPropertyLocation),
	}

	starts := occurrences(vevt, start, horizon)
	events := make([]Event, 0, len(starts))
	for _, s := range starts {
		e := base
		e.Start = s.In(loc)
		e.End = s.Add(length).In(loc)
		events = append(events, e)
	}
	return events
}

// occurrences start times of an event, honouring RRULE (DAILY/WEEKLY), COUNT, UNTIL and EXDATE.
// Steps are taken in the event's own zone so the wall-clock time survives DST changes.
func occurrences(vevt *ics.VEvent, start time.Time, horizon time.Time) []time.Time {
	prop := vevt.GetProperty(ics.ComponentPropertyRrule)
	if prop == nil {
		return []time.Time{start}
	}

	rule := parseRRule(prop.Value)
	var step int
	switch rule.freq {
	case "DAILY":
		step = 1
	case "WEEKLY":
		step = 7
	default:
		return []time.Time{start}
	}
	if rule.interval < 1 {
		rule.interval = 1
	}

	limit := horizon
	if !rule.until.IsZero() && (limit.IsZero() || rule.until.Before(limit)) {
		limit = rule.until
	}

	exDates := parseExDates(vevt, start.Location())
	var out []time.Time
	current := start
	for n := 0; n < maxOccurrences; n++ {
		if rule.count > 0 && n >= rule.count {
			break
		}
		if !limit.IsZero() && current.After(limit) {
			break
		}
		if !exDates[current.Format("20060102")] {
			out = append(out, current)
		}
		current = current.AddDate(0, 0, step*rule.interval)
	}
	return out
}

// parseDuration reads an RFC 5545 duration such as PT90M, P1DT2H or P2W.
// Negative or empty durations are rejected.
func parseDuration(value string) (time.Duration, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, "+")
	if !strings.HasPrefix(v, "P") || len(v) < 3 {
		return 0, false
	}
	v = v[1:]

	var total time.Duration
	inTime := false
	num := ""
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			if inTime || num != "" {
				return 0, false
			}
			inTime = true
		default:
			if num == "" {
				return 0, false
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, false
			}
			num = ""
			var unit time.Duration
			switch {
			case r == 'W' && !inTime:
				unit = 7 * 24 * time.Hour
			case r == 'D' && !inTime:
				unit = 24 * time.Hour
			case r == 'H' && inTime:
				unit = time.Hour
			case r == 'M' && inTime:
				unit = time.Minute
			case r == 'S' && inTime:
				unit = time.Second
			default:
				return 0, false
			}
			total += time.Duration(n) * unit
		}
	}
	if num != "" || total <= 0 {
		return 0, false
	}
	return total, true
}

type rrule struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule reads FREQ, INTERVAL, COUNT and UNTIL from an RRULE value
func parseRRule(value string) rrule {
	r := rrule{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			r.interval, _ = strconv.Atoi(kv[1])
		case "COUNT":
			r.count, _ = strconv.Atoi(kv[1])
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
				if !t.IsZero() {
					t = t.Add(24*time.Hour - time.Second)
				}
			}
			r.until = t
		}
	}
	return r
}

func parseExDates(vevt *ics.VEvent, loc *time.Location) map[string]bool {
	out := make(map[string]bool)
	for _, prop := range vevt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, err := parseValue(v, tzid(prop.ICalParameters), loc); err == nil {
				out[t.In(loc).Format("20060102")] = true
			}
		}
	}
	return out
}

func parseDateTime(vevt *ics.VEvent, name ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := vevt.GetProperty(name)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing %s", name)
	}
	return parseValue(prop.Value, tzid(prop.ICalParameters), loc)
}

// parseValue accepts UTC, floating and date-only values. Floating times use the TZID
// parameter when it names a known zone, loc otherwise. The result keeps the zone it was read in.
func parseValue(val, zone string, loc *time.Location) (time.Time, error) {
	val = strings.TrimSpace(val)
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t, nil
	}
	in := loc
	if zone != "" {
		if z, err := time.LoadLocation(zone); err == nil {
			in = z
		}
	}
	for _, layout := range []string{"20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, val, in); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", val)
}

func tzid(params map[string][]string) string {
	for k, v := range params {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func propValue(vevt *ics.VEvent, name ics.ComponentProperty) string {
	if p := vevt.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}
