package caldav

import "strings"

// vevent is one VEVENT block extracted from a calendar object, holding just
// the fields needed for LUID/revision extraction and recurrence-ID
// reconstruction, per spec.md's iCalendar-parsing Non-goal: no general
// property grammar, just UID/RECURRENCE-ID/DTSTART/TZID.
type vevent struct {
	uid          string
	recurrenceID string
	recurTZID    string
	dtstart      string
	dtstartTZID  string
	raw          string
}

// splitVEvents breaks a VCALENDAR text blob into its component VEVENTs. A
// recurring series with overridden instances contains one VEVENT without a
// RECURRENCE-ID (the master) followed by one VEVENT per overridden instance
// (each carrying its own RECURRENCE-ID).
func splitVEvents(data string) []vevent {
	var events []vevent
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")

	var current []string
	inEvent := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "BEGIN:VEVENT"):
			inEvent = true
			current = current[:0]
		case strings.HasPrefix(line, "END:VEVENT"):
			if inEvent {
				events = append(events, parseVEvent(current))
			}
			inEvent = false
		case inEvent:
			current = append(current, line)
		}
	}
	return events
}

func parseVEvent(lines []string) vevent {
	var ev vevent
	var raw strings.Builder
	raw.WriteString("BEGIN:VEVENT\n")
	for _, line := range lines {
		raw.WriteString(line)
		raw.WriteByte('\n')

		name, params, value, ok := parseICalLine(line)
		if !ok {
			continue
		}
		switch name {
		case "UID":
			ev.uid = value
		case "RECURRENCE-ID":
			ev.recurrenceID = value
			ev.recurTZID = params["TZID"]
		case "DTSTART":
			ev.dtstart = value
			ev.dtstartTZID = params["TZID"]
		}
	}
	raw.WriteString("END:VEVENT")
	ev.raw = raw.String()
	return ev
}

// parseICalLine splits one unfolded "NAME;PARAM=V;...:value" content line.
func parseICalLine(line string) (name string, params map[string]string, value string, ok bool) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return "", nil, "", false
	}
	head, value := line[:colon], line[colon+1:]

	parts := strings.Split(head, ";")
	name = strings.ToUpper(parts[0])
	if name == "" {
		return "", nil, "", false
	}

	params = make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		k, v, found := strings.Cut(p, "=")
		if found {
			params[strings.ToUpper(k)] = v
		}
	}
	return name, params, value, true
}

// reconstructRecurrenceID fills in a RECURRENCE-ID missing from an override
// instance, using the instance's own known recurrence-id value (the one the
// server or caller already associated with it) and the TZID of the series'
// master DTSTART — falling back to the instance's own DTSTART TZID when no
// master is available. This mirrors the ActiveSync backend's rule for
// repairing an incomplete override that arrived without its RECURRENCE-ID
// property.
func reconstructRecurrenceID(knownValue string, master *vevent, instance vevent) string {
	tzid := instance.dtstartTZID
	if master != nil && master.dtstartTZID != "" {
		tzid = master.dtstartTZID
	}
	if tzid == "" {
		return "RECURRENCE-ID:" + knownValue
	}
	return "RECURRENCE-ID;TZID=" + tzid + ":" + knownValue
}
