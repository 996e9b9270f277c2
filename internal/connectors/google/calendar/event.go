package calendar

import (
	"fmt"
	"strings"

	"google.golang.org/api/calendar/v3"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// statusCancelled is the event status Google uses to report a deletion in
// a ShowDeleted listing.
const statusCancelled = "cancelled"

// itemFromEvent renders a calendar event as the Item a google-calendar
// source hands to the Protocol Engine. Fields are serialised as simple
// "KEY: value" lines rather than a real VEVENT block (spec.md's
// iCalendar-parsing Non-goal covers field-level encoding too); the LUID is
// the event's own ID, already unique per occurrence once SingleEvents
// expansion is requested from the API.
func itemFromEvent(sourceID string, event *calendar.Event) *domain.Item {
	return &domain.Item{
		SourceID:    sourceID,
		LUID:        domain.LUID(event.Id),
		ContentType: domain.ContentTypeICalendar,
		Content:     []byte(encodeEvent(event)),
		Revision:    domain.Revision(event.Updated),
	}
}

// encodeEvent writes an event's synced fields as simple text lines.
func encodeEvent(event *calendar.Event) string {
	var b strings.Builder
	writeField(&b, "SUMMARY", event.Summary)
	writeField(&b, "DESCRIPTION", event.Description)
	writeField(&b, "LOCATION", event.Location)
	writeField(&b, "DTSTART", eventTime(event.Start))
	writeField(&b, "DTEND", eventTime(event.End))
	if attendees := formatAttendees(event.Attendees); attendees != "" {
		writeField(&b, "ATTENDEES", attendees)
	}
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", key, value)
}

// decodeEvent parses encodeEvent's output back into event fields for
// InsertItem, matching the round trip a local edit needs.
func decodeEvent(content []byte) *calendar.Event {
	event := &calendar.Event{}
	for _, line := range strings.Split(string(content), "\n") {
		key, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		switch key {
		case "SUMMARY":
			event.Summary = value
		case "DESCRIPTION":
			event.Description = value
		case "LOCATION":
			event.Location = value
		case "DTSTART":
			event.Start = &calendar.EventDateTime{DateTime: value}
		case "DTEND":
			event.End = &calendar.EventDateTime{DateTime: value}
		}
	}
	return event
}

// eventTime prefers the timed DateTime over the all-day Date.
func eventTime(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// formatAttendees renders the attendee list as a single display line.
func formatAttendees(attendees []*calendar.EventAttendee) string {
	if len(attendees) == 0 {
		return ""
	}
	names := make([]string, 0, len(attendees))
	for _, a := range attendees {
		switch {
		case a.DisplayName != "":
			names = append(names, a.DisplayName)
		case a.Email != "":
			names = append(names, a.Email)
		}
	}
	return strings.Join(names, ", ")
}

// isCancelled reports whether a listed event represents a deletion.
func isCancelled(event *calendar.Event) bool {
	return event.Status == statusCancelled
}
