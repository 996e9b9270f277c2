package calendar

import "strings"

// ResolveWebURL converts a google-calendar item URI to the event's web URL.
// URIs without the gcal:// prefix or an event ID yield "".
// gcal://calendarID/events/eventID -> https://calendar.google.com/calendar/u/0/r/eventedit/eventID
func ResolveWebURL(uri string, _ map[string]any) string {
	const prefix = "gcal://"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	_, eventID, found := strings.Cut(strings.TrimPrefix(uri, prefix), "/events/")
	if !found || eventID == "" {
		return ""
	}
	return "https://calendar.google.com/calendar/u/0/r/eventedit/" + eventID
}
