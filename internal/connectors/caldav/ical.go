package caldav

import (
	"strings"

	"github.com/emersion/go-ical"
)

// parseCalendar decodes raw iCalendar text into the structural form the
// go-webdav client exchanges with the server. Structural-only: it never
// inspects individual VEVENT semantics beyond what go-ical itself parses,
// leaving UID/RECURRENCE-ID/DTSTART extraction to splitVEvents.
func parseCalendar(data string) *ical.Calendar {
	dec := ical.NewDecoder(strings.NewReader(data))
	cal, err := dec.Decode()
	if err != nil {
		return &ical.Calendar{Component: ical.NewComponent(ical.CompCalendar)}
	}
	return cal
}

// encodeCalendar renders a decoded calendar back to raw iCalendar text.
func encodeCalendar(cal *ical.Calendar) string {
	var b strings.Builder
	if err := ical.NewEncoder(&b).Encode(cal); err != nil {
		return ""
	}
	return b.String()
}
