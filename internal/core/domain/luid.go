package domain

import (
	"net/url"
	"strings"
)

// LUID is a Local Unique Identifier: a non-empty opaque string chosen by a
// Sync Source, stable for the lifetime of the item it names.
//
// A composite LUID identifies a sub-component inside a merged server-side
// item (a recurrence instance inside a meeting series). It is written as
// "easid/subid" and recognised by the sentinel "//" scheme prefix when
// persisted (see MarshalTrackingKey).
type LUID string

// IsEmpty reports whether the LUID carries no identity at all.
func (l LUID) IsEmpty() bool {
	return l == ""
}

// String returns the LUID as a plain string.
func (l LUID) String() string {
	return string(l)
}

// CompositeLUID splits a merged-parent identifier from a sub-component
// identifier, per spec §3 ("easid/subid").
type CompositeLUID struct {
	// EasID identifies the merged server-side item (the "meeting series").
	EasID string
	// SubID identifies the sub-component (a RECURRENCE-ID instance).
	// Empty when the LUID names the parent item as a whole.
	SubID string
}

// IsComposite reports whether l contains a "/" separating parent from
// sub-component.
func (l LUID) IsComposite() bool {
	return strings.Contains(string(l), "/")
}

// Split decomposes a composite LUID into its parent and sub-component
// parts. A non-composite LUID yields an EasID equal to itself and an
// empty SubID.
func (l LUID) Split() CompositeLUID {
	s := string(l)
	idx := strings.Index(s, "/")
	if idx < 0 {
		return CompositeLUID{EasID: s}
	}
	return CompositeLUID{EasID: s[:idx], SubID: s[idx+1:]}
}

// Join reassembles a composite LUID from its parts. An empty SubID
// produces "easid/" — the parent item with no selected sub-component,
// matching the "xyz-internal/" shape used by composite inserts (spec §8
// scenario 3).
func (c CompositeLUID) Join() LUID {
	return LUID(c.EasID + "/" + c.SubID)
}

// compositeTrackingScheme is the sentinel prefix that identifies a
// percent-escaped composite LUID inside an on-disk tracking store
// (spec §6: "the sentinel // identifying the composite scheme").
const compositeTrackingScheme = "//"

// MarshalTrackingKey percent-escapes a LUID for storage in a tracking
// property tree. Composite LUIDs are written as "//<easid>/<subid>" so the
// leading sentinel can be recognised on reload without ambiguity against a
// flat LUID that happens to contain a slash.
func MarshalTrackingKey(l LUID) string {
	c := l.Split()
	if c.SubID == "" && !l.IsComposite() {
		return url.PathEscape(string(l))
	}
	return compositeTrackingScheme + url.PathEscape(c.EasID) + "/" + url.PathEscape(c.SubID)
}

// UnmarshalTrackingKey reverses MarshalTrackingKey.
func UnmarshalTrackingKey(key string) (LUID, bool) {
	if strings.HasPrefix(key, compositeTrackingScheme) {
		rest := strings.TrimPrefix(key, compositeTrackingScheme)
		parts := strings.SplitN(rest, "/", 2)
		easID, err := url.PathUnescape(parts[0])
		if err != nil {
			return "", false
		}
		subID := ""
		if len(parts) == 2 {
			subID, err = url.PathUnescape(parts[1])
			if err != nil {
				return "", false
			}
		}
		return CompositeLUID{EasID: easID, SubID: subID}.Join(), true
	}
	plain, err := url.PathUnescape(key)
	if err != nil {
		return "", false
	}
	return LUID(plain), true
}
