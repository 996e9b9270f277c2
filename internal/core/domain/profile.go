package domain

import "encoding/xml"

// Profile is a SyncML session configuration document (spec §4.4): device
// identity, supported content types per source, and the server's
// advertised capabilities. The Protocol Engine does not read it; it is
// marshalled and parsed on its own. Shaped as XML because SyncML
// itself is XML-on-the-wire; no third-party SyncML/XML library appears
// in the example corpus, so this is the one domain type built directly
// on encoding/xml.
type Profile struct {
	XMLName    xml.Name        `xml:"Profile"`
	DeviceID   string          `xml:"DeviceID"`
	DeviceType string          `xml:"DeviceType"`
	ServerURI  string          `xml:"ServerURI"`
	MaxMsgSize int             `xml:"MaxMsgSize,omitempty"`
	Datastores []ProfileSource `xml:"Datastore"`
}

// ProfileSource describes one negotiated datastore within a Profile.
type ProfileSource struct {
	SourceURI    string   `xml:"SourceURI"`
	ContentTypes []string `xml:"ContentType"`
}

// Marshal renders the profile as the XML document exchanged during
// capability negotiation.
func (p *Profile) Marshal() ([]byte, error) {
	return xml.MarshalIndent(p, "", "  ")
}

// UnmarshalProfile parses a capability negotiation document.
func UnmarshalProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SupportsContentType reports whether the datastore named sourceURI
// advertises support for ct.
func (p *Profile) SupportsContentType(sourceURI string, ct ContentType) bool {
	for _, ds := range p.Datastores {
		if ds.SourceURI != sourceURI {
			continue
		}
		for _, c := range ds.ContentTypes {
			if c == string(ct) {
				return true
			}
		}
		return false
	}
	return false
}
