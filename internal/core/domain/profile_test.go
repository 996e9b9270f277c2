package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_MarshalUnmarshalRoundTrip(t *testing.T) {
	p := &Profile{
		DeviceID:   "sc-pim-ffff-0000",
		DeviceType: "workstation",
		ServerURI:  "https://sync.example.com/sync",
		MaxMsgSize: 20000,
		Datastores: []ProfileSource{
			{SourceURI: "addressbook", ContentTypes: []string{"text/vcard"}},
			{SourceURI: "calendar", ContentTypes: []string{"text/calendar"}},
		},
	}

	data, err := p.Marshal()
	require.NoError(t, err)

	parsed, err := UnmarshalProfile(data)
	require.NoError(t, err)

	assert.Equal(t, p.DeviceID, parsed.DeviceID)
	assert.Equal(t, p.ServerURI, parsed.ServerURI)
	assert.Len(t, parsed.Datastores, 2)
}

func TestProfile_SupportsContentType(t *testing.T) {
	p := &Profile{
		Datastores: []ProfileSource{
			{SourceURI: "addressbook", ContentTypes: []string{"text/vcard"}},
		},
	}

	assert.True(t, p.SupportsContentType("addressbook", ContentTypeVCard))
	assert.False(t, p.SupportsContentType("addressbook", ContentTypeICalendar))
	assert.False(t, p.SupportsContentType("calendar", ContentTypeICalendar))
}
