package calendar

import (
	"context"
	"testing"

	"google.golang.org/api/calendar/v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

type mockTokenProvider struct {
	token string
	err   error
}

func (p *mockTokenProvider) GetToken(_ context.Context) (string, error) { return p.token, p.err }
func (p *mockTokenProvider) AuthorizationID() string                    { return "test-auth" }
func (p *mockTokenProvider) AuthMethod() domain.AuthMethod              { return domain.AuthMethodOAuth }
func (p *mockTokenProvider) IsAuthenticated() bool                      { return p.token != "" }

func TestNew(t *testing.T) {
	t.Run("creates connector with valid parameters", func(t *testing.T) {
		connector := New("test-source", &Config{CalendarID: "primary"}, &mockTokenProvider{token: "t"})

		require.NotNil(t, connector)
		assert.Equal(t, "test-source", connector.ID())
	})

	t.Run("implements SyncSource interface", func(t *testing.T) {
		connector := New("test", &Config{CalendarID: "primary"}, nil)
		var _ driven.SyncSource = connector
	})
}

func TestConnector_ID(t *testing.T) {
	connector := New("my-source", &Config{}, nil)
	assert.Equal(t, "my-source", connector.ID())
}

func TestConnector_SupportedContentTypes(t *testing.T) {
	connector := New("test", &Config{}, nil)
	assert.Equal(t, []domain.ContentType{domain.ContentTypeICalendar}, connector.SupportedContentTypes())
}

func TestConnector_SetSessionID(t *testing.T) {
	connector := New("test", &Config{}, nil)
	connector.SetSessionID("session-1")
	assert.Equal(t, "session-1", connector.sessionID)
}

func TestConnector_BeginSync_ClosedConnector(t *testing.T) {
	connector := New("test", &Config{}, &mockTokenProvider{token: "t"})
	require.NoError(t, connector.Close())

	err := connector.BeginSync(context.Background(), "session-1", domain.EngineParams{})

	assert.ErrorIs(t, err, domain.ErrConnectorClosed)
}

func TestConnector_EndSync(t *testing.T) {
	connector := New("test", &Config{}, nil)
	assert.NoError(t, connector.EndSync(context.Background()))
}

func TestConnector_Close(t *testing.T) {
	connector := New("test", &Config{}, nil)

	assert.NoError(t, connector.Close())
	assert.NoError(t, connector.Close())
}

func TestParseConfig(t *testing.T) {
	t.Run("defaults to primary calendar", func(t *testing.T) {
		source := domain.Source{Config: map[string]string{}}

		cfg, err := ParseConfig(source)

		require.NoError(t, err)
		assert.Equal(t, "primary", cfg.CalendarID)
	})

	t.Run("uses configured calendar_id", func(t *testing.T) {
		source := domain.Source{Config: map[string]string{"calendar_id": "team@example.com"}}

		cfg, err := ParseConfig(source)

		require.NoError(t, err)
		assert.Equal(t, "team@example.com", cfg.CalendarID)
	})
}

func TestEncodeDecodeEvent_RoundTrip(t *testing.T) {
	event := &calendar.Event{
		Summary:     "Team sync",
		Description: "Weekly check-in",
		Location:    "Room 4",
		Start:       &calendar.EventDateTime{DateTime: "2026-08-01T10:00:00Z"},
		End:         &calendar.EventDateTime{DateTime: "2026-08-01T10:30:00Z"},
	}

	encoded := encodeEvent(event)
	decoded := decodeEvent([]byte(encoded))

	assert.Equal(t, event.Summary, decoded.Summary)
	assert.Equal(t, event.Description, decoded.Description)
	assert.Equal(t, event.Location, decoded.Location)
	assert.Equal(t, event.Start.DateTime, decoded.Start.DateTime)
	assert.Equal(t, event.End.DateTime, decoded.End.DateTime)
}

func TestItemFromEvent(t *testing.T) {
	event := &calendar.Event{
		Id:      "evt-123",
		Summary: "Standup",
		Updated: "2026-07-30T09:00:00Z",
	}

	item := itemFromEvent("src", event)

	assert.Equal(t, domain.LUID("evt-123"), item.LUID)
	assert.Equal(t, domain.ContentTypeICalendar, item.ContentType)
	assert.Equal(t, domain.Revision("2026-07-30T09:00:00Z"), item.Revision)
	assert.Contains(t, string(item.Content), "SUMMARY: Standup")
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, isCancelled(&calendar.Event{Status: "cancelled"}))
	assert.False(t, isCancelled(&calendar.Event{Status: "confirmed"}))
}

func TestShouldRetryEmptyIncrementalReply(t *testing.T) {
	t.Run("retries an empty incremental reply that advanced the token", func(t *testing.T) {
		assert.True(t, shouldRetryEmptyIncrementalReply(false, 0, "token-2", "token-1"))
	})

	t.Run("does not retry when events were returned", func(t *testing.T) {
		assert.False(t, shouldRetryEmptyIncrementalReply(false, 3, "token-2", "token-1"))
	})

	t.Run("does not retry a slow sync", func(t *testing.T) {
		assert.False(t, shouldRetryEmptyIncrementalReply(true, 0, "token-2", ""))
	})

	t.Run("does not retry when the token never moved", func(t *testing.T) {
		assert.False(t, shouldRetryEmptyIncrementalReply(false, 0, "token-1", "token-1"))
	})

	t.Run("does not retry an empty next token", func(t *testing.T) {
		assert.False(t, shouldRetryEmptyIncrementalReply(false, 0, "", "token-1"))
	})
}

func TestFormatAttendees(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		assert.Empty(t, formatAttendees(nil))
	})

	t.Run("prefers display name over email", func(t *testing.T) {
		attendees := []*calendar.EventAttendee{
			{DisplayName: "Alice", Email: "alice@example.com"},
			{Email: "bob@example.com"},
		}

		got := formatAttendees(attendees)

		assert.Equal(t, "Alice, bob@example.com", got)
	})
}
