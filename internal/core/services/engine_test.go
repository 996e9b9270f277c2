package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/connectors/filesystem"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// scriptedTransport answers Send calls from a fixed queue of replies, in
// order, falling back to an empty reply once the queue is drained — enough
// to drive the engine's multi-step driver loop through a specific,
// hand-scripted exchange instead of the always-empty fakeTransport used by
// Manager-level tests.
type scriptedTransport struct {
	mu      sync.Mutex
	replies []*driven.Message
	idx     int
	calls   int
	failAt  map[int]bool
}

func (s *scriptedTransport) Send(_ context.Context, _ driven.Message, _ time.Duration) (*driven.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := s.calls
	s.calls++
	if s.failAt[call] {
		return nil, assert.AnError
	}
	if s.idx < len(s.replies) {
		r := s.replies[s.idx]
		s.idx++
		return r, nil
	}
	return &driven.Message{}, nil
}

func (s *scriptedTransport) Close() error { return nil }

// recordingSink captures every progress event emitted, for asserting the
// driver loop actually raises the events spec §4.4 names instead of
// leaving them dead.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (r *recordingSink) Logf(string, string, ...any) {}
func (r *recordingSink) Progress(_ string, e domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}
func (r *recordingSink) Close() error { return nil }

func (r *recordingSink) has(t domain.ProgressEventType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == t {
			return true
		}
	}
	return false
}

func alwaysFalse() bool { return false }

func TestEngine_Run_SendsLocalChangesAndCompletes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.vcf"), []byte("BEGIN:VCARD\nFN:Alice\nEND:VCARD"), 0o644))
	src := filesystem.New("contacts", &filesystem.Config{Path: dir})

	sink := &recordingSink{}
	engine := NewEngine(&scriptedTransport{}, sink)
	set := domain.ChangeSet{New: []domain.LUID{"alice"}}
	params := domain.EngineParams{Direction: domain.DirectionBoth}

	report, err := engine.Run(context.Background(), "session-1", src, params, domain.ModeTwoWay, set, false, alwaysFalse)

	require.NoError(t, err)
	assert.Equal(t, 200, report.Status)
	assert.Equal(t, 1, report.Get(domain.ItemLocal, domain.KindAdded, domain.StatTotal))
	assert.True(t, sink.has(domain.EventAlerted))
	assert.True(t, sink.has(domain.EventSyncEnd))
	assert.True(t, sink.has(domain.EventItemSent))
	assert.True(t, sink.has(domain.EventDSStatsLocal))
}

func TestEngine_Run_ReceivesAndInsertsRemoteItem(t *testing.T) {
	dir := t.TempDir()
	src := filesystem.New("contacts", &filesystem.Config{Path: dir})

	transport := &scriptedTransport{
		replies: []*driven.Message{
			{}, // CLIENT_START handshake ack
			{ContentType: string(domain.ContentTypeVCard), Body: []byte("BEGIN:VCARD\nFN:New\nEND:VCARD")},
			{}, // second NEED_DATA poll reports no more data
		},
	}
	sink := &recordingSink{}
	engine := NewEngine(transport, sink)
	params := domain.EngineParams{Direction: domain.DirectionBoth}

	report, err := engine.Run(context.Background(), "session-1", src, params, domain.ModeTwoWay, domain.ChangeSet{}, false, alwaysFalse)

	require.NoError(t, err)
	assert.Equal(t, 200, report.Status)
	assert.Equal(t, 1, report.Get(domain.ItemRemote, domain.KindAny, domain.StatTotal))
	assert.True(t, sink.has(domain.EventItemReceived))
	assert.True(t, sink.has(domain.EventItemProcessed))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEngine_Run_DirectionFromServerNeverSendsLocalChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.vcf"), []byte("BEGIN:VCARD\nFN:Alice\nEND:VCARD"), 0o644))
	src := filesystem.New("contacts", &filesystem.Config{Path: dir})

	engine := NewEngine(&scriptedTransport{}, &recordingSink{})
	set := domain.ChangeSet{New: []domain.LUID{"alice"}}
	params := domain.EngineParams{Direction: domain.DirectionFromServer}

	report, err := engine.Run(context.Background(), "session-1", src, params, domain.ModeOneWayFromServer, set, false, alwaysFalse)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Get(domain.ItemLocal, domain.KindAdded, domain.StatTotal))
}

func TestEngine_Run_TransportFailureRetriesOnce(t *testing.T) {
	dir := t.TempDir()
	src := filesystem.New("contacts", &filesystem.Config{Path: dir})

	transport := &scriptedTransport{failAt: map[int]bool{0: true}}
	engine := NewEngine(transport, &recordingSink{})
	params := domain.EngineParams{Direction: domain.DirectionBoth}

	report, err := engine.Run(context.Background(), "session-1", src, params, domain.ModeTwoWay, domain.ChangeSet{}, false, alwaysFalse)

	require.NoError(t, err)
	assert.Equal(t, 200, report.Status)
	assert.Greater(t, transport.calls, 1)
}

func TestEngine_Run_RepeatedTransportFailureFails(t *testing.T) {
	dir := t.TempDir()
	src := filesystem.New("contacts", &filesystem.Config{Path: dir})

	transport := &scriptedTransport{failAt: map[int]bool{0: true, 1: true, 2: true}}
	engine := NewEngine(transport, &recordingSink{})
	params := domain.EngineParams{Direction: domain.DirectionBoth}

	_, err := engine.Run(context.Background(), "session-1", src, params, domain.ModeTwoWay, domain.ChangeSet{}, false, alwaysFalse)

	require.Error(t, err)
}

func TestEngine_Run_SuspendRequestedStopsExchangeGracefully(t *testing.T) {
	dir := t.TempDir()
	src := filesystem.New("contacts", &filesystem.Config{Path: dir})

	engine := NewEngine(&scriptedTransport{}, &recordingSink{})
	params := domain.EngineParams{Direction: domain.DirectionBoth}

	report, err := engine.Run(context.Background(), "session-1", src, params, domain.ModeTwoWay, domain.ChangeSet{}, false, func() bool { return true })

	assert.ErrorIs(t, err, domain.ErrSessionSuspended)
	require.NotNil(t, report)
	assert.Equal(t, 516, report.Status)
}

func TestEngine_Run_SlowSyncAlertsFirstTimeSlow(t *testing.T) {
	dir := t.TempDir()
	src := filesystem.New("contacts", &filesystem.Config{Path: dir})

	sink := &recordingSink{}
	engine := NewEngine(&scriptedTransport{}, sink)
	params := domain.EngineParams{Direction: domain.DirectionBoth}

	_, err := engine.Run(context.Background(), "session-1", src, params, domain.ModeSlow, domain.ChangeSet{}, false, alwaysFalse)

	require.NoError(t, err)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	var found bool
	for _, e := range sink.events {
		if e.Type == domain.EventAlerted {
			found = true
			assert.Equal(t, int(domain.AlertFirstTimeSlow), e.Extra1)
		}
	}
	assert.True(t, found)
}
