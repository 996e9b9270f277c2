package domain

// ProgressEventType enumerates the closed set of progress events the
// protocol engine emits during a driver loop (spec §4.4).
type ProgressEventType int

// Recognised progress event types.
const (
	EventPreparing ProgressEventType = iota
	EventDeleting
	EventAlerted
	EventSyncStart
	EventItemReceived
	EventItemSent
	EventItemProcessed
	EventSyncEnd
	EventDSStatsLocal
	EventDSStatsRemote
	EventDSStatsReject
	EventDSStatsSlowMatch
	EventDSStatsConflict
	EventDSStatsBytes
	EventDisplayAlert
)

// AlertKind classifies an EventAlerted event.
type AlertKind int

// Recognised alert kinds.
const (
	AlertNormal AlertKind = iota
	AlertSlow
	AlertFirstTimeSlow
)

// String renders the alert kind the way engine progress events report it
// (spec §8 scenario 1: "alerted(first-time-slow, 0, two-way)").
func (k AlertKind) String() string {
	switch k {
	case AlertSlow:
		return "slow"
	case AlertFirstTimeSlow:
		return "first-time-slow"
	default:
		return "normal"
	}
}

// ProgressEvent is one event raised by the protocol engine and aggregated
// by the Session Controller into per-source and per-session reports
// (spec §2, §4.4). Extra1-Extra3 carry the type-dependent integer payload
// spec §4.4 describes ("each with three integer extras whose meaning
// depends on type"); Text carries EventDisplayAlert's message.
type ProgressEvent struct {
	SourceID string
	Type     ProgressEventType
	Extra1   int
	Extra2   int
	Extra3   int
	Text     string
}

// Preparing builds a preparing(done, total) event.
func Preparing(sourceID string, done, total int) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: EventPreparing, Extra1: done, Extra2: total}
}

// Deleting builds a deleting(done, total) event.
func Deleting(sourceID string, done, total int) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: EventDeleting, Extra1: done, Extra2: total}
}

// Alerted builds an alerted(kind, resumed, direction) event.
func Alerted(sourceID string, kind AlertKind, resumed bool, dir Direction) ProgressEvent {
	r := 0
	if resumed {
		r = 1
	}
	return ProgressEvent{SourceID: sourceID, Type: EventAlerted, Extra1: int(kind), Extra2: r, Extra3: int(dir)}
}

// ItemReceived builds an item_received(n, expected) event.
func ItemReceived(sourceID string, n, expected int) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: EventItemReceived, Extra1: n, Extra2: expected}
}

// ItemSent builds an item_sent(n, expected) event.
func ItemSent(sourceID string, n, expected int) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: EventItemSent, Extra1: n, Extra2: expected}
}

// ItemProcessed builds an item_processed(added, updated, deleted) event.
func ItemProcessed(sourceID string, added, updated, deleted int) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: EventItemProcessed, Extra1: added, Extra2: updated, Extra3: deleted}
}

// SyncEnd builds a sync_end(status, mode, resumed) event.
func SyncEnd(sourceID string, status int, mode SyncMode, resumed bool) ProgressEvent {
	r := 0
	if resumed {
		r = 1
	}
	return ProgressEvent{SourceID: sourceID, Type: EventSyncEnd, Extra1: status, Extra2: int(modeOrdinal(mode)), Extra3: r}
}

func modeOrdinal(m SyncMode) int {
	order := []SyncMode{ModeTwoWay, ModeSlow, ModeRefreshFromServer, ModeRefreshFromClient,
		ModeOneWayFromServer, ModeOneWayFromClient, ModeDisabled}
	for i, candidate := range order {
		if candidate == m {
			return i
		}
	}
	return -1
}

// DisplayAlert builds a display_alert(text) event carrying a server
// message to surface to the user.
func DisplayAlert(sourceID, text string) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: EventDisplayAlert, Text: text}
}

// dsStatsEventFor maps a report ChangeKind onto the matching
// EventDSStats* progress event type (spec §4.4's ds-stats family).
func dsStatsEventFor(kind ChangeKind) ProgressEventType {
	switch kind {
	case KindAdded:
		return EventDSStatsLocal
	case KindUpdated:
		return EventDSStatsRemote
	case KindRemoved:
		return EventDSStatsReject
	default:
		return EventDSStatsLocal
	}
}

// DSStats builds a ds_stats(kind, n) event reporting one report-counter
// increment as it happens, so a live monitor sees per-kind stat growth
// without waiting for the session's final SyncReport.
func DSStats(sourceID string, kind ChangeKind, n int) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: dsStatsEventFor(kind), Extra1: n}
}

// DSConflict builds a ds_stats conflict/match event: n duplicates matched
// or conflicts resolved in the reported direction.
func DSConflict(sourceID string, stat Stat, n int) ProgressEvent {
	t := EventDSStatsConflict
	if stat == StatMatch {
		t = EventDSStatsSlowMatch
	}
	return ProgressEvent{SourceID: sourceID, Type: t, Extra1: int(stat), Extra2: n}
}

// DSBytes builds a ds_stats(bytes) event reporting bytes sent or received
// over the transport for one exchange.
func DSBytes(sourceID string, sent, received int) ProgressEvent {
	return ProgressEvent{SourceID: sourceID, Type: EventDSStatsBytes, Extra1: sent, Extra2: received}
}
