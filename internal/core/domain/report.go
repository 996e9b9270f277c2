package domain

// Location distinguishes counters kept about the local store from
// counters kept about the remote peer (spec §3 "Sync report").
type Location int

// Recognised locations.
const (
	ItemLocal Location = iota
	ItemRemote
)

// String renders the location the way the on-disk report key does
// (spec §6: "source-<name>-stat-<location>-<state>-<result>").
func (l Location) String() string {
	if l == ItemRemote {
		return "remote"
	}
	return "local"
}

// ChangeKind groups report counters by the kind of change they describe.
type ChangeKind int

// Recognised change kinds.
const (
	KindAdded ChangeKind = iota
	KindUpdated
	KindRemoved
	KindAny
)

// String renders the change kind for the on-disk report key.
func (k ChangeKind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindUpdated:
		return "updated"
	case KindRemoved:
		return "removed"
	default:
		return "any"
	}
}

// Stat names one counter within a (Location, ChangeKind) cell.
type Stat int

// Recognised stats.
const (
	StatTotal Stat = iota
	StatReject
	StatSentBytes
	StatReceivedBytes
	StatMatch
	StatConflictServerWon
	StatConflictClientWon
	StatConflictDuplicated
)

// String renders the stat for the on-disk report key.
func (s Stat) String() string {
	switch s {
	case StatTotal:
		return "total"
	case StatReject:
		return "reject"
	case StatSentBytes:
		return "sent-bytes"
	case StatReceivedBytes:
		return "received-bytes"
	case StatMatch:
		return "match"
	case StatConflictServerWon:
		return "conflict-server-won"
	case StatConflictClientWon:
		return "conflict-client-won"
	case StatConflictDuplicated:
		return "conflict-duplicated"
	default:
		return "unknown"
	}
}

// ReportCell keys a single counter cell.
type ReportCell struct {
	Location Location
	Kind     ChangeKind
	Stat     Stat
}

// SourceReport holds the per-source counters and final status of spec §3.
type SourceReport struct {
	SourceID string
	counts   map[ReportCell]int
	// Status is the final SyncML status code reported for this source.
	Status int
}

// NewSourceReport creates an empty report for one source.
func NewSourceReport(sourceID string) *SourceReport {
	return &SourceReport{SourceID: sourceID, counts: make(map[ReportCell]int)}
}

// Add increments one counter cell. Counters are monotonic within a run
// (spec §3); Add never decrements.
func (r *SourceReport) Add(loc Location, kind ChangeKind, stat Stat, n int) {
	if n < 0 {
		return
	}
	r.counts[ReportCell{loc, kind, stat}] += n
}

// Get reads one counter cell.
func (r *SourceReport) Get(loc Location, kind ChangeKind, stat Stat) int {
	return r.counts[ReportCell{loc, kind, stat}]
}

// Keys returns every non-zero cell, for persistence (spec §6's
// "source-<name>-stat-<location>-<state>-<result>" key encoding).
func (r *SourceReport) Keys() []ReportCell {
	keys := make([]ReportCell, 0, len(r.counts))
	for c, n := range r.counts {
		if n != 0 {
			keys = append(keys, c)
		}
	}
	return keys
}

// Key renders one cell's on-disk property key.
func Key(sourceID string, c ReportCell) string {
	return "source-" + sourceID + "-stat-" + c.Location.String() + "-" + c.Kind.String() + "-" + c.Stat.String()
}

// TotalLocalOps sums every ITEM_LOCAL.{ADDED,UPDATED,REMOVED}.TOTAL
// counter, used to enforce the no-phantom-accounting invariant of spec §8
// ("sum of per-source report counters ... ≤ total operations performed").
func (r *SourceReport) TotalLocalOps() int {
	return r.Get(ItemLocal, KindAdded, StatTotal) +
		r.Get(ItemLocal, KindUpdated, StatTotal) +
		r.Get(ItemLocal, KindRemoved, StatTotal)
}

// SyncReport is the per-session aggregation of every active source's
// SourceReport (spec §2, §4.5 step 7).
type SyncReport struct {
	SessionID string
	Sources   map[string]*SourceReport
	// Status is the overall session status: the first non-OK per-source
	// status, or OK if every source succeeded (spec §7 "Propagation").
	Status int
}

// NewSyncReport creates an empty session report.
func NewSyncReport(sessionID string) *SyncReport {
	return &SyncReport{SessionID: sessionID, Sources: make(map[string]*SourceReport)}
}

// Source returns (creating if absent) the SourceReport for sourceID.
func (r *SyncReport) Source(sourceID string) *SourceReport {
	s, ok := r.Sources[sourceID]
	if !ok {
		s = NewSourceReport(sourceID)
		r.Sources[sourceID] = s
	}
	return s
}

// Finalize computes Status as the first non-OK per-source status,
// defaulting to okStatus (the Session Controller passes 200) when every
// source succeeded.
func (r *SyncReport) Finalize(okStatus int) {
	r.Status = okStatus
	for _, s := range r.Sources {
		if s.Status != okStatus {
			r.Status = s.Status
			return
		}
	}
}
