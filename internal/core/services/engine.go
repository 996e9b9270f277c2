package services

import (
	"context"
	"fmt"
	"time"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// transportTimeout bounds a single Transport.Send round trip.
const transportTimeout = 2 * time.Minute

// deleteContentType is the sentinel Message.ContentType the engine uses
// to carry a deletion instruction over a Transport that otherwise only
// moves opaque item payloads: a delete has no body worth framing as a
// source content type, so it gets one of its own instead of inventing a
// wire envelope around driven.Message.
const deleteContentType = "application/vnd.syncevo.delete"

// maxTransportRetries bounds how many times step() retries a single
// TRANSPORT_FAIL before giving up and failing the exchange (spec §4.4's
// TRANSPORT_FAIL step command exists precisely so the driver loop can
// retry a flaky round trip instead of failing the whole session on it).
const maxTransportRetries = 1

// Engine drives the SyncML step-command state machine for one source
// (C4, spec §4.4): negotiate capabilities, push local changes, pull
// remote changes, and apply them, emitting ProgressEvents as it goes.
//
// Engine intentionally does not know about sessions, the priority queue,
// or multiple sources at once; that orchestration belongs to Controller
// (C5). Engine only knows how to step one source through one exchange.
type Engine struct {
	transport driven.Transport
	sink      driven.LogSink
}

// NewEngine builds an Engine that exchanges SyncML messages over
// transport and reports progress to sink.
func NewEngine(transport driven.Transport, sink driven.LogSink) *Engine {
	return &Engine{transport: transport, sink: sink}
}

// exchange carries one Run call's mutable state through repeated step()
// calls: the queues of work still to do and the counters step() updates
// as it drains them.
type exchange struct {
	toSend   []domain.LUID
	added    map[domain.LUID]bool
	toDelete []domain.LUID

	sendTotal   int
	sendCount   int
	deleteTotal int
	deleteCount int
	recvCount   int
	recvTotal   int

	remoteDone     bool
	pendingReply   *driven.Message
	transportTries int
}

// Run drives src through one full sync exchange for the given
// ChangeSet/EngineParams, returning the finished SourceReport. It
// implements the driver loop of spec §4.4: step until step_cmd is
// terminal, translating each engine outcome into the matching progress
// events and report counters. suspendRequested is polled at each step
// boundary; when it reports true the loop stops with StepSuspend instead
// of running to completion, and Run returns domain.ErrSessionSuspended so
// Controller can distinguish a graceful pause from a hard abort.
func (e *Engine) Run(ctx context.Context, sessionID string, src driven.SyncSource, params domain.EngineParams, mode domain.SyncMode, set domain.ChangeSet, resumed bool, suspendRequested func() bool) (*domain.SourceReport, error) {
	sourceID := src.ID()
	report := domain.NewSourceReport(sourceID)

	ex := &exchange{
		toSend:   append(append([]domain.LUID{}, set.New...), set.Updated...),
		added:    make(map[domain.LUID]bool, len(set.New)),
		toDelete: append([]domain.LUID{}, set.Deleted...),
	}
	for _, luid := range set.New {
		ex.added[luid] = true
	}
	ex.sendTotal = len(ex.toSend)
	ex.deleteTotal = len(ex.toDelete)

	kind := domain.AlertNormal
	if set.Empty() {
		kind = domain.AlertFirstTimeSlow
	}
	e.emit(sessionID, domain.Alerted(sourceID, kind, resumed, params.Direction))
	e.emit(sessionID, domain.Preparing(sourceID, 0, ex.sendTotal))
	if ex.deleteTotal > 0 {
		e.emit(sessionID, domain.Deleting(sourceID, 0, ex.deleteTotal))
	}

	if err := src.BeginSync(ctx, sessionID, params); err != nil {
		report.Status = statusFromKind(domain.KindLocal)
		return report, domain.NewSyncError(domain.KindLocal, report.Status, sourceID, err)
	}

	step := domain.StepClientStart
	if resumed {
		step = domain.StepRestart
	}

	for !step.Terminal() {
		if suspendRequested != nil && suspendRequested() {
			step = domain.StepSuspend
			break
		}

		next, err := e.step(ctx, sessionID, src, params, step, ex, report)
		if err != nil {
			_ = src.EndSync(ctx)
			k := classifyStepErr(next)
			report.Status = statusFromKind(k)
			return report, domain.NewSyncError(k, report.Status, sourceID, err)
		}
		step = next
	}

	if step == domain.StepSuspend {
		_ = src.EndSync(ctx)
		report.Status = statusFromKind(domain.KindSuspended)
		e.emit(sessionID, domain.SyncEnd(sourceID, report.Status, mode, resumed))
		return report, domain.ErrSessionSuspended
	}

	if err := src.EndSync(ctx); err != nil {
		report.Status = statusFromKind(domain.KindLocal)
		return report, domain.NewSyncError(domain.KindLocal, report.Status, sourceID, err)
	}

	report.Status = 200
	e.emit(sessionID, domain.SyncEnd(sourceID, report.Status, mode, resumed))
	return report, nil
}

// classifyStepErr maps a terminal step outcome onto the error Kind bucket
// Run reports it under.
func classifyStepErr(step domain.StepCmd) domain.Kind {
	if step == domain.StepAbort {
		return domain.KindAborted
	}
	return domain.KindProtocol
}

// step executes one transition of the driver loop (spec §4.4): it
// switches on the step command Run is currently holding and returns the
// next one. Each call does exactly one unit of work — one handshake
// round trip, one item sent, one item received and applied — so Run's
// loop actually iterates through the exchange instead of completing it
// in a single pass.
func (e *Engine) step(ctx context.Context, sessionID string, src driven.SyncSource, params domain.EngineParams, current domain.StepCmd, ex *exchange, report *domain.SourceReport) (domain.StepCmd, error) {
	sourceID := src.ID()

	if err := ctx.Err(); err != nil {
		return domain.StepAbort, err
	}

	switch current {
	case domain.StepClientStart:
		return e.stepClientStart(ctx, sessionID, src)

	case domain.StepRestart:
		e.sink.Logf(sessionID, "source %s: resumed suspended exchange", sourceID)
		return domain.StepOK, nil

	case domain.StepOK, domain.StepSentData, domain.StepProgress:
		ex.transportTries = 0
		return e.decideNext(params, ex), nil

	case domain.StepSendData:
		return e.stepSendData(ctx, sessionID, src, ex, report)

	case domain.StepNeedData:
		return e.stepNeedData(ctx, sessionID, ex)

	case domain.StepGotData:
		return e.stepGotData(ctx, sessionID, src, ex, report)

	case domain.StepTransportFail:
		if ex.transportTries >= maxTransportRetries {
			return domain.StepError, fmt.Errorf("source %s: transport failed after retry", sourceID)
		}
		return e.resumeAfterTransportFail(sessionID, ex), nil

	default:
		return domain.StepDone, nil
	}
}

// decideNext picks SEND_DATA, NEED_DATA or DONE based on what's left to
// do and which direction this source is allowed to move in.
func (e *Engine) decideNext(params domain.EngineParams, ex *exchange) domain.StepCmd {
	canSend := params.Direction != domain.DirectionFromServer
	canReceive := params.Direction != domain.DirectionFromClient

	if canSend && (len(ex.toDelete) > 0 || len(ex.toSend) > 0) {
		return domain.StepSendData
	}
	if canReceive && !ex.remoteDone {
		return domain.StepNeedData
	}
	return domain.StepDone
}

func (e *Engine) stepClientStart(ctx context.Context, sessionID string, src driven.SyncSource) (domain.StepCmd, error) {
	msg := driven.Message{ContentType: "application/vnd.syncml+xml", Body: []byte("alert")}
	if _, err := e.transport.Send(ctx, msg, transportTimeout); err != nil {
		return domain.StepTransportFail, nil
	}
	e.sink.Logf(sessionID, "source %s: handshake complete", src.ID())
	return domain.StepOK, nil
}

func (e *Engine) stepSendData(ctx context.Context, sessionID string, src driven.SyncSource, ex *exchange, report *domain.SourceReport) (domain.StepCmd, error) {
	sourceID := src.ID()

	if len(ex.toDelete) > 0 {
		luid := ex.toDelete[0]
		msg := driven.Message{ContentType: deleteContentType, Body: []byte(luid)}
		if _, err := e.transport.Send(ctx, msg, transportTimeout); err != nil {
			return domain.StepTransportFail, nil
		}
		ex.toDelete = ex.toDelete[1:]
		ex.deleteCount++
		report.Add(domain.ItemLocal, domain.KindRemoved, domain.StatTotal, 1)
		e.emit(sessionID, domain.Deleting(sourceID, ex.deleteCount, ex.deleteTotal))
		e.emit(sessionID, domain.DSStats(sourceID, domain.KindRemoved, 1))
		return domain.StepSentData, nil
	}

	luid := ex.toSend[0]
	item, err := src.ReadItem(ctx, luid)
	if err != nil {
		ex.toSend = ex.toSend[1:]
		report.Add(domain.ItemLocal, domain.KindAny, domain.StatReject, 1)
		return domain.StepError, fmt.Errorf("source %s: read local change %s: %w", sourceID, luid, err)
	}

	msg := driven.Message{ContentType: string(item.ContentType), Body: item.Content}
	reply, err := e.transport.Send(ctx, msg, transportTimeout)
	if err != nil {
		return domain.StepTransportFail, nil
	}

	ex.toSend = ex.toSend[1:]
	ex.sendCount++
	kind := domain.KindUpdated
	if ex.added[luid] {
		kind = domain.KindAdded
	}
	report.Add(domain.ItemLocal, kind, domain.StatTotal, 1)
	report.Add(domain.ItemLocal, domain.KindAny, domain.StatSentBytes, len(item.Content))
	e.emit(sessionID, domain.ItemSent(sourceID, ex.sendCount, ex.sendTotal))
	e.emit(sessionID, domain.DSStats(sourceID, kind, 1))
	if reply != nil {
		e.emit(sessionID, domain.DSBytes(sourceID, len(item.Content), len(reply.Body)))
	}
	return domain.StepSentData, nil
}

func (e *Engine) stepNeedData(ctx context.Context, sessionID string, ex *exchange) (domain.StepCmd, error) {
	msg := driven.Message{ContentType: "application/vnd.syncml+xml"}
	reply, err := e.transport.Send(ctx, msg, transportTimeout)
	if err != nil {
		return domain.StepTransportFail, nil
	}
	if reply == nil || len(reply.Body) == 0 {
		ex.remoteDone = true
		e.sink.Logf(sessionID, "remote reports no more data")
		return domain.StepOK, nil
	}
	ex.pendingReply = reply
	return domain.StepGotData, nil
}

func (e *Engine) stepGotData(ctx context.Context, sessionID string, src driven.SyncSource, ex *exchange, report *domain.SourceReport) (domain.StepCmd, error) {
	sourceID := src.ID()
	reply := ex.pendingReply
	ex.pendingReply = nil

	if reply.ContentType == "text/plain" && !supports(src, domain.ContentTypeText) {
		e.emit(sessionID, domain.DisplayAlert(sourceID, string(reply.Body)))
		return domain.StepProgress, nil
	}

	if reply.ContentType == deleteContentType {
		luid := domain.LUID(reply.Body)
		if err := src.DeleteItem(ctx, luid); err != nil {
			report.Add(domain.ItemRemote, domain.KindRemoved, domain.StatReject, 1)
			return domain.StepError, fmt.Errorf("source %s: apply remote delete: %w", sourceID, err)
		}
		ex.recvCount++
		report.Add(domain.ItemRemote, domain.KindRemoved, domain.StatTotal, 1)
		e.emit(sessionID, domain.ItemReceived(sourceID, ex.recvCount, ex.recvTotal))
		e.emit(sessionID, domain.DSStats(sourceID, domain.KindRemoved, 1))
		return domain.StepProgress, nil
	}

	item := domain.Item{SourceID: sourceID, ContentType: domain.ContentType(reply.ContentType), Content: reply.Body}
	result, err := src.InsertItem(ctx, item)
	if err != nil {
		report.Add(domain.ItemRemote, domain.KindAny, domain.StatReject, 1)
		return domain.StepError, fmt.Errorf("source %s: apply remote change: %w", sourceID, err)
	}

	ex.recvCount++
	report.Add(domain.ItemRemote, domain.KindAny, domain.StatReceivedBytes, len(reply.Body))
	e.emit(sessionID, domain.ItemReceived(sourceID, ex.recvCount, ex.recvTotal))

	switch result.State {
	case domain.InsertMerged:
		e.emit(sessionID, domain.ItemProcessed(sourceID, 0, 1, 0))
		report.Add(domain.ItemRemote, domain.KindUpdated, domain.StatTotal, 1)
		report.Add(domain.ItemRemote, domain.KindAny, domain.StatTotal, 1)
		report.Add(domain.ItemRemote, domain.KindAny, domain.StatMatch, 1)
		report.Add(domain.ItemRemote, domain.KindAny, domain.StatConflictDuplicated, 1)
	case domain.InsertNeedsMerge:
		report.Add(domain.ItemRemote, domain.KindAny, domain.StatConflictServerWon, 1)
		e.emit(sessionID, domain.DisplayAlert(sourceID, fmt.Sprintf("item %s needs manual merge", result.LUID)))
	default:
		kind := domain.KindUpdated
		added := 0
		if item.LUID.IsEmpty() {
			kind = domain.KindAdded
			added = 1
		}
		report.Add(domain.ItemRemote, kind, domain.StatTotal, 1)
		report.Add(domain.ItemRemote, domain.KindAny, domain.StatTotal, 1)
		e.emit(sessionID, domain.ItemProcessed(sourceID, added, 1-added, 0))
	}
	return domain.StepProgress, nil
}

func (e *Engine) resumeAfterTransportFail(sessionID string, ex *exchange) domain.StepCmd {
	ex.transportTries++
	e.sink.Logf(sessionID, "retrying after transport failure (attempt %d)", ex.transportTries)
	if len(ex.toDelete) > 0 || len(ex.toSend) > 0 {
		return domain.StepSendData
	}
	if ex.pendingReply == nil {
		return domain.StepNeedData
	}
	return domain.StepGotData
}

func supports(src driven.SyncSource, ct domain.ContentType) bool {
	for _, t := range src.SupportedContentTypes() {
		if t == ct {
			return true
		}
	}
	return false
}

func (e *Engine) emit(sessionID string, event domain.ProgressEvent) {
	e.sink.Progress(sessionID, event)
}

// statusFromKind maps an error Kind onto a representative SyncML status
// code family for reporting (spec §7 "Propagation").
func statusFromKind(k domain.Kind) int {
	switch k {
	case domain.KindCredentials:
		return 401
	case domain.KindConfig:
		return 400
	case domain.KindTransport:
		return 503
	case domain.KindProtocol:
		return 500
	case domain.KindDatastore, domain.KindLocal:
		return 510
	case domain.KindAborted:
		return 514
	case domain.KindSuspended:
		return 516
	default:
		return 500
	}
}
