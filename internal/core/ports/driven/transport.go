package driven

import (
	"context"
	"time"
)

// Message is one SyncML request or reply body exchanged over a Transport
// (original_source/src/syncevo/TransportAgent.cpp).
type Message struct {
	ContentType string
	Body        []byte
}

// Transport is the Transport Agent's channel to the SyncML peer (spec
// §4.3): a blocking send/wait-for-reply round trip with a caller-supplied
// timeout. Implementations (HTTP(S), or a loopback pair for tests) must
// not retry internally; retry policy belongs to the Protocol Engine.
type Transport interface {
	// Send delivers msg to the peer and blocks until either a reply
	// arrives, timeout elapses, or ctx is cancelled.
	Send(ctx context.Context, msg Message, timeout time.Duration) (*Message, error)

	// Close releases any held connection resources.
	Close() error
}
