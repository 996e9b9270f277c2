// Package http implements the Transport Agent (C3, spec §4.3) over
// HTTP(S), the wire most SyncML peers speak.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure Transport implements the interface.
var _ driven.Transport = (*Transport)(nil)

// Transport sends SyncML message bodies to a peer URL over HTTP(S) and
// waits for the reply, one round trip per Send call. It holds no session
// state of its own; the Protocol Engine decides what to send and when to
// retry.
type Transport struct {
	client *http.Client
	url    string
}

// New creates a Transport posting to the given peer URL.
func New(url string) *Transport {
	return &Transport{
		client: &http.Client{},
		url:    url,
	}
}

// Send posts msg to the peer and blocks for the reply, bounded by
// timeout and ctx. A non-2xx response is reported as
// domain.ErrTransportFailed.
func (t *Transport) Send(ctx context.Context, msg driven.Message, timeout time.Duration) (*driven.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(msg.Body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", msg.ContentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransportFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: peer returned status %d", domain.ErrTransportFailed, resp.StatusCode)
	}

	return &driven.Message{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Close releases the underlying HTTP client's idle connections.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
