// Package mock provides an in-memory transport for local testing and
// integration. It implements transports.Transport without any network
// dependency.
package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rizalarfiyan/tanya/pkg/transports"
)

type Transport struct {
	recvCh chan transports.Request
	sentCh chan transports.Response
	closed atomic.Bool
	mu     sync.Mutex
}

func New() *Transport {
	return &Transport{
		recvCh: make(chan transports.Request, 256),
		sentCh: make(chan transports.Response, 256),
	}
}

func (t *Transport) Name() string { return "mock" }

func (t *Transport) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		<-ctx.Done()
		_ = t.Stop()
	}()
	return nil
}

func (t *Transport) Stop() error {
	if t.closed.CompareAndSwap(false, true) {
		t.mu.Lock()
		close(t.recvCh)
		close(t.sentCh)
		t.mu.Unlock()
	}
	return nil
}

func (t *Transport) Recv() <-chan transports.Request { return t.recvCh }

func (t *Transport) Send(r transports.Response) error {
	if t.closed.Load() {
		return nil
	}
	select {
	case t.sentCh <- r:
	default:
	}
	return nil
}

// Push injects an inbound request into the transport.
func (t *Transport) Push(r transports.Request) {
	if t.closed.Load() {
		return
	}
	select {
	case t.recvCh <- r:
	default:
	}
}

// Sent exposes outbound responses for inspection.
func (t *Transport) Sent() <-chan transports.Response { return t.sentCh }
