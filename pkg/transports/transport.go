// Package transports defines the I/O boundary for chat requests and
// responses. Implementations own their network lifecycle; the engine only
// reads Recv and calls Send.
package transports

import "context"

// Request is one inbound user utterance. ConnID identifies the connection the
// response must go back to; TraceID correlates transport logs with run logs.
type Request struct {
	ConnID  string
	TraceID string
	Text    string
}

// Response is the final assistant message for one request.
type Response struct {
	ConnID  string
	TraceID string
	Text    string
}

type Transport interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Recv() <-chan Request
	Send(Response) error
}
