package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rizalarfiyan/tanya/pkg/transports"
)

func dialTransport(t *testing.T, tr *Transport) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(tr)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, srv
}

func TestTextFrameBecomesRequestAndResponseGoesBack(t *testing.T) {
	tr := New(Config{})
	conn, srv := dialTransport(t, tr)
	defer srv.Close()
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("roll 2d6")); err != nil {
		t.Fatalf("write: %v", err)
	}

	var req transports.Request
	select {
	case req = <-tr.Recv():
	case <-time.After(2 * time.Second):
		t.Fatalf("no request received")
	}
	if req.Text != "roll 2d6" || req.ConnID == "" || req.TraceID == "" {
		t.Fatalf("unexpected request %#v", req)
	}

	if err := tr.Send(transports.Response{ConnID: req.ConnID, TraceID: req.TraceID, Text: "you rolled 7"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "you rolled 7" {
		t.Fatalf("unexpected reply %q", msg)
	}
}

func TestBlankFramesAreIgnored(t *testing.T) {
	tr := New(Config{})
	conn, srv := dialTransport(t, tr)
	defer srv.Close()
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("   ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case req := <-tr.Recv():
		t.Fatalf("blank frame must not become a request: %#v", req)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendToUnknownConnection(t *testing.T) {
	tr := New(Config{})
	if err := tr.Send(transports.Response{ConnID: "ghost", Text: "hi"}); err == nil {
		t.Fatalf("expected error for unknown connection")
	}
}

func TestDrainingRefusesUpgrades(t *testing.T) {
	tr := New(Config{})
	_ = tr.Stop()
	srv := httptest.NewServer(tr)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatalf("expected dial failure while draining")
	}
}
