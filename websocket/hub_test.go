package websocket

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu     sync.Mutex
	writes []Notification
	fail   bool
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.writes = append(f.writes, v.(Notification))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ConnectedClients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("connected clients = %d, want %d", h.ConnectedClients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastPaymentSettled(t *testing.T) {
	h := NewHub()
	go h.Run()

	ok := &fakeConn{}
	broken := &fakeConn{fail: true}
	h.register <- &Client{UserID: "desk-1", Conn: ok}
	h.register <- &Client{UserID: "desk-2", Conn: broken}
	waitForClients(t, h, 2)

	h.BroadcastPaymentSettled(map[string]interface{}{"appointmentId": 42})

	ok.mu.Lock()
	defer ok.mu.Unlock()
	if len(ok.writes) != 1 || ok.writes[0].Type != NotificationTypePaymentSettled {
		t.Fatalf("writes = %+v", ok.writes)
	}
}

func TestHubUnregisterClosesConnection(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &fakeConn{}
	client := &Client{UserID: "desk-1", Conn: c}
	h.register <- client
	waitForClients(t, h, 1)

	h.unregister <- client
	waitForClients(t, h, 0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		t.Error("connection should be closed on unregister")
	}
}
