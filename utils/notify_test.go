package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

func TestMailerSendBuildsMessage(t *testing.T) {
	m := NewMailer("smtp.example.com", 2525, "user", "pass", "salon@example.com")
	var sent *gomail.Message
	m.dial = func(msg *gomail.Message) error {
		sent = msg
		return nil
	}

	if err := m.Send("client@example.com", "Receipt", "Thanks"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := sent.GetHeader("To"); len(got) != 1 || got[0] != "client@example.com" {
		t.Errorf("To = %v", got)
	}
	if got := sent.GetHeader("From"); len(got) != 1 || got[0] != "salon@example.com" {
		t.Errorf("From = %v", got)
	}
}

func TestMailerSendErrors(t *testing.T) {
	m := NewMailer("smtp.example.com", 2525, "user", "pass", "salon@example.com")
	m.dial = func(*gomail.Message) error { return errors.New("connection refused") }

	if err := m.Send("", "s", "b"); err == nil {
		t.Error("expected error for missing recipient")
	}
	if err := m.Send("a@example.com", "s", "b"); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected dial error, got %v", err)
	}
}

func TestSMSServiceSendMessage(t *testing.T) {
	var destination string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		destination = r.URL.Query().Get("destination")
		w.Write([]byte(`{"status":"success","data":{"message_id":"m1"}}`))
	}))
	defer srv.Close()

	s := &SMSService{Username: "u", APIPath: srv.URL, Client: srv.Client()}
	if err := s.SendMessage("15551234567", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if destination != "+15551234567" {
		t.Errorf("destination = %q, want +15551234567", destination)
	}
}

func TestSMSServiceRejectsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"bad number"}`))
	}))
	defer srv.Close()

	s := &SMSService{Username: "u", APIPath: srv.URL, Client: srv.Client()}
	if err := s.SendMessage("+1", "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildPushMessage(t *testing.T) {
	msg := buildPushMessage("tok", "New earnings", "You earned $10", map[string]string{"type": "earnings_recorded"})
	if msg.Token != "tok" || msg.Notification.Title != "New earnings" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.Data["type"] != "earnings_recorded" || msg.Data["timestamp"] == "" {
		t.Errorf("data = %v", msg.Data)
	}
}
