package utils

import (
	"testing"
	"time"
)

func TestInvoiceRoundTrip(t *testing.T) {
	for _, id := range []int64{1, 42, 9007199254740993} {
		invoice := FormatInvoice("APT-", id)
		got, ok := ParseAppointmentID("APT-", invoice)
		if !ok || got != id {
			t.Errorf("round trip %d: got %d ok=%v (invoice %q)", id, got, ok, invoice)
		}
	}
}

func TestParseAppointmentID(t *testing.T) {
	tests := []struct {
		invoice string
		want    int64
		ok      bool
	}{
		{"APT-42", 42, true},
		{" APT-7 ", 7, true},
		{"APT-", 0, false},
		{"APT-0", 0, false},
		{"APT--5", 0, false},
		{"APT-12a", 0, false},
		{"INV-42", 0, false},
		{"42", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAppointmentID("", tt.invoice)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAppointmentID(%q) = %d,%v want %d,%v", tt.invoice, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-14")
	if err != nil || d == nil {
		t.Fatalf("ParseDate: %v", err)
	}
	end := EndOfDay(*d)
	if end.Day() != 14 || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("EndOfDay = %v", end)
	}
	if !end.Before(d.Add(24 * time.Hour)) {
		t.Errorf("EndOfDay must stay within the day")
	}

	if d, err := ParseDate(""); d != nil || err != nil {
		t.Errorf("empty date should be nil,nil")
	}
	if _, err := ParseDate("14/03/2026"); err == nil {
		t.Errorf("expected error for bad format")
	}
}

func TestParseInt64(t *testing.T) {
	if id, err := ParseInt64(" 12 "); err != nil || id != 12 {
		t.Errorf("ParseInt64 = %d, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-3", "abc"} {
		if _, err := ParseInt64(bad); err == nil {
			t.Errorf("ParseInt64(%q) should fail", bad)
		}
	}
}
