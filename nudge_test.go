package main

import (
	"strings"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in       string
		hour     int
		min      int
		wantsErr bool
	}{
		{"09:00", 9, 0, false},
		{"9:5", 9, 5, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		hour, min, err := parseClock(tt.in)
		if tt.wantsErr {
			if err == nil {
				t.Errorf("parseClock(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q): %v", tt.in, err)
			continue
		}
		if hour != tt.hour || min != tt.min {
			t.Errorf("parseClock(%q) = %d:%d, want %d:%d", tt.in, hour, min, tt.hour, tt.min)
		}
	}
}

func TestNextClockTime(t *testing.T) {
	// Saturday Aug 29 2026, 08:00.
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	next := nextClockTime(now, 9, 0)
	if next.Day() != 29 || next.Hour() != 9 {
		t.Fatalf("before target: next = %v", next)
	}

	next = nextClockTime(now, 7, 30)
	if next.Day() != 30 || next.Hour() != 7 || next.Minute() != 30 {
		t.Fatalf("after target: next = %v", next)
	}
}

func TestNextWeekday(t *testing.T) {
	// Saturday Aug 29 2026, 08:00.
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	next := nextWeekday(now, time.Monday, 9, 0)
	if next.Weekday() != time.Monday || next.Day() != 31 {
		t.Fatalf("next Monday = %v", next)
	}

	// Same day, later clock time: still today.
	next = nextWeekday(now, time.Saturday, 10, 0)
	if next.Day() != 29 || next.Hour() != 10 {
		t.Fatalf("same-day later = %v", next)
	}

	// Same day, earlier clock time: a week out.
	next = nextWeekday(now, time.Saturday, 7, 0)
	if next.Day() != 5 || next.Month() != time.September {
		t.Fatalf("same-day earlier = %v", next)
	}
}

func TestFormatPendingDigest(t *testing.T) {
	tickets := []PendingTicket{
		{TicketCode: "ABC123", Nama: "Budi", Kategori: "LAIN-LAIN", Region: "JATIM"},
		{TicketCode: "DEF456", Nama: "Sari", Kategori: "INTERNET DOWN", Region: "JATENG"},
	}
	msg := FormatPendingDigest(tickets)
	if !strings.HasPrefix(msg, "2 tickets are waiting for follow-up:") {
		t.Fatalf("unexpected header: %q", msg)
	}
	if !strings.Contains(msg, "ABC123") || !strings.Contains(msg, "DEF456") {
		t.Fatalf("digest missing tickets:\n%s", msg)
	}
	if strings.Contains(msg, "more.") {
		t.Fatalf("short digest must not be truncated:\n%s", msg)
	}
}

func TestFormatPendingDigestTruncates(t *testing.T) {
	tickets := make([]PendingTicket, 14)
	for i := range tickets {
		tickets[i] = PendingTicket{TicketCode: "TKT" + string(rune('A'+i)), Nama: "X", Kategori: "Y", Region: "Z"}
	}
	msg := FormatPendingDigest(tickets)
	if !strings.Contains(msg, "and 4 more.") {
		t.Fatalf("expected remainder line:\n%s", msg)
	}
	if got := strings.Count(msg, "• "); got != 10 {
		t.Fatalf("digest lists %d tickets, want 10:\n%s", got, msg)
	}
}
