package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchAndCacheTickets(t *testing.T) {
	db := newTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"Nomor Tiket":"ABC123","Nama Pelanggan":"Budi","Kategori Gangguan":"LAIN-LAIN","Keperluan FU":"GANTI SSID","Region":"JATIM","Status":"OPEN"},
			{"Nomor Tiket":"DEF456","Nama Pelanggan":"Sari","Kategori Gangguan":"INTERNET DOWN","Keperluan FU":"KONFIRMASI KENDALA USER","Region":"JATIM","Status":"OPEN"}
		]`)
	}))
	defer srv.Close()
	cfg := Config{TicketAPIURL: srv.URL, Location: time.UTC}

	result, err := FetchAndCacheTickets(cfg, db)
	if err != nil {
		t.Fatalf("FetchAndCacheTickets: %v", err)
	}
	if result.TotalFetched != 2 || result.New != 2 || result.AlreadyTracked != 0 {
		t.Fatalf("first fetch result = %+v", result)
	}

	pending, err := GetCachedPendingTickets(db)
	if err != nil {
		t.Fatalf("GetCachedPendingTickets: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("cache has %d tickets, want 2", len(pending))
	}

	// A second fetch of the same tickets counts them as tracked.
	result, err = FetchAndCacheTickets(cfg, db)
	if err != nil {
		t.Fatalf("second FetchAndCacheTickets: %v", err)
	}
	if result.New != 0 || result.AlreadyTracked != 2 {
		t.Fatalf("second fetch result = %+v", result)
	}
}

func TestFetchAndCacheTicketsUnconfigured(t *testing.T) {
	db := newTestDB(t)
	if _, err := FetchAndCacheTickets(Config{}, db); err == nil {
		t.Fatal("unconfigured ticket API must error")
	}
}

func TestFetchAndCacheTicketsRemoteError(t *testing.T) {
	db := newTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	result, err := FetchAndCacheTickets(Config{TicketAPIURL: srv.URL, Location: time.UTC}, db)
	if err == nil {
		t.Fatal("remote failure must propagate")
	}
	if len(result.Errors) == 0 {
		t.Fatal("result must carry the error text")
	}
}

func TestFormatFetchSummary(t *testing.T) {
	tests := []struct {
		result FetchResult
		want   string
	}{
		{FetchResult{}, "No tickets waiting for follow-up."},
		{FetchResult{TotalFetched: 3, New: 3}, "Fetched 3 pending tickets (3 new)."},
		{FetchResult{TotalFetched: 5, New: 2, AlreadyTracked: 3}, "Fetched 5 pending tickets (2 new, 3 already tracked)."},
		{FetchResult{TotalFetched: 4, AlreadyTracked: 4}, "Fetched 4 pending tickets (4 already tracked)."},
	}
	for _, tt := range tests {
		if got := FormatFetchSummary(tt.result); got != tt.want {
			t.Errorf("FormatFetchSummary(%+v) = %q, want %q", tt.result, got, tt.want)
		}
	}

	errSummary := FormatFetchSummary(FetchResult{Errors: []string{"timeout"}})
	if !strings.Contains(errSummary, "timeout") {
		t.Errorf("error summary missing cause: %q", errSummary)
	}
}
