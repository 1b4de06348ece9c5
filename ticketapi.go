package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// The remote backend is a spreadsheet-backed web app: one endpoint,
// action selected by query string, JSON bodies, column-header keys in
// responses.

type CreateTicketRequest struct {
	Nama        string `json:"nama"`
	IDPelanggan string `json:"id_pelanggan"`
	Kategori    string `json:"kategori"`
	Keperluan   string `json:"keperluan"`
	Region      string `json:"region"`
}

type ticketAPIResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Message  string `json:"message"`
	TicketID string `json:"ticket_id"`
}

// CreateRemoteTicket registers a new follow-up ticket upstream and
// returns its assigned ticket id.
func CreateRemoteTicket(cfg Config, req CreateTicketRequest) (string, error) {
	if req.Nama == "" || req.Kategori == "" || req.Keperluan == "" {
		return "", fmt.Errorf("nama, kategori and keperluan are required")
	}
	var resp ticketAPIResponse
	if err := callTicketAPI(cfg, "create_ticket", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("create_ticket rejected: %s", resp.Error)
	}
	return resp.TicketID, nil
}

// FetchPendingTickets lists tickets still waiting for agent follow-up.
func FetchPendingTickets(cfg Config) ([]PendingTicket, error) {
	var records []map[string]any
	if err := callTicketAPI(cfg, "get_pending_tickets", nil, &records); err != nil {
		return nil, err
	}

	tickets := make([]PendingTicket, 0, len(records))
	for _, record := range records {
		ticket := pendingFromRecord(record, cfg.Location)
		if ticket.TicketCode == "" {
			log.Printf("ticket-api skipping record without ticket code: %v", record)
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// AssignRemoteTicket claims a pending ticket for a PIC and stamps the
// reply time upstream.
func AssignRemoteTicket(cfg Config, ticketID, pic string, now time.Time) error {
	if strings.TrimSpace(ticketID) == "" {
		return fmt.Errorf("ticket id is required")
	}
	if pic == "" {
		pic = cfg.DefaultPIC
	}
	body := map[string]string{
		"ticket_id":       ticketID,
		"status":          "IN PROGRESS",
		"pic_fu":          pic,
		"tanggal_balasan": now.Format(time.RFC3339),
	}
	var resp ticketAPIResponse
	if err := callTicketAPI(cfg, "update_ticket", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("update_ticket rejected: %s", resp.Error)
	}
	return nil
}

func callTicketAPI(cfg Config, action string, body any, out any) error {
	if !cfg.TicketAPIConfigured() {
		return fmt.Errorf("ticket_api_url is not configured")
	}
	apiURL := fmt.Sprintf("%s?action=%s", cfg.TicketAPIURL, url.QueryEscape(action))

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", action, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest("POST", apiURL, reader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing %s request: %w", action, err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading %s response: %w", action, err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("ticket API returned %d for %s: %s", resp.StatusCode, action, string(raw))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("empty response from ticket API for %s", action)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", action, err)
	}
	return nil
}

// pendingFromRecord maps one sheet row to a PendingTicket. The upstream
// sheet carries a long-standing header typo, so both "Nomor Tiket" and
// "Nomor TIket" are accepted.
func pendingFromRecord(record map[string]any, loc *time.Location) PendingTicket {
	ticket := PendingTicket{
		TicketCode: recordString(record, "Nomor Tiket", "Nomor TIket"),
		Nama:       recordString(record, "Nama Pelanggan"),
		Kategori:   recordString(record, "Kategori Gangguan"),
		Keperluan:  recordString(record, "Keperluan FU"),
		Region:     recordString(record, "Region"),
		Status:     recordString(record, "Status"),
	}
	if ticket.Status == "" {
		ticket.Status = "OPEN"
	}
	ticket.InputAt = parseSheetTime(recordString(record, "Tanggal & Waktu Input"), loc)
	return ticket
}

func recordString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func parseSheetTime(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2/1/2006 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
