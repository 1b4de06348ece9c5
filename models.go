package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TicketEntry is one row of agent input for message generation.
type TicketEntry struct {
	Nama      string `json:"nama"`
	Tiket     string `json:"tiket"`
	Kategori  string `json:"kategori"`
	Keperluan string `json:"keperluan"`
}

type Classification struct {
	Template string `json:"template"`
	Name     string `json:"name"`
}

// ClassifiedEntry is a TicketEntry annotated by the detection engine.
type ClassifiedEntry struct {
	TicketEntry
	Index        int    `json:"index"` // 0-based position in the batch
	TemplateType string `json:"templateType"`
	TemplateName string `json:"templateName"`
	Confidence   int    `json:"confidence"`
}

type QualityWarning struct {
	Index   int    `json:"index"` // 1-based entry number as displayed
	Message string `json:"message"`
}

type QualityReport struct {
	Warnings     []QualityWarning `json:"warnings"`
	TotalEntries int              `json:"totalEntries"`
	HasIssues    bool             `json:"hasIssues"`
}

type DetectionStats struct {
	TemplateCounts     map[string]int `json:"templateCounts"`
	TotalEntries       int            `json:"totalEntries"`
	AverageConfidence  int            `json:"averageConfidence"`
	MostCommonTemplate string         `json:"mostCommonTemplate"`
}

// PendingTicket is one outbound ticket fetched from the remote sheet API.
type PendingTicket struct {
	TicketCode string    `json:"ticket_code"`
	Nama       string    `json:"nama"`
	Kategori   string    `json:"kategori"`
	Keperluan  string    `json:"keperluan"`
	Region     string    `json:"region"`
	Status     string    `json:"status"`
	InputAt    time.Time `json:"input_at"`
}

var ticketCodeRegex = regexp.MustCompile(`^[A-Z0-9]+$`)

// IsValidTicket reports whether a ticket code is 6-12 uppercase
// alphanumeric characters after trimming.
func IsValidTicket(code string) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) < 6 || len(trimmed) > 12 {
		return false
	}
	return ticketCodeRegex.MatchString(trimmed)
}

// GreetingAt returns the Indonesian salutation for the local hour of t.
func GreetingAt(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 11:
		return "Selamat pagi"
	case hour >= 11 && hour < 15:
		return "Selamat siang"
	case hour >= 15 && hour < 19:
		return "Selamat sore"
	default:
		return "Selamat malam"
	}
}

// ParseEntries builds ticket entries from the four newline-delimited
// input columns. Every column must have the same number of non-blank
// lines; line N of each column forms entry N.
func ParseEntries(nama, tiket, kategori, keperluan string) ([]TicketEntry, error) {
	names := splitLines(nama)
	tickets := splitLines(tiket)
	categories := splitLines(kategori)
	purposes := splitLines(keperluan)

	n := len(names)
	if len(tickets) != n || len(categories) != n || len(purposes) != n {
		return nil, fmt.Errorf("input columns are misaligned: nama=%d tiket=%d kategori=%d keperluan=%d",
			n, len(tickets), len(categories), len(purposes))
	}

	entries := make([]TicketEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, TicketEntry{
			Nama:      names[i],
			Tiket:     tickets[i],
			Kategori:  categories[i],
			Keperluan: purposes[i],
		})
	}
	return entries, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
