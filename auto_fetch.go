package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// FetchResult tracks separate counters for each outcome of a refresh.
type FetchResult struct {
	TotalFetched   int
	New            int
	AlreadyTracked int
	Errors         []string
}

// FetchAndCacheTickets pulls the pending-ticket list from the remote
// API and refreshes the local cache. It has no Slack dependency so it
// can be called from both the HTTP handler and the scheduler.
func FetchAndCacheTickets(cfg Config, db *sql.DB) (FetchResult, error) {
	if !cfg.TicketAPIConfigured() {
		return FetchResult{}, fmt.Errorf("ticket API is not configured")
	}

	var result FetchResult
	tickets, err := FetchPendingTickets(cfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result, fmt.Errorf("fetching pending tickets: %w", err)
	}
	result.TotalFetched = len(tickets)
	log.Printf("auto-fetch fetched=%d", len(tickets))

	for _, ticket := range tickets {
		cached, dbErr := TicketCodeCached(db, ticket.TicketCode)
		if dbErr != nil {
			log.Printf("Error checking ticket cache: %v", dbErr)
			continue
		}
		if cached {
			result.AlreadyTracked++
		} else {
			result.New++
		}
	}

	if _, err := UpsertPendingTickets(db, tickets); err != nil {
		return result, fmt.Errorf("caching pending tickets: %w", err)
	}
	return result, nil
}

// FormatFetchSummary returns a human-readable summary of a FetchResult.
func FormatFetchSummary(result FetchResult) string {
	if len(result.Errors) > 0 && result.TotalFetched == 0 {
		return fmt.Sprintf("Error fetching pending tickets:\n%s", strings.Join(result.Errors, "\n"))
	}

	if result.TotalFetched == 0 {
		return "No tickets waiting for follow-up."
	}

	var parts []string
	if result.New > 0 {
		parts = append(parts, fmt.Sprintf("%d new", result.New))
	}
	if result.AlreadyTracked > 0 {
		parts = append(parts, fmt.Sprintf("%d already tracked", result.AlreadyTracked))
	}
	msg := fmt.Sprintf("Fetched %d pending tickets", result.TotalFetched)
	if len(parts) > 0 {
		msg += fmt.Sprintf(" (%s)", strings.Join(parts, ", "))
	}
	msg += "."
	return msg
}

// StartAutoFetchScheduler starts a cron-based scheduler that refreshes
// the pending-ticket cache and posts a summary to the Slack channel.
// The schedule is a standard 5-field cron expression.
// Examples: "*/30 8-20 * * *" (every 30 min during shift), "0 8 * * 1-5".
func StartAutoFetchScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.AutoFetchSchedule)
	if schedule == "" {
		log.Println("Auto-fetch disabled (auto_fetch_schedule not set)")
		return
	}
	if !cfg.TicketAPIConfigured() {
		log.Println("Auto-fetch disabled: ticket API is not configured")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid auto_fetch_schedule '%s': %v, auto-fetch disabled", schedule, err)
		return
	}

	log.Printf("Auto-fetch scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next auto-fetch at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			result, fetchErr := FetchAndCacheTickets(cfg, db)
			summary := FormatFetchSummary(result)
			if fetchErr != nil {
				log.Printf("Auto-fetch error: %v", fetchErr)
			}
			log.Printf("Auto-fetch complete: %s", summary)

			if api != nil && cfg.SlackConfigured() && result.New > 0 {
				_, _, postErr := api.PostMessage(cfg.SlackChannelID, slack.MsgOptionText(
					fmt.Sprintf("Ticket refresh: %s", summary), false))
				if postErr != nil {
					log.Printf("Auto-fetch post error: %v", postErr)
				}
			}
		}
	}()
}
