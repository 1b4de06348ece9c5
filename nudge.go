package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

var dayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// StartReminderScheduler posts a digest of tickets still waiting for
// follow-up to the agent channel at the configured time. reminder_day
// is "daily" or a weekday name.
func StartReminderScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	if cfg.ReminderTime == "" {
		log.Println("Reminder disabled (reminder_time not set)")
		return
	}
	if api == nil || !cfg.SlackConfigured() {
		log.Println("Reminder disabled: Slack is not configured")
		return
	}

	hour, min, err := parseClock(cfg.ReminderTime)
	if err != nil {
		log.Printf("Invalid reminder_time '%s': %v, using 09:00", cfg.ReminderTime, err)
		hour, min = 9, 0
	}

	daily := strings.EqualFold(cfg.ReminderDay, "daily")
	var weekday time.Weekday
	if !daily {
		var ok bool
		weekday, ok = dayMap[strings.ToLower(cfg.ReminderDay)]
		if !ok {
			log.Printf("Invalid reminder_day '%s', using daily", cfg.ReminderDay)
			daily = true
		}
	}

	log.Printf("Reminder scheduled (%s at %02d:%02d)", cfg.ReminderDay, hour, min)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			var next time.Time
			if daily {
				next = nextClockTime(now, hour, min)
			} else {
				next = nextWeekday(now, weekday, hour, min)
			}
			wait := next.Sub(now)
			log.Printf("Next reminder at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)
			sendPendingReminder(api, cfg, db)
		}
	}()
}

func nextClockTime(now time.Time, hour, min int) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if now.Before(target) {
		return target
	}
	return target.AddDate(0, 0, 1)
}

func nextWeekday(now time.Time, day time.Weekday, hour, min int) time.Time {
	daysUntil := (day - now.Weekday() + 7) % 7
	if daysUntil == 0 {
		target := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if now.Before(target) {
			return target
		}
		daysUntil = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+int(daysUntil), hour, min, 0, 0, now.Location())
}

func sendPendingReminder(api *slack.Client, cfg Config, db *sql.DB) {
	tickets, err := GetCachedPendingTickets(db)
	if err != nil {
		log.Printf("Error loading pending tickets for reminder: %v", err)
		return
	}
	if len(tickets) == 0 {
		log.Println("Reminder skipped: no pending tickets")
		return
	}

	msg := FormatPendingDigest(tickets)
	_, _, err = api.PostMessage(cfg.SlackChannelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("Error sending reminder: %v", err)
	} else {
		log.Printf("Sent reminder for %d pending tickets", len(tickets))
	}
}

// FormatPendingDigest builds the reminder message body, capped at ten
// tickets with a remainder line.
func FormatPendingDigest(tickets []PendingTicket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d tickets are waiting for follow-up:\n", len(tickets))
	shown := len(tickets)
	if shown > 10 {
		shown = 10
	}
	for _, ticket := range tickets[:shown] {
		fmt.Fprintf(&b, "• `%s` %s - %s (%s)\n", ticket.TicketCode, ticket.Nama, ticket.Kategori, ticket.Region)
	}
	if len(tickets) > shown {
		fmt.Fprintf(&b, "…and %d more.", len(tickets)-shown)
	}
	return strings.TrimRight(b.String(), "\n")
}
