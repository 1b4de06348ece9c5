package main

import (
	"log"
	"os"
	"time"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	os.MkdirAll(cfg.OutputDir, 0755)

	// Sent progress is day-scoped working state; keep a week of it.
	cutoff := time.Now().In(cfg.Location).AddDate(0, 0, -7)
	if removed, err := DeleteProgressBefore(db, cutoff); err != nil {
		log.Printf("Error cleaning old progress: %v", err)
	} else if removed > 0 {
		log.Printf("Removed %d old progress rows", removed)
	}

	var overrides *KeywordOverrides
	if cfg.KeywordsPath != "" {
		overrides, err = LoadKeywordOverrides(cfg.KeywordsPath)
		if err != nil {
			log.Fatalf("Failed to load keyword overrides: %v", err)
		}
		log.Printf("Loaded keyword overrides from %s (streaming=%d reset=%d)",
			cfg.KeywordsPath, len(overrides.Streaming), len(overrides.Reset))
	}

	engine := NewEngine(overrides)
	catalog := NewCatalog(NewSQLiteStore(db))

	var api *slack.Client
	if cfg.SlackConfigured() {
		api = slack.New(cfg.SlackBotToken)
	}

	StartAutoFetchScheduler(cfg, db, api)
	StartReminderScheduler(cfg, db, api)

	router := NewRouter(cfg, db, engine, catalog)
	log.Printf("Starting Follow-up Generator on %s...", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
