package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	TicketAPIURL string `yaml:"ticket_api_url"`
	DefaultPIC   string `yaml:"default_pic"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	DBPath       string `yaml:"db_path"`
	OutputDir    string `yaml:"output_dir"`
	KeywordsPath string `yaml:"keywords_path"`

	AutoFetchSchedule string `yaml:"auto_fetch_schedule"`
	ReminderDay       string `yaml:"reminder_day"`
	ReminderTime      string `yaml:"reminder_time"`
	Timezone          string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.TicketAPIURL, "TICKET_API_URL")
	envOverride(&cfg.DefaultPIC, "DEFAULT_PIC")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverride(&cfg.KeywordsPath, "KEYWORDS_PATH")
	envOverride(&cfg.AutoFetchSchedule, "AUTO_FETCH_SCHEDULE")
	envOverride(&cfg.ReminderDay, "REMINDER_DAY")
	envOverride(&cfg.ReminderTime, "REMINDER_TIME")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8790"
	}
	if cfg.DefaultPIC == "" {
		cfg.DefaultPIC = "Outbound_User"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./followupbot.db"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./exports"
	}
	if cfg.ReminderDay == "" {
		cfg.ReminderDay = "daily"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Jakarta"
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.SlackBotToken != "" && cfg.SlackChannelID == "" {
		log.Fatalf("slack_channel_id is required when slack_bot_token is set")
	}

	if cfg.AutoFetchSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.AutoFetchSchedule); err != nil {
			log.Fatalf("invalid auto_fetch_schedule '%s': %v", cfg.AutoFetchSchedule, err)
		}
		if cfg.TicketAPIURL == "" {
			log.Fatalf("ticket_api_url is required when auto_fetch_schedule is set")
		}
	}

	if cfg.ReminderTime != "" {
		if _, _, err := parseClock(cfg.ReminderTime); err != nil {
			log.Fatalf("invalid reminder_time '%s': %v", cfg.ReminderTime, err)
		}
		if !validReminderDay(cfg.ReminderDay) {
			log.Fatalf("invalid reminder_day '%s': must be 'daily' or a weekday name", cfg.ReminderDay)
		}
	}

	if cfg.KeywordsPath != "" {
		if _, err := LoadKeywordOverrides(cfg.KeywordsPath); err != nil {
			log.Fatalf("invalid keywords_path '%s': %v", cfg.KeywordsPath, err)
		}
	}

	return cfg
}

func (c Config) TicketAPIConfigured() bool {
	return c.TicketAPIURL != ""
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func validReminderDay(day string) bool {
	if strings.EqualFold(day, "daily") {
		return true
	}
	_, ok := dayMap[strings.ToLower(day)]
	return ok
}

func parseClock(s string) (int, int, error) {
	var hour, min int
	_, err := fmt.Sscanf(s, "%d:%d", &hour, &min)
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("time out of range: %02d:%02d", hour, min)
	}
	return hour, min, nil
}
