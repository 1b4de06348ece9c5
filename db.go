package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sent_progress (
		date    TEXT NOT NULL,
		tiket   TEXT NOT NULL,
		sent_at DATETIME NOT NULL,
		PRIMARY KEY (date, tiket)
	);
	CREATE INDEX IF NOT EXISTS idx_sent_progress_date ON sent_progress(date);

	CREATE TABLE IF NOT EXISTS pending_tickets (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_code TEXT NOT NULL UNIQUE,
		nama        TEXT NOT NULL DEFAULT '',
		kategori    TEXT NOT NULL DEFAULT '',
		keperluan   TEXT NOT NULL DEFAULT '',
		region      TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'OPEN',
		input_at    DATETIME,
		fetched_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_pending_tickets_status ON pending_tickets(status);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// SQLiteStore adapts the kv table to the catalog's persistence
// contract: failures log and return false, they never propagate.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(key string, out any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.Printf("kv get %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("kv decode %s: %v", key, err)
		return false
	}
	return true
}

func (s *SQLiteStore) Set(key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("kv encode %s: %v", key, err)
		return false
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(raw),
	)
	if err != nil {
		log.Printf("kv set %s: %v", key, err)
		return false
	}
	return true
}

// --- Sent progress ---

func progressDateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func MarkSent(db *sql.DB, date string, tiket string, sentAt time.Time) error {
	_, err := db.Exec(
		`INSERT INTO sent_progress (date, tiket, sent_at) VALUES (?, ?, ?)
		 ON CONFLICT(date, tiket) DO UPDATE SET sent_at = excluded.sent_at`,
		date, tiket, sentAt,
	)
	return err
}

func UnmarkSent(db *sql.DB, date string, tiket string) error {
	_, err := db.Exec(`DELETE FROM sent_progress WHERE date = ? AND tiket = ?`, date, tiket)
	return err
}

func GetSentProgress(db *sql.DB, date string) (map[string]time.Time, error) {
	rows, err := db.Query(`SELECT tiket, sent_at FROM sent_progress WHERE date = ?`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sent := make(map[string]time.Time)
	for rows.Next() {
		var tiket string
		var sentAt time.Time
		if err := rows.Scan(&tiket, &sentAt); err != nil {
			return nil, err
		}
		sent[tiket] = sentAt
	}
	return sent, rows.Err()
}

// DeleteProgressBefore drops progress rows older than cutoff. Progress
// is working state for the agent's day, not an archive.
func DeleteProgressBefore(db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM sent_progress WHERE date < ?`, progressDateKey(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Pending ticket cache ---

func UpsertPendingTickets(db *sql.DB, tickets []PendingTicket) (int, error) {
	if len(tickets) == 0 {
		return 0, nil
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO pending_tickets (ticket_code, nama, kategori, keperluan, region, status, input_at, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(ticket_code) DO UPDATE SET
		   nama = excluded.nama, kategori = excluded.kategori, keperluan = excluded.keperluan,
		   region = excluded.region, status = excluded.status, input_at = excluded.input_at,
		   fetched_at = CURRENT_TIMESTAMP`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, ticket := range tickets {
		if _, err := stmt.Exec(
			ticket.TicketCode, ticket.Nama, ticket.Kategori, ticket.Keperluan,
			ticket.Region, ticket.Status, ticket.InputAt,
		); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, tx.Commit()
}

func TicketCodeCached(db *sql.DB, ticketCode string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pending_tickets WHERE ticket_code = ?`, ticketCode).Scan(&count)
	return count > 0, err
}

func GetCachedPendingTickets(db *sql.DB) ([]PendingTicket, error) {
	rows, err := db.Query(
		`SELECT ticket_code, nama, kategori, keperluan, region, status, input_at, fetched_at
		 FROM pending_tickets
		 WHERE status NOT IN ('DONE', 'CLOSED')
		 ORDER BY input_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []PendingTicket
	for rows.Next() {
		var t PendingTicket
		var inputAt sql.NullTime
		var fetchedAt time.Time
		if err := rows.Scan(&t.TicketCode, &t.Nama, &t.Kategori, &t.Keperluan, &t.Region, &t.Status, &inputAt, &fetchedAt); err != nil {
			return nil, err
		}
		if inputAt.Valid {
			t.InputAt = inputAt.Time
		} else {
			t.InputAt = fetchedAt
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func UpdateCachedTicketStatus(db *sql.DB, ticketCode, status string) error {
	_, err := db.Exec(`UPDATE pending_tickets SET status = ? WHERE ticket_code = ?`, status, ticketCode)
	return err
}
