// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/history.go
// Summary: SQLite-backed scrollback history: lines scrolled off the grid are
// persisted with timestamps and can be searched by substring.
//
// Writes are queued and flushed in batches so the PTY read loop never blocks
// on disk.

package parser

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER NOT NULL,       -- UnixNano
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_timestamp ON lines(timestamp);
`

// HistoryLine is a single recorded scrollback line.
type HistoryLine struct {
	ID        int64
	Timestamp time.Time
	Content   string
}

// History persists scrolled-off terminal lines to SQLite.
type History struct {
	db      *sql.DB
	queue   chan HistoryLine
	stopCh  chan struct{}
	doneCh  chan struct{}
	flushCh chan chan struct{}
}

const (
	historyBatchSize    = 100
	historyBatchTimeout = 5 * time.Second
	historyQueueDepth   = 1000
)

// OpenHistory opens (or creates) the history database at path and starts
// the background batch writer.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to history database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	h := &History{
		db:      db,
		queue:   make(chan HistoryLine, historyQueueDepth),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		flushCh: make(chan chan struct{}),
	}
	go h.writer()
	return h, nil
}

// Record queues a scrolled-off line for persistence. A full queue drops the
// line; history is best-effort and must never stall the terminal.
func (h *History) Record(cells []Cell) {
	text := lineText(cells)
	if text == "" {
		return
	}
	select {
	case h.queue <- HistoryLine{Timestamp: time.Now(), Content: text}:
	default:
	}
}

// lineText flattens a row of cells to its trailing-space-trimmed text.
func lineText(cells []Cell) string {
	runes := make([]rune, len(cells))
	for i, c := range cells {
		if c.Rune == 0 {
			runes[i] = ' '
		} else {
			runes[i] = c.Rune
		}
	}
	return strings.TrimRight(string(runes), " ")
}

func (h *History) writer() {
	defer close(h.doneCh)

	batch := make([]HistoryLine, 0, historyBatchSize)
	timer := time.NewTimer(historyBatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		h.writeBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-h.queue:
			batch = append(batch, entry)
			if len(batch) >= historyBatchSize {
				flush()
			}
		case <-timer.C:
			flush()
			timer.Reset(historyBatchTimeout)
		case ack := <-h.flushCh:
			for {
				select {
				case entry := <-h.queue:
					batch = append(batch, entry)
					continue
				default:
				}
				break
			}
			flush()
			close(ack)
		case <-h.stopCh:
			for {
				select {
				case entry := <-h.queue:
					batch = append(batch, entry)
					continue
				default:
				}
				break
			}
			flush()
			return
		}
	}
}

func (h *History) writeBatch(batch []HistoryLine) {
	tx, err := h.db.Begin()
	if err != nil {
		return
	}
	stmt, err := tx.Prepare("INSERT INTO lines(timestamp, content) VALUES(?, ?)")
	if err != nil {
		tx.Rollback()
		return
	}
	for _, entry := range batch {
		stmt.Exec(entry.Timestamp.UnixNano(), entry.Content)
	}
	stmt.Close()
	tx.Commit()
}

// Flush blocks until every queued line has been written.
func (h *History) Flush() {
	ack := make(chan struct{})
	select {
	case h.flushCh <- ack:
		<-ack
	case <-h.doneCh:
	}
}

// Search returns up to limit lines containing the query substring,
// newest first.
func (h *History) Search(query string, limit int) ([]HistoryLine, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := h.db.Query(
		`SELECT id, timestamp, content FROM lines
		 WHERE content LIKE ? ESCAPE '\'
		 ORDER BY timestamp DESC LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("history search: %w", err)
	}
	defer rows.Close()

	var results []HistoryLine
	for rows.Next() {
		var line HistoryLine
		var ts int64
		if err := rows.Scan(&line.ID, &ts, &line.Content); err != nil {
			return nil, err
		}
		line.Timestamp = time.Unix(0, ts)
		results = append(results, line)
	}
	return results, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// Close flushes pending writes and closes the database.
func (h *History) Close() error {
	close(h.stopCh)
	<-h.doneCh
	return h.db.Close()
}
