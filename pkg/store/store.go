// Package store archives parsed conversations in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/ccollicutt/chatlog/pkg/conversation"
	"github.com/ccollicutt/chatlog/pkg/parser"
)

// ErrNotFound is returned when an archived conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// Summary describes an archived conversation without its messages.
type Summary struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Self       string    `json:"self"`
	Messages   int       `json:"messages"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Store is a SQLite-backed conversation archive.
type Store struct {
	db  *sql.DB
	log *logrus.Logger
}

// Open opens (creating if needed) the archive at path.
func Open(path string, log *logrus.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating archive: %w", err)
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS conversations (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		self        TEXT NOT NULL,
		messages    INTEGER NOT NULL,
		archived_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		date            TEXT NOT NULL,
		time            TEXT NOT NULL,
		sender          TEXT NOT NULL,
		content         TEXT NOT NULL,
		PRIMARY KEY (conversation_id, seq)
	);
	`)
	return err
}

// Save archives a conversation and its messages in one transaction.
func (s *Store) Save(ctx context.Context, conv *conversation.Conversation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	msgs := conv.Messages()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (id, source, self, messages, archived_at) VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.Source, conv.Self, len(msgs), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("inserting conversation %s: %w", conv.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (conversation_id, seq, date, time, sender, content) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing message insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx, conv.ID, m.Index, m.Date, m.Time, m.Sender, m.Content); err != nil {
			return fmt.Errorf("inserting message %d: %w", m.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing conversation %s: %w", conv.ID, err)
	}

	s.log.WithFields(logrus.Fields{
		"id":       conv.ID,
		"source":   conv.Source,
		"messages": len(msgs),
	}).Debug("conversation archived")
	return nil
}

// List returns archived conversations, most recent first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, self, messages, archived_at FROM conversations ORDER BY archived_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Source, &sum.Self, &sum.Messages, &sum.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get loads an archived conversation. Messages come back in their
// original order with their original indexes.
func (s *Store) Get(ctx context.Context, id string) (*conversation.Conversation, error) {
	var source, self string
	err := s.db.QueryRowContext(ctx,
		`SELECT source, self FROM conversations WHERE id = ?`, id,
	).Scan(&source, &self)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, date, time, sender, content FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading messages for %s: %w", id, err)
	}
	defer rows.Close()

	var msgs []parser.Message
	for rows.Next() {
		var m parser.Message
		if err := rows.Scan(&m.Index, &m.Date, &m.Time, &m.Sender, &m.Content); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return conversation.New(source, msgs, conversation.WithID(id), conversation.WithSelf(self))
}

// Delete removes an archived conversation.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
