package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"instadm/pkg/logger"
)

// SQLiteStore is the SQLite-backed contact ledger and pagination cursor
// store. A single run issues many short transactions against it; no
// cross-call atomicity is assumed.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// Open opens (or creates) the database at dbPath and ensures the schema.
func Open(dbPath string, log logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode for concurrent readers, busy timeout for short write bursts.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: log}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pk INTEGER,
		username TEXT UNIQUE,
		full_name TEXT,
		is_private INTEGER,
		contacted INTEGER DEFAULT 0,
		last_contact_ts INTEGER,
		language TEXT
	);

	CREATE TABLE IF NOT EXISTS post_progress (
		url TEXT PRIMARY KEY,
		offset INTEGER DEFAULT 0
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts contacts that are not yet in the ledger and returns
// how many were added. Existing handles are left untouched; a failing row is
// logged and skipped.
func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, contacts []Contact) (int, error) {
	const query = `
		INSERT OR IGNORE INTO contacts (pk, username, full_name, is_private, language)
		VALUES (?, ?, ?, ?, ?)`

	added := 0
	for _, c := range contacts {
		res, err := s.db.ExecContext(ctx, query, c.Pk, c.Username, c.FullName, boolToInt(c.IsPrivate), c.Language)
		if err != nil {
			s.logger.WarnWithFields("failed to save contact", map[string]interface{}{
				"username": c.Username,
				"error":    err.Error(),
			})
			continue
		}
		n, err := res.RowsAffected()
		if err != nil {
			continue
		}
		added += int(n)
	}
	return added, nil
}

// ListPending returns up to limit contacts that have not been contacted, in
// insertion order. With onlyPublic set, private accounts are excluded.
func (s *SQLiteStore) ListPending(ctx context.Context, limit int, onlyPublic bool) ([]PendingContact, error) {
	query := `SELECT username, full_name, pk FROM contacts WHERE contacted = 0`
	if onlyPublic {
		query += ` AND is_private = 0`
	}
	query += ` ORDER BY id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending contacts: %w", err)
	}
	defer rows.Close()

	var pending []PendingContact
	for rows.Next() {
		var p PendingContact
		var fullName sql.NullString
		if err := rows.Scan(&p.Username, &fullName, &p.Pk); err != nil {
			return nil, fmt.Errorf("scan pending contact: %w", err)
		}
		p.FullName = fullName.String
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkContacted sets the contacted flag and the contact timestamp for a
// handle. Returns ErrContactNotFound when the handle is not in the ledger.
func (s *SQLiteStore) MarkContacted(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET contacted = 1, last_contact_ts = ? WHERE username = ?`,
		time.Now().Unix(), username,
	)
	if err != nil {
		return fmt.Errorf("mark contacted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark contacted: %w", err)
	}
	if n == 0 {
		return ErrContactNotFound
	}
	return nil
}

// Language returns the detected language stored for a handle, or empty when
// the handle is unknown or has no language recorded.
func (s *SQLiteStore) Language(ctx context.Context, username string) (string, error) {
	var lang sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT language FROM contacts WHERE username = ?`, username,
	).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", ErrContactNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query language: %w", err)
	}
	return lang.String, nil
}

// ListAll returns every contact in the ledger, most recently discovered
// first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pk, username, full_name, is_private, contacted, last_contact_ts, language
		FROM contacts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		var fullName, language sql.NullString
		var isPrivate, contacted int
		var lastContact sql.NullInt64
		if err := rows.Scan(&c.Pk, &c.Username, &fullName, &isPrivate, &contacted, &lastContact, &language); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.FullName = fullName.String
		c.Language = language.String
		c.IsPrivate = isPrivate != 0
		c.Contacted = contacted != 0
		if lastContact.Valid {
			t := time.Unix(lastContact.Int64, 0)
			c.LastContact = &t
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Offset returns the stored pagination offset for a post URL, defaulting to
// zero when no progress has been recorded. Offsets are not validated here;
// the retrieval engine resets them when a post is exhausted.
func (s *SQLiteStore) Offset(ctx context.Context, url string) (int, error) {
	var offset int
	err := s.db.QueryRowContext(ctx,
		`SELECT offset FROM post_progress WHERE url = ?`, url,
	).Scan(&offset)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query post progress: %w", err)
	}
	return offset, nil
}

// SetOffset stores the pagination offset for a post URL, overwriting any
// previous value.
func (s *SQLiteStore) SetOffset(ctx context.Context, url string, offset int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_progress (url, offset) VALUES (?, ?)
		ON CONFLICT(url) DO UPDATE SET offset = excluded.offset`,
		url, offset,
	)
	if err != nil {
		return fmt.Errorf("save post progress: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
