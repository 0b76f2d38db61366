// Package db persists sessions, their mask-edit journals and decomposition
// jobs in sqlite.
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// pragmas are applied on every new connection through the DSN.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"cache_size(-20000)",
}

// Open opens (creating if needed) <dataDir>/db/wavescope.db.
func Open(dataDir string) (*sql.DB, error) {
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	dsn := filepath.Join(dbDir, "wavescope.db") + "?" + q.Encode()

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	database.SetMaxOpenConns(1)

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return database, nil
}

// timeFormats are tried in order when scanning TEXT timestamps. The first
// matches strftime('%Y-%m-%dT%H:%M:%fZ'), the column default.
var timeFormats = []string{
	"2006-01-02T15:04:05.000Z",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// SQLiteTime scans a timestamp column stored as TEXT, or as whatever the
// driver hands back for it.
type SQLiteTime struct {
	Time time.Time
}

func (st *SQLiteTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		st.Time = time.Time{}
		return nil
	case time.Time:
		st.Time = v
		return nil
	case int64:
		st.Time = time.Unix(v, 0).UTC()
		return nil
	case []byte:
		return st.parse(string(v))
	case string:
		return st.parse(v)
	}
	return fmt.Errorf("SQLiteTime: unsupported type %T", src)
}

func (st *SQLiteTime) parse(s string) error {
	for _, f := range timeFormats {
		t, err := time.Parse(f, s)
		if err == nil {
			st.Time = t
			return nil
		}
	}
	return fmt.Errorf("SQLiteTime: cannot parse %q", s)
}
