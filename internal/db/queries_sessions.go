package db

import (
	"database/sql"
	"time"

	"github.com/YannKr/wavescope/internal/model"
)

const sessionColumns = `id, original_name, image_path, content_hash, wavelet_order, levels,
	width, height, state, created_at, last_seen_at, expires_at`

func CreateSession(database *sql.DB, s *model.Session) error {
	_, err := database.Exec(
		`INSERT INTO sessions (id, original_name, image_path, content_hash, wavelet_order, levels, width, height, state, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.OriginalName, s.ImagePath, s.ContentHash, s.Order, s.Levels,
		s.Width, s.Height, s.State, s.ExpiresAt.UTC().Format(time.RFC3339),
	)
	return err
}

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	s := &model.Session{}
	var createdAt, lastSeenAt, expiresAt SQLiteTime
	err := row.Scan(
		&s.ID, &s.OriginalName, &s.ImagePath, &s.ContentHash, &s.Order, &s.Levels,
		&s.Width, &s.Height, &s.State, &createdAt, &lastSeenAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = createdAt.Time
	s.LastSeenAt = lastSeenAt.Time
	s.ExpiresAt = expiresAt.Time
	return s, nil
}

func GetSession(database *sql.DB, id string) (*model.Session, error) {
	s, err := scanSession(database.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func listSessions(database *sql.DB, query string, args ...any) ([]model.Session, error) {
	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func ListSessionsByState(database *sql.DB, state string) ([]model.Session, error) {
	return listSessions(database, `SELECT `+sessionColumns+` FROM sessions WHERE state = ? ORDER BY created_at ASC`, state)
}

func ListExpiredSessions(database *sql.DB, now time.Time) ([]model.Session, error) {
	return listSessions(database, `SELECT `+sessionColumns+` FROM sessions WHERE expires_at < ?`, now.UTC().Format(time.RFC3339))
}

func CountSessionsByImage(database *sql.DB, imagePath string) (int, error) {
	var n int
	err := database.QueryRow(`SELECT COUNT(*) FROM sessions WHERE image_path = ?`, imagePath).Scan(&n)
	return n, err
}

// SetSessionReady records a finished decomposition. It reports false when
// the session row no longer exists.
func SetSessionReady(database *sql.DB, id string, width, height, levels int) (bool, error) {
	res, err := database.Exec(
		`UPDATE sessions SET state = 'READY', width = ?, height = ?, levels = ? WHERE id = ?`,
		width, height, levels, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func SetSessionState(database *sql.DB, id, state string) error {
	_, err := database.Exec(`UPDATE sessions SET state = ? WHERE id = ?`, state, id)
	return err
}

// TouchSession records activity and pushes the expiry forward by ttl.
func TouchSession(database *sql.DB, id string, ttl time.Duration) error {
	_, err := database.Exec(
		`UPDATE sessions SET last_seen_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now'), expires_at = ? WHERE id = ?`,
		time.Now().Add(ttl).UTC().Format(time.RFC3339), id,
	)
	return err
}

func DeleteSession(database *sql.DB, id string) error {
	_, err := database.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// ListRecentSessions returns up to limit sessions, newest first.
func ListRecentSessions(database *sql.DB, limit int) ([]model.Session, error) {
	return listSessions(database, `SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC LIMIT ?`, limit)
}
