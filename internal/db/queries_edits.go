package db

import (
	"database/sql"

	"github.com/YannKr/wavescope/internal/model"
)

func AppendEdit(database *sql.DB, e *model.Edit) error {
	res, err := database.Exec(
		`INSERT INTO mask_edits (session_id, op, level, x, y, radius, restore) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Op, e.Level, e.X, e.Y, e.Radius, e.Restore,
	)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

// ListEdits returns a session's edits in the order they were applied.
func ListEdits(database *sql.DB, sessionID string) ([]model.Edit, error) {
	rows, err := database.Query(
		`SELECT id, session_id, op, level, x, y, radius, restore, created_at
		 FROM mask_edits WHERE session_id = ? ORDER BY id ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edits []model.Edit
	for rows.Next() {
		var e model.Edit
		var createdAt SQLiteTime
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Op, &e.Level, &e.X, &e.Y, &e.Radius, &e.Restore, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.Time
		edits = append(edits, e)
	}
	return edits, rows.Err()
}

func CountEdits(database *sql.DB, sessionID string) (int, error) {
	var n int
	err := database.QueryRow(`SELECT COUNT(*) FROM mask_edits WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// DeleteEdit withdraws a journaled edit that could not be applied.
func DeleteEdit(database *sql.DB, id int64) error {
	_, err := database.Exec(`DELETE FROM mask_edits WHERE id = ?`, id)
	return err
}
