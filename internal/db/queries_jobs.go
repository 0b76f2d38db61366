package db

import (
	"database/sql"

	"github.com/YannKr/wavescope/internal/model"
)

func EnqueueJob(database *sql.DB, j *model.Job) error {
	_, err := database.Exec(
		`INSERT INTO jobs (id, job_type, session_id, state) VALUES (?, ?, ?, 'PENDING')`,
		j.ID, j.JobType, j.SessionID,
	)
	return err
}

func ClaimNextJob(database *sql.DB, jobTypes []string) (*model.Job, error) {
	if len(jobTypes) == 0 {
		return nil, nil
	}

	// Build placeholder string for IN clause
	query := `
		UPDATE jobs
		SET state = 'RUNNING', started_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = (
			SELECT id FROM jobs
			WHERE state = 'PENDING' AND job_type IN (`

	args := make([]interface{}, len(jobTypes))
	for i, jt := range jobTypes {
		if i > 0 {
			query += ","
		}
		query += "?"
		args[i] = jt
	}
	query += `) ORDER BY created_at ASC LIMIT 1
		)
		RETURNING id, job_type, session_id, state, progress, created_at, started_at`

	j := &model.Job{}
	var createdAt, startedAt SQLiteTime
	err := database.QueryRow(query, args...).Scan(
		&j.ID, &j.JobType, &j.SessionID, &j.State, &j.Progress, &createdAt, &startedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.CreatedAt = createdAt.Time
	j.StartedAt = &startedAt.Time
	return j, nil
}

func CompleteJob(database *sql.DB, id string) error {
	_, err := database.Exec(
		`UPDATE jobs SET state = 'COMPLETED', progress = 100, completed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, id,
	)
	return err
}

func FailJob(database *sql.DB, id, errorMsg string) error {
	_, err := database.Exec(
		`UPDATE jobs SET state = 'FAILED', error_message = ?, completed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, errorMsg, id,
	)
	return err
}

func UpdateJobProgress(database *sql.DB, id string, progress int) error {
	_, err := database.Exec(`UPDATE jobs SET progress = ? WHERE id = ?`, progress, id)
	return err
}

// ResetRunningJobs puts jobs left RUNNING by a previous process back in the
// queue.
func ResetRunningJobs(database *sql.DB) (int64, error) {
	res, err := database.Exec(`UPDATE jobs SET state = 'PENDING', started_at = NULL WHERE state = 'RUNNING'`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func GetJob(database *sql.DB, id string) (*model.Job, error) {
	j := &model.Job{}
	var createdAt SQLiteTime
	var startedAt, completedAt sql.NullString
	err := database.QueryRow(`
		SELECT id, job_type, session_id, state, progress,
		       COALESCE(error_message, ''), created_at, started_at, completed_at
		FROM jobs WHERE id = ?`, id,
	).Scan(
		&j.ID, &j.JobType, &j.SessionID, &j.State, &j.Progress,
		&j.ErrorMessage, &createdAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.CreatedAt = createdAt.Time
	if startedAt.Valid {
		var st SQLiteTime
		if err := st.Scan(startedAt.String); err == nil {
			j.StartedAt = &st.Time
		}
	}
	if completedAt.Valid {
		var ct SQLiteTime
		if err := ct.Scan(completedAt.String); err == nil {
			j.CompletedAt = &ct.Time
		}
	}
	return j, nil
}

// LatestJobForSession returns the most recent job of a session, or nil.
func LatestJobForSession(database *sql.DB, sessionID string) (*model.Job, error) {
	var id string
	err := database.QueryRow(
		`SELECT id FROM jobs WHERE session_id = ? ORDER BY created_at DESC LIMIT 1`, sessionID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return GetJob(database, id)
}
