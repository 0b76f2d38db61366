package model

import "time"

// Session states.
const (
	SessionPending = "PENDING"
	SessionReady   = "READY"
	SessionFailed  = "FAILED"
)

// Job states.
const (
	JobPending   = "PENDING"
	JobRunning   = "RUNNING"
	JobCompleted = "COMPLETED"
	JobFailed    = "FAILED"
)

// JobDecompose builds the wavelet pyramid of a session's image.
const JobDecompose = "decompose"

type Session struct {
	ID           string
	OriginalName string
	ImagePath    string
	ContentHash  string
	Order        int
	Levels       int
	Width        int
	Height       int
	State        string
	CreatedAt    time.Time
	LastSeenAt   time.Time
	ExpiresAt    time.Time
}

// Edit ops.
const (
	EditMask       = "mask"
	EditRestoreAll = "restore_all"
	EditClearAll   = "clear_all"
)

// Edit is one journaled mask mutation. Level -1 with a bulk op means every
// level.
type Edit struct {
	ID        int64
	SessionID string
	Op        string
	Level     int
	X         int
	Y         int
	Radius    int
	Restore   bool
	CreatedAt time.Time
}

type Job struct {
	ID           string
	JobType      string
	SessionID    string
	State        string
	Progress     int
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}
