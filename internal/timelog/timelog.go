package timelog

import (
	"time"

	"github.com/google/uuid"
)

// TimeLog represents a recorded countdown session for a project.
type TimeLog struct {
	ID        int64
	SessionID string
	ProjectID int64
	StartedAt time.Time
	StoppedAt time.Time
	Duration  time.Duration
	Tag       string
	// Finished is set when the session ended because the countdown hit zero.
	Finished bool
}

// New builds an untagged log for a session that ran from startedAt to
// stoppedAt.
func New(projectID int64, startedAt, stoppedAt time.Time, finished bool) *TimeLog {
	return &TimeLog{
		SessionID: uuid.NewString(),
		ProjectID: projectID,
		StartedAt: startedAt,
		StoppedAt: stoppedAt,
		Duration:  stoppedAt.Sub(startedAt),
		Finished:  finished,
	}
}
