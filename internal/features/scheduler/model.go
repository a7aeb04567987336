package scheduler

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
	RunSkipped RunStatus = "skipped"
)

const (
	JobSessionReminders = "session_reminders"
	JobExpirePending    = "expire_pending"
)

// JobRun is one execution of a background job.
type JobRun struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Job       string             `json:"job" bson:"job"`
	Trigger   string             `json:"trigger" bson:"trigger"`
	StartedAt time.Time          `json:"started_at" bson:"started_at"`
	EndedAt   *time.Time         `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	Status    RunStatus          `json:"status" bson:"status"`
	Affected  int                `json:"affected" bson:"affected"`
	Error     string             `json:"error,omitempty" bson:"error,omitempty"`
}

type JobInfo struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}
