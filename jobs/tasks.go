package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGLIntegrity is the task type for the scheduled trial balance check.
	TaskGLIntegrity = "ledger:gl_integrity"
)

// DefaultLookbackDays is the trial balance window used when a payload omits it.
const DefaultLookbackDays = 30

// GLIntegrityPayload configures the integrity check window. EndDate defaults
// to today (UTC) and uses the YYYY-MM-DD layout.
type GLIntegrityPayload struct {
	LookbackDays int    `json:"lookback_days"`
	EndDate      string `json:"end_date,omitempty"`
}

// NewGLIntegrityTask constructs an Asynq task for the integrity check.
func NewGLIntegrityTask(payload GLIntegrityPayload) (*asynq.Task, error) {
	if payload.LookbackDays <= 0 {
		payload.LookbackDays = DefaultLookbackDays
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrity, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// ManualTaskID returns a unique id for operator-triggered runs so they never
// collide with scheduled ones.
func ManualTaskID(taskType string) string {
	return taskType + ":manual:" + uuid.NewString()
}
