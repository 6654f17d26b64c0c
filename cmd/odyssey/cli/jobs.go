package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	if redisAddr == "" {
		return nil, errors.New("jobs cli: REDIS_ADDR required")
	}
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{client: client, inspector: asynq.NewInspector(opts)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name string, lookbackDays int) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	switch name {
	case jobs.TaskGLIntegrity:
		return c.client.EnqueueGLIntegrity(ctx, jobs.GLIntegrityPayload{LookbackDays: lookbackDays})
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// JobsCmd groups the job subcommands.
type JobsCmd struct {
	Trigger JobsTriggerCmd `cmd:"" help:"Enqueue a job immediately."`
	Stats   JobsStatsCmd   `cmd:"" help:"Show default queue statistics."`
}

// JobsTriggerCmd enqueues a job by task type.
type JobsTriggerCmd struct {
	Name         string `arg:"" optional:"" default:"ledger:gl_integrity" help:"Task type to enqueue."`
	LookbackDays int    `name:"lookback-days" help:"Integrity window in days; defaults to INTEGRITY_LOOKBACK_DAYS."`
}

// Run enqueues the task.
func (c *JobsTriggerCmd) Run(ctx context.Context, rt *Runtime) error {
	helper, err := NewJobsCLI(rt.Config.RedisAddr)
	if err != nil {
		return err
	}
	defer helper.Close()

	lookback := c.LookbackDays
	if lookback <= 0 {
		lookback = rt.Config.IntegrityLookbackDays
	}
	info, err := helper.Trigger(ctx, c.Name, lookback)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.Stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return nil
}

// JobsStatsCmd prints queue statistics.
type JobsStatsCmd struct{}

// Run prints the stats.
func (c *JobsStatsCmd) Run(ctx context.Context, rt *Runtime) error {
	helper, err := NewJobsCLI(rt.Config.RedisAddr)
	if err != nil {
		return err
	}
	defer helper.Close()

	stats, err := helper.InspectQueue(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.Stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	return nil
}
