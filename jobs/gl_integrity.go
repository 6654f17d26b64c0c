package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
)

// TrialBalanceGenerator builds the trial balance checked by the job.
type TrialBalanceGenerator interface {
	TrialBalance(ctx context.Context, start, end time.Time) (reports.TrialBalance, error)
}

// BalanceGauge publishes the outcome of the latest check.
type BalanceGauge interface {
	SetTrialBalanceBalanced(balanced bool)
}

// GLIntegrityResult summarises one integrity run.
type GLIntegrityResult struct {
	Start            time.Time
	End              time.Time
	Balanced         bool
	AbnormalBalances int
	ClosingDebit     string
	ClosingCredit    string
}

// GLIntegrityJob regenerates the trial balance over a lookback window and
// reports whether the closing columns agree.
type GLIntegrityJob struct {
	Reports TrialBalanceGenerator
	Gauge   BalanceGauge
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewGLIntegrityJob constructs the job handler. gauge and metrics may be nil.
func NewGLIntegrityJob(generator TrialBalanceGenerator, gauge BalanceGauge, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{
		Reports: generator,
		Gauge:   gauge,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the integrity check for an Asynq task.
func (j *GLIntegrityJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload GLIntegrityPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	_, err := j.Run(ctx, payload)
	if shared.KindOf(err) == shared.KindInvalidInput || shared.KindOf(err) == shared.KindInvalidRange {
		return errors.Join(err, asynq.SkipRetry)
	}
	return err
}

// Run performs the check. An unbalanced trial balance is logged and counted
// but is not an error: retrying cannot fix it.
func (j *GLIntegrityJob) Run(ctx context.Context, payload GLIntegrityPayload) (result GLIntegrityResult, err error) {
	if j == nil || j.Reports == nil {
		return GLIntegrityResult{}, errors.New("gl integrity: dependencies not configured")
	}
	tracker := j.metrics().Track(TaskGLIntegrity)
	defer func() {
		err = tracker.End(err)
	}()

	end := shared.DateOf(j.now())
	if payload.EndDate != "" {
		if end, err = shared.ParseDate(payload.EndDate); err != nil {
			return GLIntegrityResult{}, err
		}
	}
	lookback := payload.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	start := end.AddDate(0, 0, -(lookback - 1))

	tb, err := j.Reports.TrialBalance(ctx, start, end)
	if err != nil {
		j.log().Error("generate trial balance", slog.Any("error", err))
		return GLIntegrityResult{}, err
	}

	result = GLIntegrityResult{
		Start:         start,
		End:           end,
		Balanced:      tb.IsBalanced,
		ClosingDebit:  tb.Totals.ClosingDebit.StringFixed(2),
		ClosingCredit: tb.Totals.ClosingCredit.StringFixed(2),
	}
	for _, parent := range tb.ParentGroups {
		for _, group := range parent.Groups {
			for _, ledger := range group.Ledgers {
				if ledger.AbnormalBalance {
					result.AbnormalBalances++
				}
			}
		}
	}

	if j.Gauge != nil {
		j.Gauge.SetTrialBalanceBalanced(result.Balanced)
	}
	j.metrics().AddAnomalies("abnormal_balance", result.AbnormalBalances)

	attrs := []any{
		slog.String("start_date", start.Format(shared.DateLayout)),
		slog.String("end_date", end.Format(shared.DateLayout)),
		slog.String("closing_debit", result.ClosingDebit),
		slog.String("closing_credit", result.ClosingCredit),
		slog.Int("abnormal_balances", result.AbnormalBalances),
	}
	if !result.Balanced {
		j.metrics().AddAnomalies("unbalanced", 1)
		j.log().Error("trial balance out of balance", attrs...)
		return result, nil
	}
	j.log().Info("gl integrity check passed", attrs...)
	return result, nil
}

func (j *GLIntegrityJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return nil
}

func (j *GLIntegrityJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskGLIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskGLIntegrity))
}

func (j *GLIntegrityJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *GLIntegrityJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
