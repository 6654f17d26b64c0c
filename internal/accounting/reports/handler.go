package reports

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

// Cache stores rendered reports under versioned keys. When Enabled is false
// keys carry no version and nothing is stored.
type Cache interface {
	Enabled() bool
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) (bool, error)
}

// Handler serves trial balance and ledger statement endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cache   Cache
}

// NewHandler constructs the report handler. cache may be nil.
func NewHandler(logger *slog.Logger, service *Service, cache Cache) *Handler {
	return &Handler{logger: logger, service: service, cache: cache}
}

// TrialBalance handles GET /reports/trial-balance.
func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var tb TrialBalance
	parts := []string{ReportTrialBalance, start.Format(shared.DateLayout), end.Format(shared.DateLayout)}
	err = h.load(r, &tb, parts, func(ctx context.Context) (any, error) {
		return h.service.TrialBalance(ctx, start, end)
	})
	if err != nil {
		h.fail(w, r, "trial balance", err)
		return
	}
	if wantsCSV(r) {
		setAttachment(w, fmt.Sprintf("trial_balance_%s_%s.csv", parts[1], parts[2]))
		if err := WriteTrialBalanceCSV(w, tb); err != nil {
			h.logger.Error("write trial balance csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

// LedgerReport handles GET /reports/ledger.
func (h *Handler) LedgerReport(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := httpx.Int64Param(r.URL.Query().Get("ledger_id"))
	if !ok {
		httpx.RespondError(w, shared.InvalidInput("ledger_id must be a positive integer"))
		return
	}
	start, end, err := parseRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var report LedgerReport
	parts := []string{ReportLedger, strconv.FormatInt(ledgerID, 10), start.Format(shared.DateLayout), end.Format(shared.DateLayout)}
	err = h.load(r, &report, parts, func(ctx context.Context) (any, error) {
		return h.service.LedgerReport(ctx, ledgerID, start, end)
	})
	if err != nil {
		h.fail(w, r, "ledger report", err)
		return
	}
	if wantsCSV(r) {
		setAttachment(w, fmt.Sprintf("ledger_%d_%s_%s.csv", ledgerID, parts[2], parts[3]))
		if err := WriteLedgerReportCSV(w, report); err != nil {
			h.logger.Error("write ledger csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// load resolves a report through the cache. Concurrent requests share a
// build only under a versioned key: the version moves on every write, so a
// request that starts after a write never joins a build from before it.
// Without a cache every request builds its own snapshot.
func (h *Handler) load(r *http.Request, dest any, parts []string, build func(context.Context) (any, error)) error {
	ctx := r.Context()
	if h.cache == nil || !h.cache.Enabled() {
		return buildInto(ctx, dest, build)
	}
	key, err := h.cache.BuildKey(ctx, parts...)
	if err != nil {
		h.logger.Warn("report cache key", slog.Any("error", err))
		return buildInto(ctx, dest, build)
	}
	var buildErr error
	hit, err := h.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (any, error) {
		value, err, _ := singleflightBuild(ctx, key, build)
		buildErr = err
		return value, err
	})
	switch {
	case err == nil:
		h.logger.Debug("report served", slog.String("key", key), slog.Bool("cache_hit", hit))
		return nil
	case buildErr != nil:
		return buildErr
	}
	h.logger.Warn("report cache unavailable", slog.String("key", key), slog.Any("error", err))
	return buildInto(ctx, dest, build)
}

func buildInto(ctx context.Context, dest any, build func(context.Context) (any, error)) error {
	value, err := build(ctx)
	if err != nil {
		return err
	}
	return assign(dest, value)
}

func assign(dest, value any) error {
	switch d := dest.(type) {
	case *TrialBalance:
		if v, ok := value.(TrialBalance); ok {
			*d = v
			return nil
		}
	case *LedgerReport:
		if v, ok := value.(LedgerReport); ok {
			*d = v
			return nil
		}
	}
	return fmt.Errorf("reports: unexpected build result %T", value)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	if q.Get("start_date") == "" || q.Get("end_date") == "" {
		return time.Time{}, time.Time{}, shared.InvalidInput("start_date and end_date are required")
	}
	start, err := shared.ParseDate(q.Get("start_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := shared.ParseDate(q.Get("end_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if shared.KindOf(err) == shared.KindInternal {
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err)
}
