package journals

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

// Invalidator is notified after every committed journal write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Handler serves the transaction JSON API.
type Handler struct {
	service     *Service
	logger      *slog.Logger
	invalidator Invalidator
}

// NewHandler constructs the handler. invalidator may be nil.
func NewHandler(logger *slog.Logger, service *Service, invalidator Invalidator) *Handler {
	return &Handler{logger: logger, service: service, invalidator: invalidator}
}

// List handles GET /transactions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	txs, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list transactions", err)
		return
	}
	if txs == nil {
		txs = []Transaction{}
	}
	httpx.JSON(w, http.StatusOK, txs)
}

// Get handles GET /transactions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get transaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

// Create handles POST /transactions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in TransactionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, shared.InvalidInput("%v", err))
		return
	}
	t, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create transaction", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusCreated, t)
}

// Update handles PUT /transactions/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch UpdateInput
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, shared.InvalidInput("%v", err))
		return
	}
	t, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, "update transaction", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusOK, t)
}

// Delete handles DELETE /transactions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete transaction", err)
		return
	}
	h.changed(r)
	w.WriteHeader(http.StatusNoContent)
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{Type: shared.TransactionType(q.Get("type"))}
	start, end := q.Get("start_date"), q.Get("end_date")
	if start != "" || end != "" {
		if start == "" || end == "" {
			return ListFilter{}, shared.InvalidInput("start_date and end_date must be given together")
		}
		from, err := shared.ParseDate(start)
		if err != nil {
			return ListFilter{}, err
		}
		to, err := shared.ParseDate(end)
		if err != nil {
			return ListFilter{}, err
		}
		rng, err := shared.NewDateRange(from, to)
		if err != nil {
			return ListFilter{}, err
		}
		filter.Range = &rng
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		return ListFilter{}, err
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		return ListFilter{}, err
	}
	return filter, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, shared.InvalidInput("%q must be a non-negative integer", raw)
	}
	return v, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.Int64Param(chi.URLParam(r, "id"))
	if !ok {
		httpx.RespondError(w, shared.InvalidInput("id must be a positive integer"))
	}
	return id, ok
}

func (h *Handler) changed(r *http.Request) {
	if h.invalidator != nil {
		h.invalidator.Invalidate(r.Context())
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if shared.KindOf(err) == shared.KindInternal {
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err)
}
