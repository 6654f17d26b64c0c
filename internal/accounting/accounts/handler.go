package accounts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

// Invalidator is notified after every successful chart mutation so cached
// reports can be discarded.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Handler serves the chart of accounts JSON API.
type Handler struct {
	service     *Service
	logger      *slog.Logger
	invalidator Invalidator
}

// NewHandler constructs the handler. invalidator may be nil.
func NewHandler(logger *slog.Logger, service *Service, invalidator Invalidator) *Handler {
	return &Handler{logger: logger, service: service, invalidator: invalidator}
}

func (h *Handler) listParentGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListParentGroups(r.Context())
	if err != nil {
		h.fail(w, r, "list parent groups", err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) getParentGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	group, err := h.service.GetParentGroup(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get parent group", err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) createParentGroup(w http.ResponseWriter, r *http.Request) {
	var in ParentGroupInput
	if !h.decode(w, r, &in) {
		return
	}
	group, err := h.service.CreateParentGroup(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create parent group", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusCreated, group)
}

func (h *Handler) updateParentGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in ParentGroupInput
	if !h.decode(w, r, &in) {
		return
	}
	group, err := h.service.UpdateParentGroup(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update parent group", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) deleteParentGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteParentGroup(r.Context(), id); err != nil {
		h.fail(w, r, "delete parent group", err)
		return
	}
	h.changed(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listLedgerGroups(w http.ResponseWriter, r *http.Request) {
	var parentID *int64
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, ok := httpx.Int64Param(raw)
		if !ok {
			httpx.RespondError(w, shared.InvalidInput("parent_id must be a positive integer"))
			return
		}
		parentID = &id
	}
	groups, err := h.service.ListLedgerGroups(r.Context(), parentID)
	if err != nil {
		h.fail(w, r, "list ledger groups", err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) getLedgerGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	group, err := h.service.GetLedgerGroup(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get ledger group", err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) createLedgerGroup(w http.ResponseWriter, r *http.Request) {
	var in LedgerGroupInput
	if !h.decode(w, r, &in) {
		return
	}
	group, err := h.service.CreateLedgerGroup(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create ledger group", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusCreated, group)
}

func (h *Handler) updateLedgerGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in LedgerGroupInput
	if !h.decode(w, r, &in) {
		return
	}
	group, err := h.service.UpdateLedgerGroup(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update ledger group", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) deleteLedgerGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteLedgerGroup(r.Context(), id); err != nil {
		h.fail(w, r, "delete ledger group", err)
		return
	}
	h.changed(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listLedgers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := LedgerFilter{Category: shared.LedgerGroupCategory(q.Get("category"))}
	if raw := q.Get("group_id"); raw != "" {
		id, ok := httpx.Int64Param(raw)
		if !ok {
			httpx.RespondError(w, shared.InvalidInput("group_id must be a positive integer"))
			return
		}
		filter.GroupID = &id
	}
	if raw := q.Get("include_inactive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.RespondError(w, shared.InvalidInput("include_inactive must be a boolean"))
			return
		}
		filter.IncludeInactive = v
	}
	ledgers, err := h.service.ListLedgers(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list ledgers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledgers)
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ledger, err := h.service.GetLedger(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) createLedger(w http.ResponseWriter, r *http.Request) {
	var in LedgerInput
	if !h.decode(w, r, &in) {
		return
	}
	ledger, err := h.service.CreateLedger(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create ledger", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusCreated, ledger)
}

func (h *Handler) updateLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in LedgerInput
	if !h.decode(w, r, &in) {
		return
	}
	ledger, err := h.service.UpdateLedger(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update ledger", err)
		return
	}
	h.changed(r)
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) setLedgerActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r)
		if !ok {
			return
		}
		ledger, err := h.service.SetLedgerActive(r.Context(), id, active)
		if err != nil {
			h.fail(w, r, "set ledger active", err)
			return
		}
		h.changed(r)
		httpx.JSON(w, http.StatusOK, ledger)
	}
}

func (h *Handler) deleteLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteLedger(r.Context(), id); err != nil {
		h.fail(w, r, "delete ledger", err)
		return
	}
	h.changed(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSpendingTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListSpendingTypes(r.Context())
	if err != nil {
		h.fail(w, r, "list spending types", err)
		return
	}
	httpx.JSON(w, http.StatusOK, types)
}

func (h *Handler) createSpendingType(w http.ResponseWriter, r *http.Request) {
	var in SpendingTypeInput
	if !h.decode(w, r, &in) {
		return
	}
	st, err := h.service.CreateSpendingType(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create spending type", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, st)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.Int64Param(chi.URLParam(r, "id"))
	if !ok {
		httpx.RespondError(w, shared.InvalidInput("id must be a positive integer"))
	}
	return id, ok
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, shared.InvalidInput("%v", err))
		return false
	}
	return true
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
