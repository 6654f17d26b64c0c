package journals

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

type invalidatorStub struct{ calls int }

func (i *invalidatorStub) Invalidate(context.Context) { i.calls++ }

func newRouter(t *testing.T) (http.Handler, *invalidatorStub) {
	t.Helper()
	svc, _, _ := newTestService()
	inv := &invalidatorStub{}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, inv)
	r := chi.NewRouter()
	r.Route("/transactions", h.MountRoutes)
	return r, inv
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateGetDelete(t *testing.T) {
	router, inv := newRouter(t)

	rec := send(router, http.MethodPost, "/transactions", `{
		"transaction_date": "2024-01-05",
		"reference": "INV-1",
		"transaction_type": "MONEY_RECEIVED",
		"items": [
			{"ledger_id": 1, "entry_type": "DEBIT", "amount": "1000"},
			{"ledger_id": 2, "entry_type": "CREDIT", "amount": 1000}
		]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "2024-01-05", created.Date.String())
	require.Equal(t, "1000", created.TotalAmount.String())
	require.Equal(t, 1, inv.calls)

	rec = send(router, http.MethodGet, "/transactions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"transaction_date":"2024-01-05"`)

	rec = send(router, http.MethodGet, "/transactions?type=MONEY_RECEIVED&start_date=2024-01-01&end_date=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = send(router, http.MethodDelete, "/transactions/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 2, inv.calls)

	rec = send(router, http.MethodDelete, "/transactions/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRejectsUnbalanced(t *testing.T) {
	router, inv := newRouter(t)

	rec := send(router, http.MethodPost, "/transactions", `{
		"transaction_date": "2024-01-05",
		"transaction_type": "JOURNAL",
		"items": [
			{"ledger_id": 1, "entry_type": "DEBIT", "amount": "100"},
			{"ledger_id": 2, "entry_type": "CREDIT", "amount": "90"}
		]
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "UNBALANCED_ENTRY", problem.Code)
	require.Equal(t, "100.00", problem.Meta["debit_total"])
	require.Zero(t, inv.calls)
}

func TestHandlerBadQuery(t *testing.T) {
	router, _ := newRouter(t)

	rec := send(router, http.MethodGet, "/transactions?start_date=2024-02-01&end_date=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_RANGE")

	rec = send(router, http.MethodGet, "/transactions?start_date=2024-02-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodGet, "/transactions?limit=-3", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodPost, "/transactions", `{"transaction_date":"05/01/2024"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
