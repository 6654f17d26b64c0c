package accounting

import (
	"io"
	"log/slog"
	"net/http"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/odyssey-ledger/testing"
)

func TestMountRoutesRegistersLedgerSurface(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), &Module{}, nil)
	r := chi.NewRouter()
	r.Route("/accounting", h.MountRoutes)

	var routes []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(routes)

	for _, want := range []string{
		"GET /accounting/parent-groups/",
		"POST /accounting/groups/",
		"POST /accounting/ledgers/{id}/deactivate",
		"POST /accounting/ledgers/{id}/activate",
		"GET /accounting/spending-types/",
		"PUT /accounting/transactions/{id}",
		"DELETE /accounting/transactions/{id}",
		"GET /accounting/reports/trial-balance",
		"GET /accounting/reports/ledger",
	} {
		require.Contains(t, routes, want)
	}
}
