// Command seed creates the default chart of accounts. It is equivalent to
// `odyssey seed` and kept for deployment scripts that run it directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/seed"
	"github.com/odyssey-erp/odyssey-ledger/internal/app"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

func main() {
	file := flag.String("file", "", "YAML chart file (defaults to the built-in chart)")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	chart, err := loadChart(*file)
	if err != nil {
		log.Fatalf("load chart: %v", err)
	}

	fmt.Println("→ Seeding chart of accounts...")
	svc := accounts.NewService(accounts.NewRepository(pool), shared.NewAuditLogger(pool))
	result, err := seed.Apply(ctx, svc, chart)
	if err != nil {
		log.Fatalf("seed chart: %v", err)
	}
	fmt.Printf("✓ parent groups created: %d, ledger groups created: %d\n", result.ParentGroupsCreated, result.LedgerGroupsCreated)
}

func loadChart(path string) (seed.Chart, error) {
	if path == "" {
		return seed.DefaultChart()
	}
	f, err := os.Open(path)
	if err != nil {
		return seed.Chart{}, err
	}
	defer f.Close()
	return seed.LoadChart(f)
}
