// cmd/reconcile/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/onerilhan/thankatech-ledger/internal/app"
	"github.com/onerilhan/thankatech-ledger/internal/cache"
	"github.com/onerilhan/thankatech-ledger/internal/catalog"
	"github.com/onerilhan/thankatech-ledger/internal/config"
	"github.com/onerilhan/thankatech-ledger/internal/logger"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/notify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	dryRun := flag.Bool("dry-run", false, "report drift without writing")
	fixPoints := flag.Bool("fix-points", false, "also recompute profile points from the ledger")
	pageSize := flag.Int("page-size", 500, "ledger rows per page")
	actor := flag.String("actor", "cli", "actor recorded in audit logs")
	asJSON := flag.Bool("json", false, "print the full report as JSON")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		fmt.Printf("Catalog load failed: %v\n", err)
		os.Exit(1)
	}

	backend, err := app.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Printf("Store open failed: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	// CLI bildirim göndermez
	svc := app.NewServices(cfg, backend.Store, cat, cache.NoopCache{}, notify.NewLogDispatcher())
	defer svc.Notifications.Stop()

	report, err := svc.Reconcile.Run(ctx, models.ReconcileOptions{
		DryRun:    *dryRun,
		FixPoints: *fixPoints,
		PageSize:  *pageSize,
		Actor:     *actor,
	})
	if err != nil {
		fmt.Printf("Reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Printf("Report encoding failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(report)
}

func printReport(r *models.ReconciliationReport) {
	mode := "FIX"
	if r.DryRun {
		mode = "DRY RUN"
	}

	fmt.Printf("\nReconciliation Report (%s)\n", mode)
	fmt.Printf("  Duration: %v\n", r.FinishedAt.Sub(r.StartedAt))
	fmt.Printf("  Transactions scanned: %d\n", r.Scanned)
	fmt.Printf("  Transactions drifted: %d (fixed %d, raced %d)\n", r.TransactionsDrift, r.TransactionsFixed, r.TransactionsRaced)
	fmt.Printf("  Profiles scanned: %d\n", r.ProfilesScanned)
	fmt.Printf("  Profiles drifted: %d (fixed %d, raced %d, skipped %d)\n", r.ProfilesDrift, r.ProfilesFixed, r.ProfilesRaced, r.ProfilesSkipped)

	if len(r.Corrections) > 0 {
		fmt.Printf("\nCorrections:\n")
		fmt.Println("  ENTITY       | ID                                   | FIELD                 | OBSERVED -> EXPECTED")
		for _, c := range r.Corrections {
			applied := ""
			if c.Applied {
				applied = " (applied)"
			}
			fmt.Printf("  %-12s | %-36s | %-21s | %s -> %s%s\n", c.EntityType, c.EntityID, c.Field, c.Observed, c.Expected, applied)
		}
	}

	if r.TransactionsDrift == 0 && r.ProfilesDrift == 0 {
		fmt.Println("\nLedger is consistent!")
	}
}
