// cmd/migrate/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/onerilhan/thankatech-ledger/internal/config"
	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/logger"
	"github.com/onerilhan/thankatech-ledger/internal/migration"
)

const migrationsDir = "internal/migration/sql"

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// create veritabanı gerektirmez
	if command == "create" {
		handleCreate(os.Args[2:])
		return
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	database, err := db.Connect(cfg.GetDSN(), db.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		fmt.Printf("Database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	runner := migration.NewRunner(database, migration.CLIConfig())
	ctx := context.Background()

	switch command {
	case "status":
		handleStatus(ctx, runner)
	case "up":
		handleUp(ctx, runner, os.Args[2:])
	case "down":
		handleDown(ctx, runner, os.Args[2:])
	case "force":
		handleForce(ctx, runner, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`
Migration CLI Tool

USAGE:
    go run ./cmd/migrate <command> [arguments]

COMMANDS:
    status              Show migration status
    up [version]        Apply pending migrations (up to optional version)
    down [steps]        Roll back the last N migrations (default 1)
    force <version>     Clear a dirty state after manual repair
    create <name>       Create new migration files

EXAMPLES:
    go run ./cmd/migrate status
    go run ./cmd/migrate up
    go run ./cmd/migrate up 20251001090300
    go run ./cmd/migrate down 2
    go run ./cmd/migrate create "add payout status"
`)
}

func handleStatus(ctx context.Context, runner *migration.Runner) {
	fmt.Println("Checking migration status...")

	status, err := runner.Status(ctx)
	if err != nil {
		fmt.Printf("Failed to get migration status: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Current Version: %d\n", status.CurrentVersion)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Total Migrations: %d\n", status.TotalCount)
	fmt.Printf("  Applied: %d\n", status.AppliedCount)
	fmt.Printf("  Pending: %d\n", status.PendingCount)
	fmt.Printf("  System Health: %s\n", status.SystemHealth)

	if len(status.Migrations) > 0 {
		fmt.Printf("\nMigrations:\n")
		fmt.Println("  VERSION        | STATUS   | NAME")
		fmt.Println("  ---------------|----------|--------------------")

		for _, m := range status.Migrations {
			state := "PENDING"
			if m.Applied {
				state = "APPLIED"
			}
			fmt.Printf("  %14d | %-8s | %s\n", m.Version, state, m.Name)
		}
	}

	switch {
	case status.Dirty:
		fmt.Printf("\nDatabase is dirty at version %d. Fix it manually, then run 'force'.\n", status.CurrentVersion)
	case status.PendingCount > 0:
		fmt.Printf("\nYou have %d pending migration(s). Run 'up' to apply them.\n", status.PendingCount)
	default:
		fmt.Printf("\nAll migrations are up to date!\n")
	}
}

func handleUp(ctx context.Context, runner *migration.Runner, args []string) {
	var (
		result *migration.MigrationResult
		err    error
	)

	if len(args) > 0 {
		target, perr := strconv.ParseUint(args[0], 10, 64)
		if perr != nil {
			fmt.Printf("Invalid version number: %s\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("Migrating to version %d...\n", target)
		result, err = runner.MigrateTo(ctx, uint(target))
	} else {
		fmt.Println("Applying all pending migrations...")
		result, err = runner.Up(ctx)
	}

	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
	printResult(result)
}

func handleDown(ctx context.Context, runner *migration.Runner, args []string) {
	steps := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Printf("Invalid step count: %s\n", args[0])
			os.Exit(1)
		}
		steps = n
	}

	fmt.Printf("WARNING: This will roll back %d migration(s)!\n", steps)
	fmt.Printf("Are you sure you want to continue? (y/N): ")

	var response string
	fmt.Scanln(&response)

	if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
		fmt.Println("Rollback cancelled")
		return
	}

	result, err := runner.Down(ctx, steps)
	if err != nil {
		fmt.Printf("Rollback failed: %v\n", err)
		os.Exit(1)
	}
	printResult(result)
}

func handleForce(ctx context.Context, runner *migration.Runner, args []string) {
	if len(args) == 0 {
		fmt.Println("Version required")
		fmt.Println("Usage: force <version>")
		os.Exit(1)
	}

	version, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Invalid version number: %s\n", args[0])
		os.Exit(1)
	}

	if err := runner.Force(ctx, version); err != nil {
		fmt.Printf("Force failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Version set to %d\n", version)
}

func handleCreate(args []string) {
	if len(args) == 0 {
		fmt.Println("Migration name required")
		fmt.Println("Usage: create <name>")
		os.Exit(1)
	}

	name := strings.Join(args, " ")
	fmt.Printf("Creating migration: %s\n", name)

	up, down, err := migration.CreateFiles(migrationsDir, name, time.Now())
	if err != nil {
		fmt.Printf("Failed to create migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration files created successfully!")
	fmt.Printf("  %s\n  %s\n", up, down)
	fmt.Println("  Edit the SQL files, rebuild and run 'up' to apply")
}

func printResult(result *migration.MigrationResult) {
	if result.NoChange {
		fmt.Println("No migrations to apply")
		return
	}
	fmt.Printf("\n%s | %d -> %d | %v\n", strings.ToUpper(string(result.Direction)), result.FromVersion, result.ToVersion, result.ExecutionTime)
	fmt.Println("Migration completed successfully!")
}
