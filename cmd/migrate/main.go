package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|version]

import (
	"context"
	"fmt"
	"os"

	"resumefit/internal/shared/config"
	"resumefit/internal/shared/storage/db"
	"resumefit/internal/shared/telemetry"
)

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}
	if err := run(context.Background(), direction); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"direction": direction, "error": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, direction string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	switch direction {
	case "up":
		return db.RunMigrations(ctx, sqlDB)
	case "down":
		return db.RollbackMigration(ctx, sqlDB)
	case "version":
		version, err := db.MigrationVersion(ctx, sqlDB)
		if err != nil {
			return err
		}
		fmt.Println(version)
		return nil
	default:
		return fmt.Errorf("unknown direction %q (want up, down or version)", direction)
	}
}
