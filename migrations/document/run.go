package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/procuredesk/pkg/config"
	"github.com/ghuser/procuredesk/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := migrator.RunMigrations(cfg.DefinitionDatabaseURL, MigrationsFS, "document"); err != nil {
		slog.Error("document migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("document migrations applied")
}
