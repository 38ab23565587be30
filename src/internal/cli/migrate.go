package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/config"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the journal schema and exit",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.JournalDriver == config.JournalMemory {
		logger.Info("memory journal has no schema to migrate", nil)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	be, err := openBackend(ctx, cfg, true)
	if err != nil {
		logger.Error("migrations failed", err, logger.Fields{"driver": cfg.JournalDriver})
		return err
	}
	logger.Info("migrations completed successfully", logger.Fields{"driver": cfg.JournalDriver})
	return be.journal.Close()
}
