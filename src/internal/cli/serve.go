package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-engine/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-engine/src/internal/adapter/http/router"
	"github.com/api-sage/ledger-engine/src/internal/config"
	"github.com/api-sage/ledger-engine/src/internal/ledger"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/metrics"
	"github.com/api-sage/ledger-engine/src/internal/usecase/services"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Restore the ledger from its journal and serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply Postgres migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, serveMigrate)
	if err != nil {
		logger.Error("open journal backend failed", err, logger.Fields{"driver": cfg.JournalDriver})
		return err
	}
	defer func() {
		if err := be.journal.Close(); err != nil {
			logger.Error("close journal failed", err, nil)
		}
	}()

	core, err := restoreLedger(ctx, cfg, be)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newHandler(cfg, core, be, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", logger.Fields{
			"addr":    cfg.HTTPAddr,
			"journal": cfg.JournalDriver,
			"strict":  cfg.StrictInvariants,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("http server shutting down", logger.Fields{"timeout": cfg.ShutdownTimeout.String()})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		_ = core.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", err, nil)
		return err
	}
	logger.Info("server stopped", nil)
	return nil
}

func restoreLedger(ctx context.Context, cfg config.Config, be backend) (*ledger.Ledger, error) {
	core, err := ledger.New(ledger.Options{
		Customers:        be.customers,
		StrictInvariants: cfg.StrictInvariants,
	})
	if err != nil {
		return nil, err
	}

	accounts, transfers, err := be.journal.Load(ctx)
	if err != nil {
		logger.Error("load journal failed", err, nil)
		return nil, err
	}
	if err := core.Restore(accounts, transfers); err != nil {
		logger.Error("restore ledger failed", err, logger.Fields{
			"accounts":  len(accounts),
			"transfers": len(transfers),
		})
		return nil, err
	}

	logger.Info("ledger restored from journal", logger.Fields{
		"accounts":  len(accounts),
		"transfers": len(transfers),
	})
	return core, nil
}

func newHandler(cfg config.Config, core *ledger.Ledger, be backend, m *metrics.Metrics) http.Handler {
	auth := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)
	if cfg.ChannelKeyHash != "" {
		auth = middleware.BasicAuthHashed(cfg.ChannelID, cfg.ChannelKeyHash)
	}

	opts := router.Options{AuthMiddleware: auth}
	if m != nil {
		opts.Metrics = m.Handler()
	}

	ledgerService := services.NewLedgerService(core, be.journal, m)
	return router.New(opts,
		controller.NewCustomerController(services.NewCustomerService(be.customers)),
		controller.NewAccountController(ledgerService),
		controller.NewTransferController(ledgerService),
	)
}
