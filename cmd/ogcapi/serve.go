package ogcapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/metrics"
	"github.com/edgeflare/ogcapi/pkg/ogc"
	"github.com/edgeflare/ogcapi/pkg/postgis"
	"github.com/edgeflare/ogcapi/pkg/util"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the OGC API - Features server",
	Long:    `Connects to PostGIS and serves the configured collections until SIGINT or SIGTERM`,
	RunE:    runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringP("listen", "l", "", "listen address, overrides server.listen_addr")
	f.StringP("database-url", "d", "", "PostgreSQL connection string, overrides database.url")
	f.Bool("verify-schema", util.EnvBool("OGCAPI_VERIFY_SCHEMA", false), "check that configured tables and columns exist before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.ListenAddr = listen
	}
	if url, _ := cmd.Flags().GetString("database-url"); url != "" {
		cfg.Database.URL = url
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgis.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if verify, _ := cmd.Flags().GetBool("verify-schema"); verify {
		if err := postgis.VerifyCollections(ctx, pool, cfg); err != nil {
			return fmt.Errorf("schema verification failed: %w", err)
		}
		logger.Info("schema verified", zap.Int("collections", len(cfg.Collections)))
	}

	var wg sync.WaitGroup
	if cfg.Metrics.Addr != "" {
		metrics.StartPrometheusServer(ctx, &wg, &metrics.PromServerOpts{Addr: cfg.Metrics.Addr, Logger: logger})
	}

	store := postgis.NewStore(pool, cfg, logger)
	server := ogc.NewServer(cfg, store,
		ogc.WithLogger(logger),
		ogc.WithAccessLog(logLevel != "none"),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received termination signal, shutting down")
	case err := <-errChan:
		stop()
		wg.Wait()
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	wg.Wait()

	logger.Info("server gracefully stopped")
	return nil
}

// validateConfig checks the configuration and every SQL statement generated from it.
func validateConfig(c *config.Config) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, id := range c.CollectionIDs() {
		col, _ := c.Collection(id)
		if err := postgis.ValidateCollection(col); err != nil {
			return fmt.Errorf("collection %q: %w", id, err)
		}
	}
	return nil
}
