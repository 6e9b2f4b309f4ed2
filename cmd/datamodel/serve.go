package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/datamodel"
	"github.com/aretw0/datamodel/internal/cli"
	"github.com/aretw0/datamodel/internal/presentation/tui"
	httpadapter "github.com/aretw0/datamodel/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the workspace as a JSON API, with Prometheus metrics on /metrics and
server-sent events on /events. With --watch, changes to a loam directory reload the
workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, cfg, logger, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if v, _ := cmd.Flags().GetString("listen"); v != "" {
			cfg.Listen = v
		}
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), datamodel.Version)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			go func() {
				if err := cli.Watch(ctx, env.Workspace, logger, cli.DefaultDebounce, nil); err != nil {
					logger.Warn("watch disabled", "err", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           httpadapter.NewHandler(env.Workspace, httpadapter.WithGatherer(env.Registry), httpadapter.WithLogger(logger)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting datamodel server", "addr", srv.Addr, "store", cfg.Store, "dir", cfg.Dir)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Address to listen on (overrides config)")
	serveCmd.Flags().Bool("watch", false, "Reload the workspace when its files change")
}
