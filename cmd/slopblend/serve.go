package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/slopblend/internal/config"
	"github.com/kikiluvv/slopblend/internal/pipeline"
	"github.com/kikiluvv/slopblend/internal/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.NewServer(server.ServerConfig{
			Addr:         addr,
			ReadTimeout:  cfg.Server.ReadTimeout,
			BlendTimeout: cfg.Server.BlendTimeout,
			Pipeline:     pipe,
			Default:      cfg.DefaultPolicy().At(0),
			Logger:       log.Logger,
			StartTime:    time.Now(),
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		log.Info().Msg("server stopped")
		return nil
	},
}
