package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/campus-lab/campusboard/pkg/cli/config"
	server "github.com/campus-lab/campusboard/pkg/controller/http"
	websocket_controller "github.com/campus-lab/campusboard/pkg/controller/websocket"
	"github.com/campus-lab/campusboard/pkg/usecase"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var (
		addr    string
		dbCfg   config.Database
		authCfg config.Auth
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("CAMPUSBOARD_ADDR"),
				Usage:       "Listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
		},
		dbCfg.Flags(),
		authCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the board service",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"database", dbCfg,
				"auth", authCfg,
			)

			repo, dbCloser, err := dbCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer dbCloser()

			authOpts, err := authCfg.Options()
			if err != nil {
				return err
			}

			hub := websocket_controller.NewHub(ctx)
			go hub.Run()
			defer func() {
				if err := hub.Close(); err != nil {
					logging.From(ctx).Warn("failed to close hub", "error", err)
				}
			}()

			ucOptions := append(authOpts, usecase.WithNotifier(hub))
			uc := usecase.New(repo, ucOptions...)

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.New(uc, server.WithPushHub(hub)),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				logging.From(ctx).Info("http server listening", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "http server failed")
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.From(ctx).Info("shutting down", "signal", sig.String())
			case <-ctx.Done():
				logging.From(ctx).Info("shutting down", "reason", "context cancelled")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down http server")
			}
			return nil
		},
	}
}
