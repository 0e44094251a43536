package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/campus-lab/campusboard/pkg/client/api"
	"github.com/campus-lab/campusboard/pkg/client/cache"
	"github.com/campus-lab/campusboard/pkg/client/push"
)

// Client configures the board client stack shared by the client-side
// commands.
type Client struct {
	serverURL string
	cachePath string
	token     string
	transport string
}

func (x *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "server-url",
			Category:    "client",
			Aliases:     []string{"u"},
			Usage:       "Base URL of the board service",
			Sources:     cli.EnvVars("CAMPUSBOARD_SERVER_URL"),
			Value:       "http://localhost:8080",
			Destination: &x.serverURL,
		},
		&cli.StringFlag{
			Name:        "cache-path",
			Category:    "client",
			Usage:       "Path of the local state cache file",
			Sources:     cli.EnvVars("CAMPUSBOARD_CACHE_PATH"),
			Destination: &x.cachePath,
		},
		&cli.StringFlag{
			Name:        "token",
			Category:    "client",
			Usage:       "Session token for authenticated operations",
			Sources:     cli.EnvVars("CAMPUSBOARD_TOKEN"),
			Destination: &x.token,
		},
		&cli.StringFlag{
			Name:        "push-transport",
			Category:    "client",
			Usage:       "Force a push transport [websocket|polling], empty tries both",
			Sources:     cli.EnvVars("CAMPUSBOARD_PUSH_TRANSPORT"),
			Destination: &x.transport,
		},
	}
}

func (x Client) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("server_url", x.serverURL),
		slog.String("cache_path", x.cachePath),
		slog.Bool("token_set", x.token != ""),
	)
}

func (x *Client) ServerURL() string {
	return x.serverURL
}

// APIClient builds the remote service client, attaching the session token
// when one is configured.
func (x *Client) APIClient() *api.Client {
	var opts []api.Option
	if x.token != "" {
		opts = append(opts, api.WithToken(x.token))
	}
	return api.New(x.serverURL, opts...)
}

// OpenCache opens the local state cache, defaulting to a file under the
// user's home directory.
func (x *Client) OpenCache(ctx context.Context) (*cache.Cache, error) {
	path := x.cachePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve home directory for cache")
		}
		path = filepath.Join(home, ".campusboard", "cache.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create cache directory", goerr.V("path", path))
	}
	return cache.Open(ctx, path)
}

// PushOptions builds the push channel options from the configured transport.
func (x *Client) PushOptions() (push.Options, error) {
	var opts push.Options
	switch x.transport {
	case "":
	case "websocket":
		opts.Transports = []push.Transport{push.TransportWebSocket}
	case "polling":
		opts.Transports = []push.Transport{push.TransportPolling}
	default:
		return opts, goerr.New("invalid push transport", goerr.V("transport", x.transport))
	}
	return opts, nil
}
