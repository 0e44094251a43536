package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/campus-lab/campusboard/pkg/usecase"
)

type Auth struct {
	tokenSecret    string
	googleUserInfo string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "token-secret",
			Category:    "auth",
			Usage:       "Secret key for signing session tokens",
			Sources:     cli.EnvVars("CAMPUSBOARD_TOKEN_SECRET"),
			Destination: &x.tokenSecret,
		},
		&cli.StringFlag{
			Name:        "google-userinfo-url",
			Category:    "auth",
			Usage:       "Override the Google userinfo endpoint (for testing)",
			Sources:     cli.EnvVars("CAMPUSBOARD_GOOGLE_USERINFO_URL"),
			Destination: &x.googleUserInfo,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("token_secret_set", x.tokenSecret != ""),
	)
}

// Options returns the usecase options this config contributes.
func (x *Auth) Options() ([]usecase.Option, error) {
	if x.tokenSecret == "" {
		return nil, goerr.New("--token-secret is required")
	}
	opts := []usecase.Option{
		usecase.WithTokenSecret(x.tokenSecret),
	}
	if x.googleUserInfo != "" {
		opts = append(opts, usecase.WithGoogleUserInfoURL(x.googleUserInfo))
	}
	return opts, nil
}
