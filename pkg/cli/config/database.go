package config

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/campus-lab/campusboard/pkg/domain/interfaces"
	"github.com/campus-lab/campusboard/pkg/repository/memory"
	"github.com/campus-lab/campusboard/pkg/repository/sqldb"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

type Database struct {
	dsn string
}

func (x *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-dsn",
			Category:    "database",
			Usage:       "MySQL DSN (e.g. user:pass@tcp(localhost:3306)/campusboard). Empty means in-memory storage",
			Sources:     cli.EnvVars("CAMPUSBOARD_DB_DSN"),
			Destination: &x.dsn,
		},
	}
}

func (x Database) LogValue() slog.Value {
	backend := "memory"
	if x.dsn != "" {
		backend = "mysql"
	}
	return slog.GroupValue(slog.String("backend", backend))
}

// Configure returns the repository and a closer. With no DSN everything is
// kept in memory and lost on restart.
func (x *Database) Configure(ctx context.Context) (interfaces.Repository, func(), error) {
	if x.dsn == "" {
		logging.From(ctx).Warn("no database DSN configured, using in-memory storage")
		return memory.New(), func() {}, nil
	}

	db, err := sqldb.New(ctx, x.dsn)
	if err != nil {
		return nil, func() {}, err
	}
	closer := func() {
		if err := db.Close(); err != nil {
			logging.Default().Warn("failed to close database", "error", err)
		}
	}
	return db, closer, nil
}
