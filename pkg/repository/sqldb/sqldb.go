package sqldb

import (
	"context"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-lab/campusboard/pkg/domain/interfaces"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
)

// DB is the MySQL-backed Repository.
type DB struct {
	db *sqlx.DB
	eb *goerr.Builder
}

var _ interfaces.Repository = &DB{}

// New connects to MySQL with the given DSN and ensures the schema exists.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid database DSN", goerr.T(errs.TagValidation))
	}
	// DATETIME columns scan into time.Time
	cfg.ParseTime = true

	db, err := sqlx.ConnectContext(ctx, "mysql", cfg.FormatDSN())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to database", goerr.T(errs.TagDatabase))
	}

	r := &DB{
		db: db,
		eb: goerr.NewBuilder(goerr.V("repository", "sqldb")),
	}
	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *DB) Close() error {
	return r.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL DEFAULT '',
		name VARCHAR(255) NOT NULL,
		google_id VARCHAR(255) NOT NULL DEFAULT '',
		picture VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notices (
		id VARCHAR(64) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		category VARCHAR(128) NOT NULL,
		priority VARCHAR(16) NOT NULL,
		image_url VARCHAR(512) NOT NULL DEFAULT '',
		date VARCHAR(32) NOT NULL,
		author VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_notices_category (category),
		INDEX idx_notices_created (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id VARCHAR(64) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		date DATETIME NOT NULL,
		type VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_events_date (date)
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id VARCHAR(64) PRIMARY KEY,
		rating INT NOT NULL,
		category VARCHAR(128) NOT NULL,
		feedback TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func (r *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return r.eb.Wrap(err, "failed to run schema migration", goerr.T(errs.TagDatabase))
		}
	}
	return nil
}
