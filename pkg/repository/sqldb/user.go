package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const mysqlDuplicateEntry = 1062

func (r *DB) CreateUser(ctx context.Context, u *auth.User) error {
	query := `
		INSERT INTO users (id, email, password, name, google_id, picture)
		VALUES (:id, :email, :password, :name, :google_id, :picture)
	`
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return r.eb.New("user already exists",
				goerr.T(errs.TagConflict), goerr.V("email", u.Email))
		}
		return r.eb.Wrap(err, "failed to insert user",
			goerr.T(errs.TagDatabase), goerr.V("email", u.Email))
	}
	return nil
}

func (r *DB) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	query := "SELECT id, email, password, name, google_id, picture, created_at FROM users WHERE email = ?"
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.eb.New("user not found",
				goerr.T(errs.TagNotFound), goerr.V("email", email))
		}
		return nil, r.eb.Wrap(err, "failed to query user",
			goerr.T(errs.TagDatabase), goerr.V("email", email))
	}
	return &u, nil
}

func (r *DB) GetUserByID(ctx context.Context, id types.UserID) (*auth.User, error) {
	var u auth.User
	query := "SELECT id, email, password, name, google_id, picture, created_at FROM users WHERE id = ?"
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.eb.New("user not found",
				goerr.T(errs.TagNotFound), goerr.V("user_id", id))
		}
		return nil, r.eb.Wrap(err, "failed to query user",
			goerr.T(errs.TagDatabase), goerr.V("user_id", id))
	}
	return &u, nil
}
