package memory

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

func (r *Memory) CreateUser(ctx context.Context, u *auth.User) error {
	r.userMu.Lock()
	defer r.userMu.Unlock()

	if u.ID == types.EmptyUserID {
		return r.eb.New("user ID is empty")
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return r.eb.New("email already registered",
				goerr.T(errs.TagConflict), goerr.V("email", u.Email))
		}
	}

	userCopy := *u
	r.users[u.ID] = &userCopy
	return nil
}

func (r *Memory) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	r.userMu.RLock()
	defer r.userMu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, r.eb.New("user not found",
		goerr.T(errs.TagNotFound), goerr.V("email", email))
}

func (r *Memory) GetUserByID(ctx context.Context, id types.UserID) (*auth.User, error) {
	r.userMu.RLock()
	defer r.userMu.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return nil, r.eb.New("user not found",
			goerr.T(errs.TagNotFound), goerr.V("user_id", id))
	}
	userCopy := *u
	return &userCopy, nil
}
