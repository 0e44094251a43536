package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
	"github.com/campus-lab/campusboard/pkg/utils/safe"
)

// Register creates an account from email and password. A failure the user can
// act on (duplicate account) comes back as an unsuccessful Credential, not an
// error.
func (uc *UseCases) Register(ctx context.Context, name, email, password string) (*auth.Credential, error) {
	if name == "" || email == "" || password == "" {
		return nil, goerr.New("name, email and password are required", goerr.T(errs.TagValidation))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}

	user := &auth.User{
		ID:       types.NewUserID(),
		Email:    email,
		Password: string(hash),
		Name:     name,
	}
	if err := uc.repository.CreateUser(ctx, user); err != nil {
		if goerr.HasTag(err, errs.TagConflict) {
			return &auth.Credential{Success: false, Message: "User already exists"}, nil
		}
		return nil, err
	}

	logging.From(ctx).Info("user registered", "user_id", user.ID)
	return uc.issueCredential(user)
}

// Login verifies email and password. Unknown users and wrong passwords both
// yield the same unsuccessful Credential so the response does not leak which
// accounts exist.
func (uc *UseCases) Login(ctx context.Context, email, password string) (*auth.Credential, error) {
	user, err := uc.repository.GetUserByEmail(ctx, email)
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) {
			return &auth.Credential{Success: false, Message: "Invalid email or password"}, nil
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return &auth.Credential{Success: false, Message: "Invalid email or password"}, nil
	}

	logging.From(ctx).Info("user logged in", "user_id", user.ID)
	return uc.issueCredential(user)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleLogin exchanges a Google access token for a local credential,
// provisioning an account on first sign-in.
func (uc *UseCases) GoogleLogin(ctx context.Context, accessToken string) (*auth.Credential, error) {
	info, err := uc.fetchGoogleUserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, goerr.New("google userinfo has no email", goerr.T(errs.TagUnauthorized))
	}

	user, err := uc.repository.GetUserByEmail(ctx, info.Email)
	if err != nil {
		if !goerr.HasTag(err, errs.TagNotFound) {
			return nil, err
		}
		user = &auth.User{
			ID:       types.NewUserID(),
			Email:    info.Email,
			Name:     info.Name,
			GoogleID: info.Sub,
			Picture:  info.Picture,
		}
		if err := uc.repository.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		logging.From(ctx).Info("user provisioned via google", "user_id", user.ID)
	}

	return uc.issueCredential(user)
}

func (uc *UseCases) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uc.googleUserInfoURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build userinfo request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch google userinfo", goerr.T(errs.TagTransient))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("google userinfo rejected token",
			goerr.T(errs.TagUnauthorized),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, goerr.Wrap(err, "failed to parse google userinfo")
	}
	return &info, nil
}

func (uc *UseCases) issueCredential(user *auth.User) (*auth.Credential, error) {
	token, err := uc.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &auth.Credential{
		Success: true,
		Token:   token,
		Name:    user.Name,
		Email:   user.Email,
		Picture: user.Picture,
	}, nil
}

func (uc *UseCases) issueToken(user *auth.User) (string, error) {
	if len(uc.tokenSecret) == 0 {
		return "", goerr.New("token secret is not configured")
	}

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		Claim("email", user.Email).
		IssuedAt(now).
		Expiration(now.Add(auth.TokenTTL)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.tokenSecret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return string(signed), nil
}

// VerifyToken parses and validates a bearer token issued by this server.
func (uc *UseCases) VerifyToken(ctx context.Context, raw string) (*auth.Claims, error) {
	if len(uc.tokenSecret) == 0 {
		return nil, goerr.New("token secret is not configured")
	}

	tok, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, uc.tokenSecret))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid token", goerr.T(errs.TagUnauthorized))
	}

	claims := &auth.Claims{UserID: types.UserID(tok.Subject())}
	if v, ok := tok.Get("email"); ok {
		if email, ok := v.(string); ok {
			claims.Email = email
		}
	}
	return claims, nil
}
