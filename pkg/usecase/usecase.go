package usecase

import (
	"net/http"
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/interfaces"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type UseCases struct {
	repository interfaces.Repository
	notifier   interfaces.BoardNotifier

	// auth
	tokenSecret       []byte
	googleUserInfoURL string
	httpClient        *http.Client
}

type Option func(*UseCases)

func WithNotifier(notifier interfaces.BoardNotifier) Option {
	return func(u *UseCases) {
		u.notifier = notifier
	}
}

func WithTokenSecret(secret string) Option {
	return func(u *UseCases) {
		u.tokenSecret = []byte(secret)
	}
}

func WithGoogleUserInfoURL(url string) Option {
	return func(u *UseCases) {
		u.googleUserInfoURL = url
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(u *UseCases) {
		u.httpClient = client
	}
}

func New(repository interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repository:        repository,
		notifier:          &interfaces.DiscardNotifier{},
		googleUserInfoURL: defaultGoogleUserInfoURL,
		httpClient:        &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}
