// Package session keeps the client signed in.
//
// Guard is an http.RoundTripper placed in front of the API transport. It attaches
// the stored access token to every request, and when the server answers 401 it
// exchanges the refresh token for a new pair and replays the request. Only one
// refresh call is in flight at a time; requests that fail while it runs wait in a
// queue and are replayed (or rejected) once it settles.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/pkg/api"
)

const bearerPrefix = "Bearer "

// Backend is the part of the auth server the guard talks to.
type Backend interface {
	// RefreshToken exchanges a refresh token for a new pair
	RefreshToken(ctx context.Context, refreshToken string) (*api.TokenPair, error)

	// Logout invalidates a refresh token on the server
	Logout(ctx context.Context, refreshToken string) error
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithOnSignedOut registers the callback fired whenever the session is lost:
// explicit logout, missing refresh token or a rejected refresh.
func WithOnSignedOut(fn func()) Option {
	return func(g *Guard) {
		g.onSignedOut = fn
	}
}

// WithRefreshTimeout bounds a single refresh, retries included.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(g *Guard) {
		g.refreshTimeout = timeout
	}
}

// WithRefreshRetries sets how many times a transient refresh failure is retried
// and the base delay of the exponential backoff.
func WithRefreshRetries(retries uint64, base time.Duration) Option {
	return func(g *Guard) {
		g.refreshRetries = retries
		g.retryBase = base
	}
}

// WithExcludedPaths replaces the path suffixes that never trigger a refresh.
func WithExcludedPaths(paths ...string) Option {
	return func(g *Guard) {
		g.excluded = paths
	}
}

// Guard holds the session and the refresh state. Create one per application.
type Guard struct {
	store       storage.TokenStore
	backend     Backend
	next        http.RoundTripper
	logger      *slog.Logger
	onSignedOut func()
	now         func() time.Time

	// pending is non-empty only while refreshing is true
	pending []chan refreshResult
	excluded []string

	session Session

	refreshTimeout time.Duration
	retryBase      time.Duration
	refreshRetries uint64

	mu         sync.Mutex
	stateMu    sync.RWMutex
	refreshing bool
}

// NewGuard creates a guard over store. Requests go to http.DefaultTransport
// until Middleware installs another one.
func NewGuard(store storage.TokenStore, backend Backend, opts ...Option) *Guard {
	g := &Guard{
		store:          store,
		backend:        backend,
		next:           http.DefaultTransport,
		logger:         slog.Default(),
		now:            time.Now,
		excluded:       []string{api.PathRefreshToken, api.PathLogout},
		refreshTimeout: 15 * time.Second,
		refreshRetries: 2,
		retryBase:      200 * time.Millisecond,
		session:        Session{State: StateInitializing, IsLoading: true},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Middleware sets next as the underlying transport and returns the guard.
// It matches api.Client.Use.
func (g *Guard) Middleware(next http.RoundTripper) http.RoundTripper {
	g.next = next
	return g
}

// RoundTrip implements http.RoundTripper.
func (g *Guard) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	base, err := replayable(req)
	if err != nil {
		return nil, err
	}

	authorization, err := storage.GetOptional(ctx, g.store, storage.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}

	resp, err := g.send(base, authorization, false)
	if err != nil {
		return nil, err
	}

	if !g.intercepts(req, resp) {
		return resp, nil
	}

	// Освобождаем соединение, пока ждем refresh
	if err := bufferBody(resp); err != nil {
		return nil, err
	}

	ctx = WithRetried(ctx)
	authorization, err = g.renew(ctx, authorization)
	if err != nil {
		if errors.Is(err, ErrNoRefreshToken) {
			g.logger.Info("got 401 without refresh token, signing out", "path", req.URL.Path)
			g.SignOut(ctx)
			return resp, nil
		}
		_ = resp.Body.Close()
		return nil, err
	}

	_ = resp.Body.Close()
	return g.send(base.WithContext(ctx), authorization, true)
}

// intercepts reports whether resp should start the refresh protocol.
func (g *Guard) intercepts(req *http.Request, resp *http.Response) bool {
	if resp.StatusCode != http.StatusUnauthorized {
		return false
	}
	if IsRetried(req.Context()) {
		return false
	}
	for _, path := range g.excluded {
		if strings.HasSuffix(req.URL.Path, path) {
			return false
		}
	}
	return true
}

// send clones base, attaches authorization and sends it to the next transport.
func (g *Guard) send(base *http.Request, authorization string, replay bool) (*http.Response, error) {
	out := base.Clone(base.Context())
	if replay && base.GetBody != nil {
		body, err := base.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		out.Body = body
	}

	if authorization != "" {
		out.Header.Set("Authorization", authorization)
	}

	return g.next.RoundTrip(out)
}

// replayable returns a copy of req whose body can be read again through GetBody.
func replayable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}

	payload, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(payload))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}
	out.ContentLength = int64(len(payload))
	return out, nil
}

// bufferBody reads the response body into memory and closes the connection side.
func bufferBody(resp *http.Response) error {
	payload, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(payload))
	return nil
}

func bearer(accessToken string) string {
	return bearerPrefix + accessToken
}
