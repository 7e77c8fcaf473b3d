package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leun/leun-client/internal/client/storage"
)

// State is the lifecycle stage of the session.
type State int

const (
	StateInitializing State = iota
	StateAuthenticated
	StateRefreshing
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateLoggedOut:
		return "logged out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is a snapshot of the signed-in user.
type Session struct {
	User            storage.User
	AccessToken     string
	RefreshToken    string
	State           State
	IsAuthenticated bool
	IsLoading       bool
}

// Session returns the current session.
func (g *Guard) Session() Session {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.session
}

// Start inspects the store once at application startup.
//
// A valid access token with a refresh token restores the session. An expired
// access token is refreshed through the usual single-flight path. Anything else
// leaves the client logged out with leftover keys removed.
func (g *Guard) Start(ctx context.Context) (Session, error) {
	accessToken, err := storage.GetOptional(ctx, g.store, storage.KeyAccessToken)
	if err != nil {
		return g.Session(), fmt.Errorf("failed to read access token: %w", err)
	}
	refreshToken, err := storage.GetOptional(ctx, g.store, storage.KeyRefreshToken)
	if err != nil {
		return g.Session(), fmt.Errorf("failed to read refresh token: %w", err)
	}

	switch {
	case accessToken == "" || refreshToken == "":
		g.clear(ctx)
		g.setLoggedOut()
	case !g.expired(accessToken):
		g.authenticated(ctx)
	default:
		g.logger.Debug("stored access token expired, refreshing")
		if _, err := g.renew(ctx, accessToken); err != nil && !errors.Is(err, ErrRefreshFailed) {
			return g.Session(), err
		}
	}

	return g.Session(), nil
}

// Establish stores a freshly issued session and marks it authenticated.
func (g *Guard) Establish(ctx context.Context, accessToken, refreshToken string, user storage.User) error {
	if accessToken == "" {
		return fmt.Errorf("access token is empty")
	}

	if err := g.store.Set(ctx, storage.KeyAccessToken, bearer(accessToken)); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if err := g.store.Set(ctx, storage.KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	if err := storage.SaveUser(ctx, g.store, &user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	g.stateMu.Lock()
	g.session = Session{
		User:            user,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		State:           StateAuthenticated,
		IsAuthenticated: true,
	}
	g.stateMu.Unlock()

	return nil
}

// UpdateUser applies fn to the stored user and saves the result.
func (g *Guard) UpdateUser(ctx context.Context, fn func(*storage.User)) error {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()

	user := g.session.User
	fn(&user)

	if err := storage.SaveUser(ctx, g.store, &user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	g.session.User = user
	return nil
}

// Logout invalidates the refresh token on the server when possible and always
// drops the local session.
func (g *Guard) Logout(ctx context.Context) error {
	refreshToken, err := storage.GetOptional(ctx, g.store, storage.KeyRefreshToken)
	if err != nil {
		g.logger.Warn("failed to read refresh token", "error", err)
	}
	if refreshToken != "" {
		g.revoke(ctx, refreshToken)
	}

	err = storage.Clear(ctx, g.store)
	g.signedOut()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SignOut drops the local session without calling the server, for example after
// the account was deleted.
func (g *Guard) SignOut(ctx context.Context) {
	g.clear(ctx)
	g.signedOut()
}

func (g *Guard) clear(ctx context.Context) {
	if err := storage.Clear(context.WithoutCancel(ctx), g.store); err != nil {
		g.logger.Error("failed to clear session", "error", err)
	}
}

// signedOut moves to LoggedOut and notifies the host.
func (g *Guard) signedOut() {
	g.setLoggedOut()
	if g.onSignedOut != nil {
		g.onSignedOut()
	}
}

func (g *Guard) setLoggedOut() {
	g.stateMu.Lock()
	g.session = Session{State: StateLoggedOut}
	g.stateMu.Unlock()
}

func (g *Guard) setState(state State) {
	g.stateMu.Lock()
	g.session.State = state
	g.stateMu.Unlock()
}

// authenticated reloads tokens and user from the store into the session.
func (g *Guard) authenticated(ctx context.Context) {
	var user storage.User
	stored, err := storage.LoadUser(ctx, g.store)
	switch {
	case err == nil:
		user = *stored
	case !errors.Is(err, storage.ErrNotFound):
		g.logger.Warn("failed to load user", "error", err)
	}

	accessToken, _ := storage.GetOptional(ctx, g.store, storage.KeyAccessToken)
	refreshToken, _ := storage.GetOptional(ctx, g.store, storage.KeyRefreshToken)

	g.stateMu.Lock()
	g.session = Session{
		User:            user,
		AccessToken:     strings.TrimPrefix(accessToken, bearerPrefix),
		RefreshToken:    refreshToken,
		State:           StateAuthenticated,
		IsAuthenticated: true,
	}
	g.stateMu.Unlock()
}

// expired reports whether the JWT in authorization is past its exp claim.
// The signature is not checked; a token that cannot be decoded counts as expired.
func (g *Guard) expired(authorization string) bool {
	var claims jwt.RegisteredClaims
	raw := strings.TrimPrefix(authorization, bearerPrefix)
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !g.now().Before(claims.ExpiresAt.Time)
}
