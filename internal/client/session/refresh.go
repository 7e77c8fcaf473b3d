package session

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sethvargo/go-retry"

	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/pkg/api"
)

// refreshResult is delivered to every request queued behind a refresh.
type refreshResult struct {
	err           error
	authorization string
}

// renew returns an Authorization value to replay a request that was rejected
// while carrying used. It joins a refresh in flight, reuses a token that was
// rotated after the request left, or runs the refresh itself.
func (g *Guard) renew(ctx context.Context, used string) (string, error) {
	g.mu.Lock()
	if g.refreshing {
		wait := make(chan refreshResult, 1)
		g.pending = append(g.pending, wait)
		g.mu.Unlock()
		return await(ctx, wait)
	}

	// Хранилище читается под mu: settle снимает флаг только после того,
	// как refresh записал новую пару или очистил сессию
	refreshToken, err := storage.GetOptional(ctx, g.store, storage.KeyRefreshToken)
	if err != nil {
		g.mu.Unlock()
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	current, err := storage.GetOptional(ctx, g.store, storage.KeyAccessToken)
	if err != nil {
		g.mu.Unlock()
		return "", fmt.Errorf("failed to read access token: %w", err)
	}

	switch {
	case current != "" && current != used:
		// Токен уже обновили, пока запрос был в пути
		g.mu.Unlock()
		return current, nil
	case refreshToken == "" && current == "" && used != "":
		// Сессию уже закрыл неудачный refresh другого запроса
		g.mu.Unlock()
		return "", fmt.Errorf("%w: session ended while the request was in flight", ErrRefreshFailed)
	case refreshToken == "":
		g.mu.Unlock()
		return "", ErrNoRefreshToken
	}

	g.refreshing = true
	g.mu.Unlock()

	g.setState(StateRefreshing)

	authorization, err := g.rotate(ctx, refreshToken)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		g.logger.Warn("token refresh failed, signing out", "error", err)

		g.revoke(ctx, refreshToken)
		g.clear(ctx)
		g.settle(refreshResult{err: err})
		g.signedOut()
		return "", err
	}

	g.authenticated(context.WithoutCancel(ctx))
	g.settle(refreshResult{authorization: authorization})
	g.logger.Debug("token refreshed")
	return authorization, nil
}

// rotate calls the refresh endpoint and persists the new pair.
// Transient failures are retried with exponential backoff.
func (g *Guard) rotate(ctx context.Context, refreshToken string) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
	defer cancel()

	var pair *api.TokenPair
	backoff := retry.WithMaxRetries(g.refreshRetries, retry.NewExponential(g.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := g.backend.RefreshToken(ctx, refreshToken)
		if err != nil {
			if isTransient(err) {
				g.logger.Debug("refresh attempt failed, retrying", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return "", err
	}

	authorization := bearer(pair.AccessToken)
	if err := g.store.Set(ctx, storage.KeyAccessToken, authorization); err != nil {
		return "", fmt.Errorf("failed to save access token: %w", err)
	}
	if pair.RefreshToken != "" {
		if err := g.store.Set(ctx, storage.KeyRefreshToken, pair.RefreshToken); err != nil {
			return "", fmt.Errorf("failed to save refresh token: %w", err)
		}
	}

	return authorization, nil
}

// settle clears the flag and wakes every waiter with res.
func (g *Guard) settle(res refreshResult) {
	g.mu.Lock()
	waiters := g.pending
	g.pending = nil
	g.refreshing = false
	g.mu.Unlock()

	for _, wait := range waiters {
		wait <- res
	}
}

// revoke asks the server to invalidate refreshToken. Errors are only logged.
func (g *Guard) revoke(ctx context.Context, refreshToken string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
	defer cancel()

	if err := g.backend.Logout(WithRetried(ctx), refreshToken); err != nil {
		g.logger.Warn("server logout failed", "error", err)
	}
}

func await(ctx context.Context, wait <-chan refreshResult) (string, error) {
	select {
	case res := <-wait:
		return res.authorization, res.err
	case <-ctx.Done():
		// Канал буферизован, settle не заблокируется
		return "", ctx.Err()
	}
}

// isTransient reports whether a refresh failure is worth repeating.
func isTransient(err error) bool {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
