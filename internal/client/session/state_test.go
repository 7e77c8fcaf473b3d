package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/leun/leun-client/internal/client/api"
	"github.com/leun/leun-client/internal/client/storage"
	"github.com/leun/leun-client/internal/client/storage/memory"
	"github.com/leun/leun-client/pkg/api"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mintToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "user-1"}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "refreshing", StateRefreshing.String())
	assert.Equal(t, "logged out", StateLoggedOut.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestGuard_NewIsInitializing(t *testing.T) {
	g := NewGuard(memory.New(), &fakeBackend{})
	s := g.Session()
	assert.Equal(t, StateInitializing, s.State)
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated)
}

func TestGuard_Expired(t *testing.T) {
	g := NewGuard(memory.New(), &fakeBackend{})
	g.now = func() time.Time { return testNow }

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "valid", token: "Bearer " + mintToken(t, testNow.Add(time.Hour)), want: false},
		{name: "expired", token: "Bearer " + mintToken(t, testNow.Add(-time.Minute)), want: true},
		{name: "without prefix", token: mintToken(t, testNow.Add(time.Hour)), want: false},
		{name: "no exp claim", token: "Bearer " + mintToken(t, time.Time{}), want: false},
		{name: "garbage", token: "Bearer not-a-jwt", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.expired(tt.token))
		})
	}
}

func TestGuard_Start(t *testing.T) {
	valid := "Bearer " + mintToken(t, testNow.Add(time.Hour))
	expired := "Bearer " + mintToken(t, testNow.Add(-time.Hour))
	user := `{"name":"Ann","image":null,"settings":{"language":"ko","country":null,"timezone":null}}`

	tests := []struct {
		refresh       func(context.Context, string) (*api.TokenPair, error)
		seed          map[string]string
		name          string
		wantAccess    string
		wantState     State
		wantCalls     int32
		wantSignedOut int32
	}{
		{
			name: "valid access token",
			seed: map[string]string{
				storage.KeyAccessToken:  valid,
				storage.KeyRefreshToken: "RT1",
				storage.KeyUser:         user,
			},
			wantState:  StateAuthenticated,
			wantAccess: valid,
		},
		{
			name: "expired access token is refreshed",
			seed: map[string]string{
				storage.KeyAccessToken:  expired,
				storage.KeyRefreshToken: "RT1",
				storage.KeyUser:         user,
			},
			refresh:    rotateTo("AT2", "RT2"),
			wantState:  StateAuthenticated,
			wantAccess: "Bearer AT2",
			wantCalls:  1,
		},
		{
			name: "refresh rejected at startup",
			seed: map[string]string{
				storage.KeyAccessToken:  expired,
				storage.KeyRefreshToken: "RT1",
			},
			refresh: func(context.Context, string) (*api.TokenPair, error) {
				return nil, &api.StatusError{StatusCode: http.StatusUnauthorized}
			},
			wantState:     StateLoggedOut,
			wantCalls:     1,
			wantSignedOut: 1,
		},
		{
			name:      "nothing stored",
			seed:      map[string]string{},
			wantState: StateLoggedOut,
		},
		{
			name: "access token without refresh token",
			seed: map[string]string{
				storage.KeyAccessToken: valid,
				storage.KeyUser:        user,
			},
			wantState: StateLoggedOut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			seed(t, store, tt.seed)

			backend := &fakeBackend{refresh: tt.refresh}
			var signedOut atomic.Int32
			g := newTestGuard(store, backend, acceptOnly(""), WithOnSignedOut(func() {
				signedOut.Add(1)
			}))
			g.now = func() time.Time { return testNow }

			s, err := g.Start(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantState, s.State)
			assert.Equal(t, tt.wantState == StateAuthenticated, s.IsAuthenticated)
			assert.False(t, s.IsLoading)
			assert.Equal(t, tt.wantCalls, backend.refreshCalls.Load())
			assert.Equal(t, tt.wantSignedOut, signedOut.Load())
			assert.Equal(t, tt.wantAccess, stored(t, store, storage.KeyAccessToken))

			if tt.wantState == StateAuthenticated {
				assert.Equal(t, "Ann", s.User.Name)
				require.NotNil(t, s.User.Settings.Language)
				assert.Equal(t, "ko", *s.User.Settings.Language)
			} else {
				assert.Empty(t, stored(t, store, storage.KeyUser))
			}
		})
	}
}

func TestGuard_EstablishAndUpdateUser(t *testing.T) {
	store := memory.New()
	g := NewGuard(store, &fakeBackend{})
	ctx := context.Background()

	require.Error(t, g.Establish(ctx, "", "RT1", storage.User{}))

	require.NoError(t, g.Establish(ctx, "AT1", "RT1", storage.User{Name: "Ann"}))

	s := g.Session()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, StateAuthenticated, s.State)
	assert.Equal(t, "AT1", s.AccessToken)
	assert.Equal(t, "RT1", s.RefreshToken)
	assert.Equal(t, "Bearer AT1", stored(t, store, storage.KeyAccessToken))
	assert.Equal(t, "RT1", stored(t, store, storage.KeyRefreshToken))

	require.NoError(t, g.UpdateUser(ctx, func(u *storage.User) {
		u.Name = "Bob"
	}))
	assert.Equal(t, "Bob", g.Session().User.Name)

	user, err := storage.LoadUser(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)
}

func TestGuard_Logout(t *testing.T) {
	tests := []struct {
		logoutErr   error
		name        string
		wantLogouts []string
		seed        map[string]string
	}{
		{
			name:        "server accepts",
			seed:        map[string]string{storage.KeyAccessToken: "Bearer AT1", storage.KeyRefreshToken: "RT1"},
			wantLogouts: []string{"RT1"},
		},
		{
			name:        "server unreachable",
			seed:        map[string]string{storage.KeyAccessToken: "Bearer AT1", storage.KeyRefreshToken: "RT1"},
			logoutErr:   errors.New("connection refused"),
			wantLogouts: []string{"RT1"},
		},
		{
			name: "no refresh token",
			seed: map[string]string{storage.KeyAccessToken: "Bearer AT1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			seed(t, store, tt.seed)

			backend := &fakeBackend{logoutErr: tt.logoutErr}
			var signedOut atomic.Int32
			g := NewGuard(store, backend, WithOnSignedOut(func() { signedOut.Add(1) }))

			require.NoError(t, g.Logout(context.Background()))

			assert.Equal(t, tt.wantLogouts, backend.loggedOut())
			assert.EqualValues(t, 1, signedOut.Load())
			assert.Equal(t, StateLoggedOut, g.Session().State)
			for _, key := range storage.SessionKeys {
				assert.Empty(t, stored(t, store, key), key)
			}
		})
	}
}

// authServer эмулирует API: профиль доступен только с токеном accepted
type authServer struct {
	refreshes atomic.Int32
	logouts   atomic.Int32
	accepted  string
	rotate    bool
}

func (s *authServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+api.PathProfile, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != s.accepted {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"email":"a@b.com","name":"Ann","image":null}`))
	})

	mux.HandleFunc("POST "+api.PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		s.refreshes.Add(1)
		var req api.RefreshTokenRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if !s.rotate || req.RefreshToken != "RT1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid refresh token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"accessToken":"AT2","refreshToken":"RT2"}`))
	})

	mux.HandleFunc("POST "+api.PathLogout, func(w http.ResponseWriter, r *http.Request) {
		s.logouts.Add(1)
		var req api.LogoutRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "RT1", req.RefreshToken)
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func wire(t *testing.T, srv *authServer, store storage.TokenStore, opts ...Option) (*apiclient.Client, *Guard) {
	t.Helper()
	server := httptest.NewServer(srv.handler(t))
	t.Cleanup(server.Close)

	client := apiclient.NewClient(server.URL)
	guard := NewGuard(store, client, append([]Option{WithRefreshRetries(0, time.Millisecond)}, opts...)...)
	client.Use(guard.Middleware)
	return client, guard
}

func TestGuard_ClientReplaysAfterRefresh(t *testing.T) {
	store := memory.New()
	seed(t, store, map[string]string{
		storage.KeyAccessToken:  "Bearer AT1",
		storage.KeyRefreshToken: "RT1",
	})

	srv := &authServer{accepted: "Bearer AT2", rotate: true}
	client, guard := wire(t, srv, store)

	profile, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann", profile.Name)

	assert.EqualValues(t, 1, srv.refreshes.Load())
	assert.Zero(t, srv.logouts.Load())
	assert.Equal(t, "Bearer AT2", stored(t, store, storage.KeyAccessToken))
	assert.Equal(t, "RT2", stored(t, store, storage.KeyRefreshToken))
	assert.Equal(t, StateAuthenticated, guard.Session().State)
}

func TestGuard_ClientRefreshRejected(t *testing.T) {
	store := memory.New()
	seed(t, store, map[string]string{
		storage.KeyAccessToken:  "Bearer AT1",
		storage.KeyRefreshToken: "RT1",
		storage.KeyUser:         `{"name":"Ann"}`,
	})

	srv := &authServer{accepted: "Bearer AT2"}
	var signedOut atomic.Int32
	client, guard := wire(t, srv, store, WithOnSignedOut(func() { signedOut.Add(1) }))

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "Invalid refresh token", statusErr.Message)

	// Запрос refresh сам по себе не запускает еще один refresh
	assert.EqualValues(t, 1, srv.refreshes.Load())
	assert.EqualValues(t, 1, srv.logouts.Load())
	assert.EqualValues(t, 1, signedOut.Load())
	for _, key := range storage.SessionKeys {
		assert.Empty(t, stored(t, store, key), key)
	}
	assert.Equal(t, StateLoggedOut, guard.Session().State)
}

func TestGuard_SignOut(t *testing.T) {
	store := memory.New()
	backend := &fakeBackend{}
	var signedOut atomic.Int32
	g := NewGuard(store, backend, WithOnSignedOut(func() { signedOut.Add(1) }))

	require.NoError(t, g.Establish(context.Background(), "AT1", "RT1", storage.User{Name: "Ann"}))
	g.SignOut(context.Background())

	// Сервер не вызывается
	assert.Empty(t, backend.loggedOut())
	assert.EqualValues(t, 1, signedOut.Load())
	assert.Equal(t, StateLoggedOut, g.Session().State)
	for _, key := range storage.SessionKeys {
		assert.Empty(t, stored(t, store, key), key)
	}
}
