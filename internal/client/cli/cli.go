package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/leun/leun-client/internal/client/api"
	"github.com/leun/leun-client/internal/client/auth"
	"github.com/leun/leun-client/internal/client/iocli"
	"github.com/leun/leun-client/internal/client/profile"
	"github.com/leun/leun-client/internal/client/session"
	pkgapi "github.com/leun/leun-client/pkg/api"
)

// ErrNotAuthenticated возвращается командами, которым нужна сессия
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'leun login' first")

// Sessions дает доступ к состоянию сессии
type Sessions interface {
	Start(ctx context.Context) (session.Session, error)
}

// Profiles описывает операции над профилем
type Profiles interface {
	Overview(ctx context.Context) (*profile.Overview, error)
	UpdateName(ctx context.Context, name string) (*pkgapi.Profile, error)
	UploadAvatar(ctx context.Context, path string, onProgress api.ProgressFunc) (*pkgapi.Profile, error)
	UpdateSetting(ctx context.Context, setting profile.Setting, value string) (*pkgapi.Settings, error)
	DeleteAccount(ctx context.Context) error
}

type Cli struct {
	io          iocli.IO
	authService auth.Service
	profiles    Profiles
	sessions    Sessions
}

func New(io iocli.IO, authService auth.Service, profiles Profiles, sessions Sessions) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		profiles:    profiles,
		sessions:    sessions,
	}
}

// requireSession восстанавливает сессию из хранилища; при необходимости обновляет токен
func (c *Cli) requireSession(ctx context.Context) (session.Session, error) {
	s, err := c.sessions.Start(ctx)
	if err != nil {
		return s, fmt.Errorf("failed to restore session: %w", err)
	}
	if !s.IsAuthenticated {
		return s, ErrNotAuthenticated
	}
	return s, nil
}

func PrintUsage(io iocli.IO) {
	io.Println("Leun Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  leun [OPTIONS] COMMAND")
	io.Println()
	io.Println("Options:")
	io.Println("  --version                Show version information")
	io.Println("  --server URL             Server URL (default: http://localhost:8080, env LEUN_SERVER_URL)")
	io.Println("  --db PATH                Path to local session database (default: leun-client.db, env LEUN_DB_PATH)")
	io.Println("  --store TYPE             Session store: bolt, sqlite or memory (default: bolt, env LEUN_STORE)")
	io.Println("  --log-level LEVEL        debug, info, warn or error (default: warn, env LEUN_LOG_LEVEL)")
	io.Println()
	io.Println("Set LEUN_STORE_PASSPHRASE to encrypt stored tokens.")
	io.Println()
	io.Println("Commands:")
	io.Println("  register                 Create a new account")
	io.Println("  login                    Login with email and password")
	io.Println("  login-google <code>      Login with a Google authorization code")
	io.Println("  login-naver <code>       Login with a Naver authorization code")
	io.Println("  logout                   Logout and delete the local session")
	io.Println("  status                   Show session status")
	io.Println("  profile                  Show profile and settings")
	io.Println("  set-name <name>          Change display name")
	io.Println("  avatar <file>            Upload profile image")
	io.Println("  set <setting> <value>    Change language, country or timezone")
	io.Println("  delete-account           Delete the account")
	io.Println()
	io.Println("Examples:")
	io.Println("  leun login")
	io.Println("  leun set timezone Asia/Seoul")
	io.Println("  leun avatar ~/me.png")
	io.Println("  leun --server https://api.example.com status")
}
