package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/leun/leun-client/internal/client/auth"
)

// Run выполняет команду с аргументами args (без имени команды)
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "login-google":
		return c.runOAuthLogin(ctx, auth.ProviderGoogle, args)
	case "login-naver":
		return c.runOAuthLogin(ctx, auth.ProviderNaver, args)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "profile":
		return c.runProfile(ctx)
	case "set-name":
		if len(args) == 0 {
			return fmt.Errorf("usage: leun set-name <name>")
		}
		return c.runSetName(ctx, strings.Join(args, " "))
	case "avatar":
		if len(args) != 1 {
			return fmt.Errorf("usage: leun avatar <file>")
		}
		return c.runAvatar(ctx, args[0])
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: leun set <language|country|timezone> <value>")
		}
		return c.runSet(ctx, args[0], args[1])
	case "delete-account":
		return c.runDeleteAccount(ctx)
	default:
		PrintUsage(c.io)
		return fmt.Errorf("unknown command: %s", command)
	}
}
