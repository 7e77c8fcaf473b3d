package cli

import (
	"context"
	"fmt"

	"github.com/leun/leun-client/internal/client/auth"
	"github.com/leun/leun-client/internal/client/storage"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	user, err := c.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.printWelcome(user)
	return nil
}

func (c *Cli) runOAuthLogin(ctx context.Context, provider auth.Provider, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: leun login-%s <code>", provider)
	}

	c.io.Printf("Authenticating with %s...\n", provider)

	user, err := c.authService.OAuthLogin(ctx, provider, args[0])
	if err != nil {
		return err
	}

	c.printWelcome(user)
	return nil
}

func (c *Cli) printWelcome(user *storage.User) {
	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Welcome, %s\n", user.Name)
	c.io.Println()
	c.io.Println("Your session has been saved.")
}
