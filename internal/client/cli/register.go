package cli

import (
	"context"
	"fmt"

	"github.com/leun/leun-client/internal/client/auth"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	name, err := c.io.ReadInput("Name: ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}

	password, err := c.io.ReadPassword("Password (min 8 chars, letter, number and @$!%*#?&): ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	// Подтверждение пароля
	confirmation, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	c.io.Println()
	c.io.Println("Registering user...")

	err = c.authService.Register(ctx, auth.RegisterInput{
		Email:        email,
		Name:         name,
		Password:     password,
		Confirmation: confirmation,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Println("Please run 'leun login' to sign in.")

	return nil
}
