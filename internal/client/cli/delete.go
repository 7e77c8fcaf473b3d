package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runDeleteAccount(ctx context.Context) error {
	s, err := c.requireSession(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== Delete Account ===")
	c.io.Println()
	c.io.Printf("This permanently deletes the account of %s.\n", s.User.Name)

	answer, err := c.io.ReadInput("Type 'yes' to confirm: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !strings.EqualFold(answer, "yes") {
		c.io.Println("Cancelled.")
		return nil
	}

	if err := c.profiles.DeleteAccount(ctx); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	c.io.Println("✓ Account deleted")
	return nil
}
