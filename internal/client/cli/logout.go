package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogout(ctx context.Context) error {
	s, err := c.sessions.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	// Start уже удалил остатки сессии, если она была неполной или истекла
	if !s.IsAuthenticated {
		c.io.Println("No active session.")
		return nil
	}

	if err := c.authService.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Printf("Signed out %s.\n", s.User.Name)
	c.io.Println("The refresh token was sent to the server for revocation and local tokens were removed.")

	return nil
}
