package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	// Start обновит истекший токен, если есть refresh token
	s, err := c.sessions.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	if !s.IsAuthenticated {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'leun login' to authenticate.")
		return nil
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Name: %s\n", s.User.Name)
	c.printSettings(s.User.Settings.Language, s.User.Settings.Country, s.User.Settings.Timezone)

	return nil
}
