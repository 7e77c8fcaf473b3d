package cli

import (
	"context"
	"fmt"

	"github.com/leun/leun-client/internal/client/api"
	"github.com/leun/leun-client/internal/client/profile"
)

func (c *Cli) runProfile(ctx context.Context) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	overview, err := c.profiles.Overview(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== Profile ===")
	c.io.Println()
	c.io.Printf("Email: %s\n", overview.Profile.Email)
	c.io.Printf("Name: %s\n", overview.Profile.Name)
	c.io.Printf("Image: %s\n", orNotSet(overview.Profile.Image))
	c.printSettings(overview.Settings.Language, overview.Settings.Country, overview.Settings.Timezone)

	return nil
}

func (c *Cli) runSetName(ctx context.Context, name string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	updated, err := c.profiles.UpdateName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to update name: %w", err)
	}

	c.io.Printf("✓ Name changed to %s\n", updated.Name)
	return nil
}

func (c *Cli) runAvatar(ctx context.Context, path string) error {
	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	progress := func(p api.Progress) {
		if p.Total > 0 {
			c.io.Printf("\rUploading... %3d%%", p.Loaded*100/p.Total)
		}
	}

	updated, err := c.profiles.UploadAvatar(ctx, path, progress)
	if err != nil {
		c.io.Println()
		return fmt.Errorf("failed to upload image: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Profile image updated")
	c.io.Printf("Image: %s\n", orNotSet(updated.Image))
	return nil
}

func (c *Cli) runSet(ctx context.Context, name, value string) error {
	setting, err := profile.ParseSetting(name)
	if err != nil {
		return err
	}

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	settings, err := c.profiles.UpdateSetting(ctx, setting, value)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", setting, err)
	}

	c.io.Printf("✓ %s updated\n", setting)
	c.printSettings(settings.Language, settings.Country, settings.Timezone)
	return nil
}
