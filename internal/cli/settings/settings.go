package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	APIURL                *string `name:"api" help:"Base URL of the HabitVault API."`
	DarkMode              *bool   `help:"Use the dark palette in the TUI."`
	ShowMotivationalQuote *bool   `name:"quote" help:"Show the daily quote on the dashboard."`
	Notifications         *bool   `help:"Enable or disable notifications."`
	NetworkErrors         *string `help:"How network errors are reported: notify or silent."`
	Timezone              *string `help:"IANA timezone name, or Local."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	settings := ctx.Session.Settings()

	if c.List {
		printSettings(ctx, settings)
		return nil
	}

	if err := c.validate(); err != nil {
		return err
	}

	updated := c.APIURL != nil || c.DarkMode != nil || c.ShowMotivationalQuote != nil ||
		c.Notifications != nil || c.NetworkErrors != nil || c.Timezone != nil
	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	err := ctx.Session.Update(func(s *models.Settings) {
		if c.APIURL != nil {
			s.APIURL = strings.TrimRight(strings.TrimSpace(*c.APIURL), "/")
		}
		if c.DarkMode != nil {
			s.DarkMode = *c.DarkMode
		}
		if c.ShowMotivationalQuote != nil {
			s.ShowMotivationalQuote = *c.ShowMotivationalQuote
		}
		if c.Notifications != nil {
			s.NotificationsEnabled = *c.Notifications
		}
		if c.NetworkErrors != nil {
			s.NetworkErrorPolicy = *c.NetworkErrors
		}
		if c.Timezone != nil {
			s.Timezone = *c.Timezone
		}
	})
	if err != nil {
		return err
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

func (c *SettingsCmd) validate() error {
	if c.APIURL != nil {
		u := strings.TrimSpace(*c.APIURL)
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("invalid api url %q: must start with http:// or https://", u)
		}
	}
	if c.NetworkErrors != nil {
		switch *c.NetworkErrors {
		case constants.NetworkErrorsNotify, constants.NetworkErrorsSilent:
		default:
			return fmt.Errorf("invalid network error policy %q (expected notify or silent)", *c.NetworkErrors)
		}
	}
	if c.Timezone != nil && !utils.ValidateTimezone(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}
	return nil
}

func printSettings(ctx *cli.Context, s models.Settings) {
	ctx.Println("Current Settings:")
	ctx.Printf("  API URL:               %s\n", s.APIURL)
	if s.User != nil {
		ctx.Printf("  User:                  %s\n", s.User.Username)
	}
	ctx.Printf("  Timezone:              %s\n", s.Timezone)
	ctx.Printf("  Dark Mode:             %v\n", s.DarkMode)
	ctx.Printf("  Motivational Quote:    %v\n", s.ShowMotivationalQuote)
	ctx.Println("\nNotification Settings:")
	ctx.Printf("  Notifications Enabled: %v\n", s.NotificationsEnabled)
	ctx.Printf("  Network Errors:        %s\n", s.NetworkErrorPolicy)
	if s.AnalyticsStartDate != "" {
		ctx.Println("\nAnalytics:")
		ctx.Printf("  Range:                 %s to %s (%s)\n", s.AnalyticsStartDate, s.AnalyticsEndDate, s.AnalyticsPeriod)
	}
}
