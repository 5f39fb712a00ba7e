package main

import (
	"path/filepath"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"

	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/cli/analytics"
	"github.com/julianstephens/habitvault/internal/cli/checkins"
	"github.com/julianstephens/habitvault/internal/cli/habits"
	"github.com/julianstephens/habitvault/internal/cli/settings"
	"github.com/julianstephens/habitvault/internal/cli/system"
	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/errors"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to the local settings database." type:"path" default:"${config}"`
	Debug   bool   `help:"Log debug output to stderr."`
	APIURL  string `name:"api-url" help:"Override the saved API url."`

	Init      system.InitCmd         `cmd:"" help:"Initialize habitvault storage."`
	Auth      system.AuthCmd         `cmd:"" help:"Manage the API token."`
	Doctor    system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Backup    system.BackupCmd       `cmd:"" help:"Back up or restore the local settings."`
	Tui       system.TuiCmd          `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit     habits.HabitCmd        `cmd:"" help:"Manage habits."`
	Checkin   checkins.CheckinCmd    `cmd:"" help:"Record and list check-ins."`
	Today     checkins.TodayCmd      `cmd:"" help:"Show today's habits."`
	Calendar  checkins.CalendarCmd   `cmd:"" help:"Show a month of check-ins for one habit."`
	Heatmap   analytics.HeatmapCmd   `cmd:"" help:"Show a month of check-ins for every habit."`
	Analytics analytics.AnalyticsCmd `cmd:"" help:"Show completion analytics."`
	Quote     analytics.QuoteCmd     `cmd:"" help:"Show the quote of the day."`
	Settings  settings.SettingsCmd   `cmd:"" help:"Manage application settings."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker client for the HabitVault API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"config":  constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		errors.Fatal(err)
	}

	store := sqlite.NewStore(CLI.Config)
	appCtx := &cli.Context{
		Store:  store,
		APIURL: CLI.APIURL,
	}

	// Init and doctor handle their own loading
	if cmd := ctx.Selected(); cmd == nil || (cmd.Name != "init" && cmd.Name != "doctor") {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	errors.Fatal(ctx.Run(appCtx))
}
