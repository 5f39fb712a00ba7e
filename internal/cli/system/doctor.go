package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/keyring"
	"github.com/julianstephens/habitvault/internal/notifier"
	"github.com/julianstephens/habitvault/internal/utils"
)

type DoctorCmd struct {
	Timeout time.Duration `help:"Timeout for the API check." default:"5s"`
}

// schemaVersioner is implemented by stores with versioned migrations
type schemaVersioner interface {
	SchemaVersion() (int, int, error)
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}

	// Check 1: local storage
	storeOK := false
	if err := checkStorage(ctx); err != nil {
		fail("Local storage", err)
	} else {
		ctx.Println("✓ Local storage: OK")
		storeOK = true
	}

	// Check 2: schema version
	if storeOK {
		if err := checkSchemaVersion(ctx); err != nil {
			fail("Schema version", err)
		} else {
			ctx.Println("✓ Schema version: OK")
		}
	} else {
		ctx.Println("⊘ Schema version: SKIPPED (storage not reachable)")
	}

	// Check 3: timezone
	if storeOK {
		if err := checkTimezone(ctx); err != nil {
			fail("Timezone", err)
		} else {
			ctx.Println("✓ Timezone: OK")
		}
	} else {
		ctx.Println("⊘ Timezone: SKIPPED (storage not reachable)")
	}

	// Check 4: keyring (warning only, the token can come from the environment)
	if keyring.IsAvailable() {
		ctx.Println("✓ OS keyring: OK")
	} else {
		ctx.Println("⚠ OS keyring: WARNING")
		ctx.Println("   keyring unavailable, set the API token through the environment instead")
	}

	// Check 5: API reachable and token accepted
	if storeOK {
		if err := checkAPI(ctx, cmd.Timeout); err != nil {
			fail("API", err)
		} else {
			ctx.Println("✓ API: OK")
		}
	} else {
		ctx.Println("⊘ API: SKIPPED (storage not reachable)")
	}

	// Check 6: tray app (warning only, notifications fall back to the terminal)
	if err := notifier.CheckTray(); err != nil {
		ctx.Println("⚠ Tray notifications: WARNING")
		ctx.Printf("   %v\n", err)
	} else {
		ctx.Println("✓ Tray notifications: OK")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStorage(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.GetSettings(); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	return ctx.Load()
}

func checkSchemaVersion(ctx *cli.Context) error {
	sv, ok := ctx.Store.(schemaVersioner)
	if !ok {
		return nil
	}
	current, latest, err := sv.SchemaVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d", current, latest)
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	tz := ctx.Session.Settings().Timezone
	if !utils.ValidateTimezone(tz) {
		return fmt.Errorf("invalid timezone %q", tz)
	}
	return nil
}

func checkAPI(ctx *cli.Context, timeout time.Duration) error {
	client, err := ctx.API()
	if err != nil {
		return err
	}
	if !ctx.Session.LoggedIn() {
		return fmt.Errorf("not signed in to %s (run 'habitvault auth login')", client.BaseURL())
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := client.ListHabits(reqCtx); err != nil {
		if api.IsAuth(err) {
			return fmt.Errorf("token rejected by %s", client.BaseURL())
		}
		return err
	}
	return nil
}
