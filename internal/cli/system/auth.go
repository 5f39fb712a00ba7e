package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/keyring"
	"github.com/julianstephens/habitvault/internal/models"
)

type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Store an API token."`
	Logout AuthLogoutCmd `cmd:"" help:"Forget the stored API token."`
	Status AuthStatusCmd `cmd:"" help:"Show who is signed in."`
}

type AuthLoginCmd struct {
	Token    string `help:"API bearer token (prompted when omitted)."`
	Username string `help:"Username to remember for this token."`
	NoVerify bool   `help:"Store the token without checking it against the server."`
}

func (c *AuthLoginCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	token := strings.TrimSpace(c.Token)
	if token == "" {
		err := huh.NewInput().
			Title("API token").
			EchoMode(huh.EchoModePassword).
			Value(&token).
			Validate(func(s string) error {
				_, err := keyring.Normalize(s)
				return err
			}).
			Run()
		if err != nil {
			return err
		}
		token = strings.TrimSpace(token)
	}

	var user *models.User
	if c.Username != "" {
		user = &models.User{Username: c.Username}
	}
	if err := ctx.Session.Login(token, user); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	if !c.NoVerify {
		client, err := ctx.API()
		if err != nil {
			return err
		}
		// A rejected token clears itself through the client
		habits, err := client.ListHabits(context.Background())
		if err != nil {
			return fmt.Errorf("token not accepted by %s: %w", client.BaseURL(), err)
		}
		ctx.Printf("✓ Signed in to %s (%d habits)\n", client.BaseURL(), len(habits))
		return nil
	}

	ctx.Println("✓ Token stored in OS keyring")
	return nil
}

type AuthLogoutCmd struct{}

func (c *AuthLogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	if err := ctx.Session.Logout(); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type AuthStatusCmd struct{}

func (c *AuthStatusCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	ctx.Printf("API:      %s\n", ctx.Session.APIURL())
	if !keyring.IsAvailable() {
		ctx.Println("Keyring:  unavailable")
	}

	tok, source, err := ctx.Session.TokenSource()
	if err != nil || tok == "" {
		ctx.Println("Status:   signed out")
		ctx.Println("Run 'habitvault auth login' to sign in.")
		return nil
	}
	ctx.Printf("Status:   signed in (token from %s)\n", source)
	if u := ctx.Session.User(); u != nil {
		ctx.Printf("User:     %s\n", u.Username)
	}
	return nil
}
