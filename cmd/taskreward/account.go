package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"taskreward/internal/auth"
	"taskreward/internal/cloudsync"
)

func registerCmd(a *app) *cobra.Command {
	var email, username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a cloud account and save its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLocal()
			if err != nil {
				return err
			}
			client, err := l.requireClient()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = promptPassword(auth.MinPasswordLength); err != nil {
					return err
				}
			}
			res, err := client.Register(cmd.Context(), email, password, username)
			if err != nil {
				return err
			}
			if err := l.tokens.Save(res.Token); err != nil {
				return err
			}
			fmt.Fprintf(color.Output, "%s registered as %s\n", color.GreenString("✓"), res.User.Email)
			return a.pullAfterLogin(cmd.Context(), l)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the cloud and save the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLocal()
			if err != nil {
				return err
			}
			client, err := l.requireClient()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = promptPassword(0); err != nil {
					return err
				}
			}
			res, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := l.tokens.Save(res.Token); err != nil {
				return err
			}
			fmt.Fprintf(color.Output, "%s logged in as %s\n", color.GreenString("✓"), res.User.Email)
			return a.pullAfterLogin(cmd.Context(), l)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the saved token and forget it",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLocal()
			if err != nil {
				return err
			}
			tok, err := l.tokens.Token()
			if err != nil {
				return err
			}
			if tok == "" {
				fmt.Fprintln(color.Output, "not logged in")
				return nil
			}
			if client, err := l.requireClient(); err == nil {
				// The local token goes away even if the server is unreachable.
				if err := client.Logout(cmd.Context(), tok); err != nil {
					fmt.Fprintln(os.Stderr, color.YellowString("server logout failed: %v", err))
				}
			}
			if err := l.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(color.Output, "logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the saved token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLocal()
			if err != nil {
				return err
			}
			client, err := l.requireClient()
			if err != nil {
				return err
			}
			tok, err := l.tokens.Token()
			if err != nil {
				return err
			}
			if tok == "" {
				return cloudsync.ErrNotLoggedIn
			}
			u, err := client.Verify(cmd.Context(), tok)
			if err != nil {
				return err
			}
			fmt.Fprintf(color.Output, "%s <%s>\n", color.New(color.Bold).Sprint(u.Username), u.Email)
			return nil
		},
	}
}

// pullAfterLogin mirrors what the app does on startup once a token exists.
func (a *app) pullAfterLogin(ctx context.Context, l *local) error {
	if err := l.syncer.LoadInitial(ctx); err != nil {
		var apiErr *cloudsync.APIError
		if errors.As(err, &apiErr) && apiErr.Unauthorized() {
			return err
		}
		fmt.Fprintln(os.Stderr, color.YellowString("initial pull failed: %v", err))
	}
	return nil
}

func promptPassword(minLen int) (string, error) {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("empty")
			}
			if len(input) < minLen {
				return fmt.Errorf("at least %d characters", minLen)
			}
			return nil
		},
	}
	return prompt.Run()
}
