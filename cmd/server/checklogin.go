package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clubweb/internal/api"
	"clubweb/internal/config"
	"clubweb/internal/models"
	"clubweb/internal/session"
)

func newCheckLoginCmd(envFile *string) *cobra.Command {
	var backendURL string
	cmd := &cobra.Command{
		Use:   "check-login EMAIL",
		Short: "Log in against the backend and show what a session would hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("backend") {
				cfg.BackendURL = backendURL
			}
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.BackendTimeout)
			defer cancel()
			res, err := api.New(cfg.BackendURL, cfg.BackendTimeout).Login(ctx, args[0], password)
			if err != nil {
				return err
			}

			user := models.DecodeProfile(res.User)
			role := res.Role
			if role == "" {
				role = user.Role
			}
			expiry := "session ttl " + cfg.SessionTTL.String()
			if c, ok := session.ReadClaims(res.Token); ok {
				if role == "" {
					role = c.Role
				}
				if !c.ExpiresAt.IsZero() {
					expiry = c.ExpiresAt.Local().Format(time.RFC1123)
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:    %s\n", user.Name)
			fmt.Fprintf(out, "role:    %s\n", models.ParseRole(role))
			fmt.Fprintf(out, "expires: %s\n", expiry)
			if res.Message != "" {
				fmt.Fprintf(out, "message: %s\n", res.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&backendURL, "backend", "", "backend base URL (BACKEND_URL)")
	return cmd
}

// readPassword reads a password without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
