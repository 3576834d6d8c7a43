package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/appshell-dev/appshell/internal/cli/shell"
)

// Credential environment variables, useful for CI
const (
	EnvUsername = "APPSHELL_USERNAME"
	EnvPassword = "APPSHELL_PASSWORD"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var alias, username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the selected app",
		Long: `Sign in to the selected app.

When a screen sent you to the login page, a successful login returns you to
that screen; otherwise you land on the app's home screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, alias, username, password)
		},
	}

	addAppFlag(cmd, &alias)
	cmd.Flags().StringVar(&username, "username", "", "Username (or set "+EnvUsername+")")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set "+EnvPassword+", will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, alias, username, password string) error {
	username, password, err := readCredentials(username, password)
	if err != nil {
		return err
	}

	s, err := openShell(alias, "")
	if err != nil {
		return err
	}
	defer persist(s)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logging in to %s...\n", s.App.Alias)

	landed, err := s.Login(cmd.Context(), username, password)
	if err != nil {
		if errors.Is(err, shell.ErrInvalidCredentials) {
			return err
		}
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s\n", s.Session().Username)
	fmt.Fprintf(out, "  Location: %s\n", landed)

	return nil
}

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var alias, username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the selected app's API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, alias, username, password)
		},
	}

	addAppFlag(cmd, &alias)
	cmd.Flags().StringVar(&username, "username", "", "Username (or set "+EnvUsername+")")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set "+EnvPassword+", will prompt if not provided)")

	return cmd
}

func runRegister(cmd *cobra.Command, alias, username, password string) error {
	username, password, err := readCredentials(username, password)
	if err != nil {
		return err
	}

	s, err := openShell(alias, "")
	if err != nil {
		return err
	}

	if err := registerClient(s).Register(cmd.Context(), username, password); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Account %s created. Run 'appshell login' to sign in\n", username)
	return nil
}

type registrar interface {
	Register(ctx context.Context, username, password string) error
}

func registerClient(s *shell.Shell) registrar {
	if s.Notes != nil {
		return s.Notes
	}
	return s.Movies
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShell(alias, "")
			if err != nil {
				return err
			}
			defer persist(s)

			if err := s.Logout(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged out of %s\n", s.App.Alias)
			return nil
		},
	}

	addAppFlag(cmd, &alias)

	return cmd
}

// readCredentials fills missing values from the environment, then the terminal
func readCredentials(username, password string) (string, string, error) {
	if username == "" {
		username = os.Getenv(EnvUsername)
	}
	if password == "" {
		password = os.Getenv(EnvPassword)
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	if username == "" {
		if !interactive {
			return "", "", fmt.Errorf("username is required in non-interactive mode (use --username flag or %s env var)", EnvUsername)
		}
		prompt := promptui.Prompt{
			Label: "Username",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("username cannot be empty")
				}
				return nil
			},
		}
		value, err := prompt.Run()
		if err != nil {
			return "", "", fmt.Errorf("login cancelled: %w", err)
		}
		username = strings.TrimSpace(value)
	}

	if password == "" {
		if !interactive {
			return "", "", fmt.Errorf("password is required in non-interactive mode (use --password flag or %s env var)", EnvPassword)
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
	}

	return username, password, nil
}
