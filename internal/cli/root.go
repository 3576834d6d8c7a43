package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/appshell-dev/appshell/internal/cli/commands"
	"github.com/appshell-dev/appshell/internal/logger"
)

// EnvLogLevel sets the default for --log-level
const EnvLogLevel = "APPSHELL_LOG_LEVEL"

var version = "dev" // Will be set during build

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "appshell",
	Short: "appshell - Session-guarded client shells for the notes and movies APIs",
	Long: `appshell runs the notes manager and the movie browser from the terminal.

Every API request carries the stored token. A 401 or 403 clears the session
and sends the app back to its login screen; screens that need a login
redirect there first and come back after a successful login.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Diagnostics go to stderr so command output stays pipeable
		commands.SetLogger(logger.New(os.Stderr, logLevel, "console"))
	},
}

func init() {
	// .env files may set APPSHELL_* overrides (fails silently if files don't exist)
	_ = godotenv.Load(".env")

	defaultLevel := os.Getenv(EnvLogLevel)
	if defaultLevel == "" {
		defaultLevel = "warn"
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "Log level: debug, info, warn, error, off (or set "+EnvLogLevel+")")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("appshell version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectAppCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewOpenCmd())
	rootCmd.AddCommand(commands.NewDashCmd())
	rootCmd.AddCommand(commands.NewNotesCmd())
	rootCmd.AddCommand(commands.NewMoviesCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
