// Package main is the admin CLI: schema setup, event import, keyword
// suggestion, question previews and operator tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openhome-school/backend/cmd/adm/commands"
	"github.com/openhome-school/backend/internal/config"
	"github.com/openhome-school/backend/internal/observability"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// keep stdout for command output
	logger := observability.NewLogger("error")
	defer logger.Sync()

	env := commands.NewEnv(cfg, logger)
	defer env.Close()

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Openhome quiz administration tool",
		Long: `Openhome quiz administration tool

Applies the database schema, imports timeline events, fills in missing
event keywords, previews generated questions and mints bearer tokens.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&env.Verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if env.Verbose {
			env.Logger = observability.NewLogger("debug")
		}
	}

	rootCmd.AddCommand(commands.MigrateCommand(env))
	rootCmd.AddCommand(commands.EventCommands(env))
	rootCmd.AddCommand(commands.QuizCommands(env))
	rootCmd.AddCommand(commands.TokenCommand(env))

	if err := rootCmd.Execute(); err != nil {
		env.Close()
		os.Exit(1)
	}
}
