// Package main provides the clay CLI, an interactive shell over the claycmd command parser.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"claycmd/internal/app"
	"claycmd/internal/config"
	"claycmd/internal/logger"
	"claycmd/internal/records"
	"claycmd/internal/version"
)

var (
	v   = config.NewViper()
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clay",
	Short: "Clay - typed command shell",
	Long: `Clay is a shell for typed commands. Arguments are parsed into candidate sets,
so a single line can fan out into several command executions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell, // Default behavior is to run the interactive shell
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell mode",
	RunE:  runShell,
}

var execCmd = &cobra.Command{
	Use:   "exec <command line...>",
	Short: "Execute a single command line and print its results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return a.Shell.ProcessInput(strings.Join(args, " "))
	},
}

var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Print the loaded records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		scope, err := a.Records()
		if err != nil {
			return err
		}
		records.Table(cmd.OutOrStdout(), scope)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyLogLevel, "", "Set log level (debug|info|warn|error) [default: info]")
	flags.String(config.KeyLogFile, "", "Write logs to file instead of stderr")
	flags.Bool(config.KeyTestMode, false, "Run in deterministic test mode")
	flags.Int(config.KeyPermission, 0, "Permission ceiling for registered commands")
	flags.Int(config.KeyMaxExecutions, 0, "Maximum executions a single line may expand to")
	flags.String(config.KeyRenderMode, "", "Help and output rendering (plain|markdown)")
	flags.String(config.KeyRecords, "", "YAML file with the records custom fields select from")
	flags.String(config.KeyHistoryFile, "", "Shell history file")
	flags.String(config.KeyUser, "", "User name passed to commands")

	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flags: %v\n", err)
		os.Exit(1)
	}

	versionCmd.Flags().Bool("detailed", false, "Show detailed build information")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(scopeCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("Failed to load .env", "error", err)
	}

	var err error
	cfg, err = config.Load(v)
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile, cfg.TestMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	logger.Info("Starting Clay", "version", version.Version)

	a, err := app.New(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s - typed command shell\n", version.GetFormattedVersion())
	fmt.Fprintln(cmd.OutOrStdout(), `Type "help" for commands or "exit" to quit.`)
	return a.Shell.Run(cfg.HistoryFile)
}
