package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/brizzai/realtor-cli/internal/app"
	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/auth/guard"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()
	Execute()
}

// cfg is loaded once the flags are parsed
var cfg *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "realtor",
	Short: "Virtual Realtor client",
	Long: `realtor talks to the Virtual Realtor backend.
It signs you in, chats with the assistant, manages saved properties and
search preferences, curates the knowledge base and hosts the web consoles.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
}

func setup(cmd *cobra.Command, _ []string) error {
	if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
		pterm.Info.Println(config.GetVersionInfo())
		os.Exit(0)
	}

	var err error
	if cfg, err = config.Load(cmd.Flags()); err != nil {
		return err
	}
	return logger.InitLogger(&cfg.Logging)
}

// build fills targets from the dependency graph
func build(targets ...any) (func(), error) {
	return app.Populate(cfg, targets...)
}

// signedIn builds targets and fails when nobody is signed in
func signedIn(cmd *cobra.Command, targets ...any) (func(), error) {
	var gate *auth.Gate
	stop, err := build(append(targets, &gate)...)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireCLI(cmd.Context(), gate); err != nil {
		stop()
		return nil, err
	}
	return stop, nil
}
