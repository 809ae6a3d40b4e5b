package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information (set by build)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// cliSettings holds configctl's own preferences — the log level —
// bound through viper so it can come from the --log-level flag or a
// CONFIGCTL_-prefixed environment variable. This
// is deliberately separate from the composer's own source/merge
// logic: viper configures the tool, it never touches the trees the
// tool inspects.
var cliSettings = viper.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "configctl",
	Short: "Layered configuration inspection and validation tool",
	Long: `configctl composes file, environment, and remote configuration
sources the same way a long-running service's config composer does,
then lets you validate, inspect, or watch the merged result from the
command line.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

func init() {
	cliSettings.SetEnvPrefix("CONFIGCTL")
	cliSettings.AutomaticEnv()
	cliSettings.SetDefault("log-level", "info")

	rootCmd.PersistentFlags().String("log-level", "info", "configctl's own log level: debug, info, warn, error")
	_ = cliSettings.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(watchCmd)
}
