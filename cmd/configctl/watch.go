package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticeforge/configcore/internal/composer"
	"github.com/latticeforge/configcore/pkg/configtree"
)

var (
	watchFormat   string
	watchEnv      string
	watchInterval time.Duration
)

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "Config format override: yaml, json, toml, or ini (auto-detected from extension if not specified)")
	watchCmd.Flags().StringVar(&watchEnv, "env-prefix", "", "Environment variable prefix to layer on top of the given files")
	watchCmd.Flags().DurationVar(&watchInterval, "poll-interval", time.Second, "Polling fallback interval for sources fsnotify cannot watch")
}

var watchCmd = &cobra.Command{
	Use:   "watch <config-file...>",
	Short: "Compose the given files and print a line every time the merged result changes",
	Long: `Compose the given configuration files, then watch them for
changes (fsnotify where possible, polling as a fallback) and print a
timestamped "reloaded at" line every time a reload actually changes
the merged tree.
Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := buildComposer(args, watchFormat, watchEnv)
	if err != nil {
		return err
	}
	defer c.Dispose()

	c.OnReload(func(old, newTree *configtree.Value) {
		fmt.Fprintf(cmd.OutOrStdout(), "reloaded at %s\n", time.Now().Format(time.RFC3339))
	})

	stop, err := c.Watch(cliCtx(), composer.WatchOptions{
		Paths:        args,
		PollInterval: watchInterval,
	})
	if err != nil {
		return fmt.Errorf("starting watch: %w", err)
	}
	defer stop()

	fmt.Fprintln(cmd.OutOrStdout(), "watching, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}
