package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:           "keycalc",
		Short:         "A four-function keypad calculator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(verbose, logFile)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", os.Getenv("KEYCALC_LOG_FILE"), "write logs to this file instead of stderr")

	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newLayoutCmd())
	rootCmd.AddCommand(newUICmd())
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}

func configureLogging(verbose int, logFile string) {
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbose, path)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
