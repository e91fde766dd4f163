package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/darkclainer/wordmeaning/pkg/config"
)

const codeError = 1

func exitf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// app holds state shared by subcommands
type app struct {
	conf   *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	configFlags := config.NewFlagSet("wordmeaning")
	rootCommand := &cobra.Command{
		Use:           "wordmeaning",
		Short:         "Look up word meanings in Wiktionary or in local dictionary",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadTool(configFlags)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			zapConf, err := conf.ZapConf()
			if err != nil {
				return err
			}
			logger, err := zapConf.Build()
			if err != nil {
				return fmt.Errorf("failed to instantiate logger: %w", err)
			}
			a.conf = conf
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCommand.PersistentFlags().AddFlagSet(configFlags)
	rootCommand.AddCommand(
		newLookupCommand(a),
		newParseCommand(a),
		newImportCommand(a),
		newWordsCommand(a),
	)
	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		exitf(codeError, "%s\n", err)
	}
}
