// Command gastosctl talks to the assistant from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/log"
)

// app carries what every subcommand shares once the root has run.
type app struct {
	logLevel string
	logger   *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gastosctl",
		Short: "💸 Conversational expense assistant",
		Long: `gastosctl interprets informal Spanish messages about money
("gasté 20 mil en almuerzo", "dame el reporte") and runs them against
the configured ledger.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cli.LoadEnvFile()
			level := a.logLevel
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			cfg := log.DefaultConfig()
			cfg.Level = log.ParseLevel(level)
			cfg.Component = log.ComponentCLI
			cfg.Output = cmd.ErrOrStderr()
			a.logger = log.New(cfg)
			log.SetDefault(a.logger)
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	root.AddCommand(interpretCmd(a))
	root.AddCommand(chatCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(sendCmd(a))
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
