package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/intent"
)

func interpretCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interpret <message>",
		Short: "Print the intent a message is read as",
		Long: `Interpret a message without touching the ledger and print its
envelope as JSON, the same form chat integrations receive.`,
		Example: `  gastosctl interpret "gasté 2000 en combustible"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only the timezone matters here, so the rest is not validated.
			in := intent.NewInterpreter(
				intent.WithClock(cli.Clock(config.Load())),
				intent.WithLogger(a.logger.Slog()),
			)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(intent.Encode(in.Interpret(strings.Join(args, " "))))
		},
	}
}
