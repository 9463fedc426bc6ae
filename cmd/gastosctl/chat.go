package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gastos/internal/assistant"
	"gastos/internal/cli"
	"gastos/internal/log"
)

func chatCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant line by line",
		Long: `Read messages from standard input, one per line, and answer each
against the configured ledger. Type "salir" to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			res, err := cli.OpenBackend(ctx, cfg, a.logger)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			svc := cli.NewAssistant(res, cfg, a.logger)
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if ctx.Err() != nil {
					return nil
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if isQuit(line) {
					return nil
				}

				reply, err := svc.Handle(ctx, line)
				if err != nil {
					a.logger.ErrorContext(ctx, "Message failed", log.FieldError, err)
					fmt.Fprintln(out, assistant.ErrorText(err))
					continue
				}
				if asJSON {
					if err := enc.Encode(reply); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(out, reply.Text)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each full reply as JSON")
	return cmd
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "salir", "exit", "quit":
		return true
	}
	return false
}
