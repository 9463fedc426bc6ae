package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/log"
)

func exportCmd(a *app) *cobra.Command {
	var (
		format   string
		from, to string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write ledger entries as CSV or JSON",
		Long: `Export the entries in a date range. The range defaults to the current
month so far and the file to gastos_<date>.<ext> in the working directory.
Use --out - to write to standard output.`,
		Example: `  gastosctl export --format json --from 2025-01-01 --to 2025-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			today := core.DateOf(cli.Clock(cfg)())
			start, end, err := dateRange(from, to, today)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, err := cli.OpenBackend(ctx, cfg, a.logger)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			entries, err := res.Store.List(ctx, start, end)
			if err != nil {
				return fmt.Errorf("list expenses: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				if out == "" {
					out = export.FileName(f, today)
				}
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, entries); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "Export written",
				log.FieldExportRef, out,
				log.FieldCount, len(entries),
				log.FieldRangeStart, start.String(),
				log.FieldRangeEnd, end.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}

// dateRange parses optional bounds; missing ones default to the month of
// today so far.
func dateRange(from, to string, today core.Date) (core.Date, core.Date, error) {
	start, end := today.MonthStart(), today
	var err error
	if from != "" {
		if start, err = core.ParseDate(from); err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("invalid --from %q: %w", from, err)
		}
	}
	if to != "" {
		if end, err = core.ParseDate(to); err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("invalid --to %q: %w", to, err)
		}
	}
	if start.After(end.Time) {
		return core.Date{}, core.Date{}, fmt.Errorf("--from %s is after --to %s", start, end)
	}
	return start, end, nil
}
