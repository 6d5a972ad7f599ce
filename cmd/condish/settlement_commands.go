package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"condish/internal/api"
	"condish/internal/config"
	"condish/internal/fileutil"
	"condish/internal/report"
	"condish/internal/textutil"
)

func newDepositCommand(ctx *commandContext) *cobra.Command {
	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Security deposit",
	}
	depositCmd.AddCommand(&cobra.Command{
		Use:   "set <amount> [currency]",
		Short: "Record the deposit manually (overrides a lease-extracted one)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			var currency string
			if len(args) == 2 {
				currency = strings.ToUpper(strings.TrimSpace(args[1]))
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				dep, err := client.SetDeposit(c, amount, currency)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, dep, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Deposit set to %s\n", report.FormatMoney(dep.Amount, dep.Currency))
				})
			})
		},
	})
	return depositCmd
}

func newLeaseCommand(ctx *commandContext) *cobra.Command {
	leaseCmd := &cobra.Command{
		Use:   "lease",
		Short: "Lease documents",
	}
	leaseCmd.AddCommand(&cobra.Command{
		Use:   "extract <file>",
		Short: "Extract deposit and parties from a lease document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readImage(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.ExtractLease(c, doc)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, colorize bool) {
					l := resp.Lease
					printLines(out, renderSectionHeader("Lease", colorize)...)
					printLines(out, renderField("Deposit", report.FormatMoney(l.DepositAmount, l.DepositCurrency)))
					for _, field := range []struct{ label, value string }{
						{"Tenant", l.TenantName},
						{"Landlord", l.LandlordName},
						{"Address", l.PropertyAddress},
						{"Start", l.LeaseStart},
						{"End", l.LeaseEnd},
					} {
						if field.value != "" {
							printLines(out, renderField(field.label, field.value))
						}
					}
					if resp.DepositApplied {
						printLines(out, renderStatusLine("Deposit", statusOK, "applied to the session", colorize))
					} else {
						printLines(out, renderStatusLine("Deposit", statusInfo, "kept the manually entered deposit", colorize))
					}
				})
			})
		},
	})
	return leaseCmd
}

func newQuoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Request a repair estimate for the active findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				quote, err := client.Quote(c)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, quote, func(out io.Writer, _ bool) {
					if len(quote.LineItems) > 0 {
						g := newGrid(col("Kind"), col("Description"), num("Total"))
						for _, line := range quote.LineItems {
							g.add(line.Kind, line.Description, report.FormatMoney(line.Total, quote.Currency))
						}
						fmt.Fprintln(out, g)
					}
					fmt.Fprintf(out, "Repair estimate: %s\n", report.FormatMoney(quote.GrandTotal, quote.Currency))
				})
			})
		},
	}
}

func newSettlementCommand(ctx *commandContext) *cobra.Command {
	settlementCmd := &cobra.Command{
		Use:   "settlement",
		Short: "Deposit settlement",
	}
	show := func(recalc bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				var s api.Settlement
				var err error
				if recalc {
					s, err = client.Recalculate(c)
				} else {
					s, err = client.Settlement(c)
				}
				if err != nil {
					return err
				}
				return ctx.emit(cmd, s, func(out io.Writer, colorize bool) {
					renderSettlement(out, s, colorize)
				})
			})
		}
	}
	settlementCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the settlement, computing it when inputs changed",
		Args:  cobra.NoArgs,
		RunE:  show(false),
	})
	settlementCmd.AddCommand(&cobra.Command{
		Use:   "recalc",
		Short: "Recompute the settlement from scratch",
		Args:  cobra.NoArgs,
		RunE:  show(true),
	})
	return settlementCmd
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Settlement reports",
	}
	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Download the XLSX settlement report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				data, err := client.Report(c)
				if err != nil {
					return err
				}
				target, err := reportPath(c, client, cfg, outPath)
				if err != nil {
					return err
				}
				if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				payload := map[string]any{"path": target, "bytes": len(data)}
				return ctx.emit(cmd, payload, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Wrote report to %s\n", target)
				})
			})
		},
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file (defaults to the report directory)")
	reportCmd.AddCommand(exportCmd)
	reportCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the plain-text session summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				summary, err := client.ReportText(c)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, map[string]string{"summary": summary}, func(out io.Writer, _ bool) {
					fmt.Fprint(out, summary)
				})
			})
		},
	})
	return reportCmd
}

func reportPath(c context.Context, client *api.Client, cfg *config.Config, outPath string) (string, error) {
	if outPath = strings.TrimSpace(outPath); outPath != "" {
		return config.ExpandPath(outPath)
	}
	view, err := client.Session(c)
	if err != nil {
		return "", err
	}
	name := textutil.ReportFileName(view.SessionID, time.Now())
	return filepath.Join(cfg.Paths.ReportDir, name), nil
}
