package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"condish/internal/api"
)

func newFindingsCommand(ctx *commandContext) *cobra.Command {
	findingsCmd := &cobra.Command{
		Use:   "findings",
		Short: "Review recorded damage",
	}
	findingsCmd.AddCommand(newFindingsListCommand(ctx))
	findingsCmd.AddCommand(newFindingsIgnoreCommand(ctx))
	findingsCmd.AddCommand(newFindingIndexCommand(ctx, "restore <index>", "Move an ignored finding back to the active list",
		func(c context.Context, client *api.Client, index int) (api.Finding, error) {
			return client.Restore(c, index)
		}, "Restored"))
	findingsCmd.AddCommand(newFindingIndexCommand(ctx, "remove <index>", "Delete an active finding",
		func(c context.Context, client *api.Client, index int) (api.Finding, error) {
			return client.Remove(c, index)
		}, "Removed"))
	return findingsCmd
}

func newFindingsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active and ignored findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				view, err := client.Session(c)
				if err != nil {
					return err
				}
				payload := struct {
					Findings []api.Finding        `json:"findings"`
					Ignored  []api.IgnoredFinding `json:"ignored"`
				}{view.Findings, view.Ignored}
				return ctx.emit(cmd, payload, func(out io.Writer, colorize bool) {
					printLines(out, renderSectionHeader("Active findings", colorize)...)
					if len(view.Findings) == 0 {
						printLines(out, "  none")
					} else {
						fmt.Fprintln(out, renderFindingTable(view.Findings))
					}
					if len(view.Ignored) > 0 {
						printLines(out, renderSectionHeader("Ignored", colorize)...)
						fmt.Fprintln(out, renderIgnoredTable(view.Ignored))
					}
				})
			})
		},
	}
}

func newFindingsIgnoreCommand(ctx *commandContext) *cobra.Command {
	var req api.IgnoreRequest
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Mark a finding as pre-existing or not chargeable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				entry, err := client.Ignore(c, req)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, entry, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Ignored %s at %s in %s\n", entry.Type, entry.Location, entry.RoomName)
				})
			})
		},
	}
	cmd.Flags().StringVar(&req.Type, "type", "", "Damage type")
	cmd.Flags().StringVar(&req.Location, "location", "", "Damage location")
	cmd.Flags().StringVar(&req.RoomID, "room", "", "Room ID")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "Why the finding is ignored")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func newFindingIndexCommand(ctx *commandContext, use, short string,
	action func(context.Context, *api.Client, int) (api.Finding, error), verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				finding, err := action(c, client, index)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, finding, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "%s %s at %s in %s\n", verb, finding.Type, finding.Location, finding.RoomName)
				})
			})
		},
	}
}
