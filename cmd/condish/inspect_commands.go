package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"condish/internal/api"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Walk the rooms and record damage",
	}
	inspectCmd.AddCommand(newRoomStepCommand(ctx, "start", "Begin the inspection at the first room", cobra.NoArgs,
		func(c context.Context, client *api.Client, _ []string) (api.RoomResponse, error) {
			return client.Start(c)
		}))
	inspectCmd.AddCommand(newRoomStepCommand(ctx, "goto <roomId>", "Move to a specific room", cobra.ExactArgs(1),
		func(c context.Context, client *api.Client, args []string) (api.RoomResponse, error) {
			return client.GoTo(c, args[0])
		}))
	inspectCmd.AddCommand(newRoomStepCommand(ctx, "skip", "Leave the current room without findings", cobra.NoArgs,
		func(c context.Context, client *api.Client, _ []string) (api.RoomResponse, error) {
			return client.Skip(c)
		}))
	inspectCmd.AddCommand(newInspectCompleteCommand(ctx))
	inspectCmd.AddCommand(newInspectScanCommand(ctx))
	inspectCmd.AddCommand(newInspectDismissCommand(ctx))
	return inspectCmd
}

func newRoomStepCommand(ctx *commandContext, use, short string, args cobra.PositionalArgs,
	step func(context.Context, *api.Client, []string) (api.RoomResponse, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := step(c, client, args)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Room: %s (%s)\n", resp.Room.Name, resp.Room.ID)
				})
			})
		},
	}
}

func newInspectCompleteCommand(ctx *commandContext) *cobra.Command {
	var none bool
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Finalize the current room with its buffered candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.CompleteRequest
			if none {
				req.Findings = []api.Candidate{}
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Complete(c, req)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Completed %s (%s)\n", resp.Room.Name, resp.Room.ID)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&none, "none", false, "Record the room as undamaged, discarding buffered candidates")
	return cmd
}

func newInspectScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>",
		Short: "Analyze a photo of the current room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Scan(c, img)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, colorize bool) {
					kind := statusOK
					if resp.Status != "ok" {
						kind = statusWarn
					}
					message := fmt.Sprintf("%d accepted, %d buffered", resp.Accepted, resp.Buffered)
					if resp.Message != "" {
						message = resp.Message
					}
					printLines(out, renderStatusLine("Scan "+resp.Status, kind, message, colorize))
					if resp.Advisory != "" {
						printLines(out, renderStatusLine("Advisory", statusWarn, resp.Advisory, colorize))
					}
				})
			})
		},
	}
}

func newInspectDismissCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <index>",
		Short: "Drop a buffered candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				if err := client.Dismiss(c, index); err != nil {
					return err
				}
				return ctx.emit(cmd, map[string]int{"dismissed": index}, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Dismissed candidate %d\n", index)
				})
			})
		},
	}
}
