package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"condish/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, session and preflight status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				var status api.DaemonStatus
				var err error
				if refresh {
					status, err = client.RefreshStatus(c)
				} else {
					status, err = client.Status(c)
				}
				if err != nil {
					return err
				}
				return ctx.emit(cmd, status, func(out io.Writer, colorize bool) {
					renderDaemonStatus(out, status, colorize)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Rerun preflight checks before reporting")
	return cmd
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the inspection session",
	}
	sessionCmd.AddCommand(newSessionShowCommand(ctx))
	sessionCmd.AddCommand(newSessionResetCommand(ctx))
	sessionCmd.AddCommand(newSessionModeCommand(ctx))
	return sessionCmd
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the whole session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				view, err := client.Session(c)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, view, func(out io.Writer, colorize bool) {
					renderSession(out, view, colorize)
				})
			})
		},
	}
}

func newSessionResetCommand(ctx *commandContext) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the inspection (or the whole session with --full)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := "inspection"
			if full {
				scope = "full"
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Reset(c, scope)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Session %s reset (%s)\n", resp.SessionID, resp.Scope)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Discard rooms, references, deposit and lease as well")
	return cmd
}

func newSessionModeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mode <checkin|checkout>",
		Short: "Switch between check-in and check-out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				view, err := client.SetMode(c, args[0])
				if err != nil {
					return err
				}
				return ctx.emit(cmd, view, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Mode set to %s\n", view.Mode)
				})
			})
		},
	}
}
