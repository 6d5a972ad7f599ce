package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"condish/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogPath()
			if path == "" {
				return errors.New("file logging is disabled (paths.log_dir is empty)")
			}

			out := cmd.OutOrStdout()
			emit := func(line string) {
				if filter.Match(line) {
					fmt.Fprintln(out, line)
				}
			}

			// Read extra lines when filtering so the tail is not empty.
			window := lines
			if filter != (logs.Filter{}) {
				window = lines * 20
			}
			recent, offset, err := logs.Last(path, window)
			if err != nil {
				return err
			}
			matched := make([]string, 0, len(recent))
			for _, line := range recent {
				if filter.Match(line) {
					matched = append(matched, line)
				}
			}
			if len(matched) > lines {
				matched = matched[len(matched)-lines:]
			}
			for _, line := range matched {
				fmt.Fprintln(out, line)
			}

			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, 0, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&filter.SessionID, "session", "", "Only lines for this session ID")
	cmd.Flags().StringVar(&filter.RoomID, "room", "", "Only lines for this room ID")
	cmd.Flags().StringVar(&filter.EventType, "event", "", "Only lines with this event_type")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	return cmd
}
