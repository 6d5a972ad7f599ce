package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"condish/internal/api"
	"condish/internal/config"
	"condish/internal/floorplan"
	"condish/internal/inspection"
)

func newRoomsCommand(ctx *commandContext) *cobra.Command {
	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage the property's room list",
	}
	roomsCmd.AddCommand(newRoomsListCommand(ctx))
	roomsCmd.AddCommand(newRoomsShowCommand(ctx))
	roomsCmd.AddCommand(newRoomsLoadCommand(ctx))
	return roomsCmd
}

func newRoomsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms with their inspection state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				view, err := client.Session(c)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, view.Rooms, func(out io.Writer, _ bool) {
					if len(view.Rooms) == 0 {
						fmt.Fprintln(out, "No rooms loaded")
						return
					}
					fmt.Fprintln(out, renderRoomTable(view.Rooms))
				})
			})
		},
	}
}

func newRoomsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <roomId>",
		Short: "Show a room and its inspection checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				room, err := client.Room(c, args[0])
				if err != nil {
					return err
				}
				return ctx.emit(cmd, room, func(out io.Writer, colorize bool) {
					printLines(out, renderSectionHeader(room.Name, colorize)...)
					printLines(out,
						renderField("ID", room.ID),
						renderField("Type", room.Type),
						renderField("Priority", room.Priority),
						renderField("References", fmt.Sprint(room.References)),
						renderField("Inspected", yesNo(room.Inspected)),
					)
					if len(room.Features) > 0 {
						printLines(out, renderField("Features", strings.Join(room.Features, ", ")))
					}
					printLines(out, "Checklist:")
					for _, item := range room.Checklist {
						printLines(out, "  - "+item)
					}
					for _, tip := range room.Tips {
						printLines(out, "  tip: "+tip)
					}
				})
			})
		},
	}
}

func newRoomsLoadCommand(ctx *commandContext) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a room list from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return errors.New("--file is required")
			}
			path, err := config.ExpandPath(file)
			if err != nil {
				return err
			}
			rooms, err := floorplan.LoadRoomFile(path)
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.LoadRooms(c, roomsRequest(rooms))
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Loaded %d rooms\n", len(resp.Rooms))
					fmt.Fprintln(out, renderPlainRooms(resp.Rooms))
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Room file (.yaml, .yml or .json)")
	return cmd
}

// roomsRequest sends already-ordered rooms, so no route is attached.
func roomsRequest(rooms []inspection.Room) api.RoomsRequest {
	req := api.RoomsRequest{Rooms: make([]api.RoomInput, 0, len(rooms))}
	for _, r := range rooms {
		req.Rooms = append(req.Rooms, api.RoomInput{
			ID:       r.ID,
			Name:     r.Name,
			Type:     string(r.Type),
			Priority: string(r.Priority),
			Features: r.Features,
			Tips:     r.Tips,
			Position: r.Position,
		})
	}
	return req
}

func newFloorPlanCommand(ctx *commandContext) *cobra.Command {
	floorPlanCmd := &cobra.Command{
		Use:   "floorplan",
		Short: "Floor-plan analysis",
	}
	floorPlanCmd.AddCommand(&cobra.Command{
		Use:   "parse <image>",
		Short: "Send a floor-plan image to the analyzer and load its rooms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.ParseFloorPlan(c, img)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Floor plan parsed: %d rooms\n", len(resp.Rooms))
					fmt.Fprintln(out, renderPlainRooms(resp.Rooms))
				})
			})
		},
	})
	floorPlanCmd.AddCommand(&cobra.Command{
		Use:   "layout",
		Short: "Print the 3D layout boxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Layout(c)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, _ bool) {
					g := newGrid(col("ID"), col("Name"), col("Colour"), col("Origin"), col("Size"))
					for _, r := range resp.Rooms {
						g.add(r.ID, r.Name, r.Color,
							fmt.Sprintf("%.1f,%.1f", r.Position.X, r.Position.Y),
							fmt.Sprintf("%.1fx%.1f", r.Position.Width, r.Position.Height))
					}
					fmt.Fprintln(out, g)
				})
			})
		},
	})
	return floorPlanCmd
}

func newReferencesCommand(ctx *commandContext) *cobra.Command {
	refsCmd := &cobra.Command{
		Use:   "references",
		Short: "Check-in reference images",
	}
	refsCmd.AddCommand(&cobra.Command{
		Use:   "add <roomId> <image>",
		Short: "Store a reference image for a room (check-in only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[1])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.AddReference(c, args[0], img)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer, _ bool) {
					fmt.Fprintf(out, "Room %s now has %d reference image(s)\n", resp.RoomID, resp.References)
				})
			})
		},
	})
	return refsCmd
}
