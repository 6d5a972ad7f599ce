package floorplan

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"condish/internal/inspection"
	"condish/internal/services"
	"condish/internal/textutil"
)

var validate = validator.New()

// RawRoom is a room as reported by the floor-plan analyzer or a room file.
type RawRoom struct {
	ID                 string               `json:"id" yaml:"id" validate:"omitempty,max=64"`
	Name               string               `json:"name" yaml:"name" validate:"max=120"`
	Type               string               `json:"type" yaml:"type"`
	Position           *inspection.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Features           []string             `json:"features,omitempty" yaml:"features,omitempty"`
	InspectionPriority string               `json:"inspection_priority,omitempty" yaml:"priority,omitempty"`
	InspectionTips     []string             `json:"inspection_tips,omitempty" yaml:"tips,omitempty"`
}

// RawPlan is the analyzer's parsed floor plan.
type RawPlan struct {
	Rooms           []RawRoom `json:"rooms" yaml:"rooms" validate:"required,min=1,max=100,dive"`
	InspectionRoute []string  `json:"inspection_route,omitempty" yaml:"route,omitempty"`
	EntryPoint      string    `json:"entry_point,omitempty" yaml:"entry_point,omitempty"`
}

// Normalize validates plan and returns its rooms ready for the registry.
// Missing IDs become room_<position>, skipping IDs the plan already uses; names are title-cased, priorities and types
// are mapped onto the known enums, and rooms are ordered by the inspection
// route when one is given.
func Normalize(plan RawPlan) ([]inspection.Room, error) {
	if err := validate.Struct(plan); err != nil {
		return nil, services.Wrap(services.ErrValidation, "floorplan", "normalize", "invalid floor plan", err)
	}
	taken := make(map[string]struct{}, len(plan.Rooms))
	for _, raw := range plan.Rooms {
		id := strings.TrimSpace(raw.ID)
		if id == "" {
			continue
		}
		if _, dup := taken[id]; dup {
			return nil, services.Wrap(services.ErrValidation, "floorplan", "normalize", fmt.Sprintf("duplicate room id %q", id), nil)
		}
		taken[id] = struct{}{}
	}
	rooms := make([]inspection.Room, 0, len(plan.Rooms))
	for i, raw := range plan.Rooms {
		id := strings.TrimSpace(raw.ID)
		for n := i + 1; id == ""; n++ {
			candidate := fmt.Sprintf("room_%d", n)
			if _, used := taken[candidate]; !used {
				id = candidate
				taken[id] = struct{}{}
			}
		}

		roomType := inspection.ParseRoomType(raw.Type)
		name := textutil.CollapseSpace(raw.Name)
		if name == "" {
			name = textutil.TitleCase(string(roomType))
			if roomType == inspection.RoomOther {
				name = fmt.Sprintf("Room %d", i+1)
			}
		}
		room := inspection.Room{
			ID:       id,
			Name:     name,
			Type:     roomType,
			Priority: inspection.ParsePriority(raw.InspectionPriority),
			Features: cleanList(raw.Features),
			Tips:     cleanList(raw.InspectionTips),
		}
		if raw.Position != nil {
			pos := *raw.Position
			room.Position = &pos
		}
		rooms = append(rooms, room)
	}
	return OrderByRoute(rooms, plan.InspectionRoute), nil
}

// OrderByRoute puts the rooms named in route first, in route order. Route
// entries match room IDs or (case-insensitively) room names. Rooms missing
// from the route keep their relative order after the routed ones.
func OrderByRoute(rooms []inspection.Room, route []string) []inspection.Room {
	if len(route) == 0 {
		return rooms
	}
	placed := make([]bool, len(rooms))
	ordered := make([]inspection.Room, 0, len(rooms))
	for _, step := range route {
		key := textutil.NormalizeField(step)
		for i, room := range rooms {
			if placed[i] {
				continue
			}
			if room.ID == strings.TrimSpace(step) || textutil.NormalizeField(room.Name) == key {
				placed[i] = true
				ordered = append(ordered, room)
				break
			}
		}
	}
	for i, room := range rooms {
		if !placed[i] {
			ordered = append(ordered, room)
		}
	}
	return ordered
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = textutil.CollapseSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
