package floorplan

import "condish/internal/inspection"

var typeColors = map[inspection.RoomType]string{
	inspection.RoomLiving:   "#4CAF50",
	inspection.RoomBedroom:  "#2196F3",
	inspection.RoomBathroom: "#00BCD4",
	inspection.RoomKitchen:  "#FF9800",
	inspection.RoomHallway:  "#9E9E9E",
}

const defaultColor = "#607D8B"

// LayoutRoom is one box of the 3D floor-plan view.
type LayoutRoom struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Type      inspection.RoomType `json:"type"`
	Color     string              `json:"color"`
	Position  inspection.Position `json:"position"`
	Inspected bool                `json:"inspected"`
}

// Color returns the display colour for a room type.
func Color(t inspection.RoomType) string {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return defaultColor
}

// Layout builds the 3D view. Rooms without a position are placed on a
// four-column grid of unit cells below the positioned ones.
func Layout(rooms []inspection.RoomView) []LayoutRoom {
	out := make([]LayoutRoom, 0, len(rooms))
	maxY := 0.0
	for _, r := range rooms {
		if r.Position != nil && r.Position.Y+r.Position.Height > maxY {
			maxY = r.Position.Y + r.Position.Height
		}
	}
	slot := 0
	for _, r := range rooms {
		var pos inspection.Position
		if r.Position != nil {
			pos = *r.Position
		} else {
			pos = inspection.Position{X: float64(slot % 4), Y: maxY + float64(slot/4), Width: 1, Height: 1}
			slot++
		}
		out = append(out, LayoutRoom{
			ID:        r.ID,
			Name:      r.Name,
			Type:      r.Type,
			Color:     Color(r.Type),
			Position:  pos,
			Inspected: r.Inspected,
		})
	}
	return out
}
