package floorplan

import "condish/internal/inspection"

var baseChecklist = []string{"Walls", "Ceiling", "Floor"}

var typeChecklist = map[inspection.RoomType][]string{
	inspection.RoomBathroom: {"Toilet", "Sink", "Shower"},
	inspection.RoomKitchen:  {"Cabinets", "Countertops", "Appliances"},
	inspection.RoomBedroom:  {"Windows", "Closet"},
	inspection.RoomLiving:   {"Windows", "Outlets"},
}

// Checklist returns the items to inspect in room: the base items followed by
// the items specific to its type.
func Checklist(room inspection.Room) []string {
	items := append([]string(nil), baseChecklist...)
	return append(items, typeChecklist[room.Type]...)
}
