package inspection

import (
	"fmt"
	"strings"
)

// Registry is the ordered list of rooms for the current property.
type Registry struct {
	rooms []Room
	index map[string]int
}

// Load replaces the registry wholesale. Rooms need a non-empty, unique ID.
// On error the registry is left unchanged.
func (r *Registry) Load(rooms []Room) error {
	index := make(map[string]int, len(rooms))
	loaded := make([]Room, 0, len(rooms))
	for i, room := range rooms {
		room.ID = strings.TrimSpace(room.ID)
		if room.ID == "" {
			return fmt.Errorf("%w: room %d has no id", ErrInvalidRooms, i)
		}
		if _, dup := index[room.ID]; dup {
			return fmt.Errorf("%w: duplicate room id %q", ErrInvalidRooms, room.ID)
		}
		if strings.TrimSpace(room.Name) == "" {
			room.Name = room.ID
		}
		if room.Type == "" {
			room.Type = RoomOther
		}
		if room.Priority == "" {
			room.Priority = PriorityNormal
		}
		room.Features = append([]string(nil), room.Features...)
		room.Tips = append([]string(nil), room.Tips...)
		if room.Position != nil {
			pos := *room.Position
			room.Position = &pos
		}
		index[room.ID] = len(loaded)
		loaded = append(loaded, room)
	}
	r.rooms = loaded
	r.index = index
	return nil
}

// Get returns the room with id.
func (r *Registry) Get(id string) (Room, error) {
	i, ok := r.index[id]
	if !ok {
		return Room{}, fmt.Errorf("%w: %q", ErrRoomNotFound, id)
	}
	return r.rooms[i], nil
}

// IndexOf returns the registry position of id.
func (r *Registry) IndexOf(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// At returns the room at position i.
func (r *Registry) At(i int) (Room, bool) {
	if i < 0 || i >= len(r.rooms) {
		return Room{}, false
	}
	return r.rooms[i], true
}

// Len reports the number of rooms.
func (r *Registry) Len() int {
	return len(r.rooms)
}

// Rooms returns a copy of the ordered room list.
func (r *Registry) Rooms() []Room {
	return append([]Room(nil), r.rooms...)
}

func (r *Registry) clear() {
	r.rooms = nil
	r.index = nil
}
