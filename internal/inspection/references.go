package inspection

import "time"

// ReferenceStore keeps the check-in baseline images per room. It is append
// only; check-out never mutates it.
type ReferenceStore struct {
	sets map[string]*ReferenceImageSet
}

// Add appends img to the room's set and stamps the capture time.
func (s *ReferenceStore) Add(roomID string, img Image, now time.Time) int {
	if s.sets == nil {
		s.sets = make(map[string]*ReferenceImageSet)
	}
	set, ok := s.sets[roomID]
	if !ok {
		set = &ReferenceImageSet{}
		s.sets[roomID] = set
	}
	set.Images = append(set.Images, Image{Data: append([]byte(nil), img.Data...), MimeType: img.MimeType})
	set.CapturedAt = now
	return len(set.Images)
}

// Images returns the room's reference images in capture order.
func (s *ReferenceStore) Images(roomID string) []Image {
	set, ok := s.sets[roomID]
	if !ok {
		return nil
	}
	return append([]Image(nil), set.Images...)
}

// Count reports how many reference images a room has.
func (s *ReferenceStore) Count(roomID string) int {
	if set, ok := s.sets[roomID]; ok {
		return len(set.Images)
	}
	return 0
}

// CapturedAt returns when the room's last reference image was added.
func (s *ReferenceStore) CapturedAt(roomID string) (time.Time, bool) {
	if set, ok := s.sets[roomID]; ok {
		return set.CapturedAt, true
	}
	return time.Time{}, false
}

func (s *ReferenceStore) clear() {
	s.sets = nil
}
