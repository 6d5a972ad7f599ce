package inspection

import (
	"fmt"
	"strings"
	"time"
)

// Ledger holds the active damage findings and the findings a human ignored.
// A finding identity is never in both sets.
type Ledger struct {
	active  []Finding
	ignored []IgnoredFinding
}

// RecordRoomScan supersedes every active finding of room with candidates.
// Candidates are deduplicated by identity (the higher severity wins) and
// candidates whose identity is currently ignored for the room stay ignored.
// Returns the number of findings inserted.
func (l *Ledger) RecordRoomScan(room Room, candidates []DamageCandidate, now time.Time) int {
	kept := l.active[:0:0]
	for _, f := range l.active {
		if f.RoomID != room.ID {
			kept = append(kept, f)
		}
	}

	ignored := make(map[Identity]struct{})
	for _, f := range l.ignored {
		if f.RoomID == room.ID {
			ignored[f.Identity()] = struct{}{}
		}
	}

	deduped := DedupeCandidates(room.ID, candidates)
	inserted := 0
	for _, c := range deduped {
		if _, skip := ignored[c.Identity(room.ID)]; skip {
			continue
		}
		kept = append(kept, Finding{
			Type:        strings.TrimSpace(c.Type),
			Severity:    c.Severity,
			Location:    strings.TrimSpace(c.Location),
			Description: strings.TrimSpace(c.Description),
			RoomID:      room.ID,
			RoomName:    room.Name,
			CapturedAt:  now,
			HasImage:    c.HasImage,
		})
		inserted++
	}
	l.active = kept
	return inserted
}

// Ignore moves the active finding matching id to the ignored set.
func (l *Ledger) Ignore(id Identity, reason string, now time.Time) (IgnoredFinding, error) {
	id = NewIdentity(id.Type, id.Location, id.RoomID)
	for i, f := range l.active {
		if f.Identity() != id {
			continue
		}
		entry := IgnoredFinding{Finding: f, Reason: strings.TrimSpace(reason), IgnoredAt: now}
		l.active = append(l.active[:i:i], l.active[i+1:]...)
		l.ignored = append(l.ignored, entry)
		return entry, nil
	}
	return IgnoredFinding{}, fmt.Errorf("%w: %s at %q in room %q", ErrFindingNotFound, id.Type, id.Location, id.RoomID)
}

// Restore moves the ignored finding at index back to the active set, replacing
// any active finding that has since taken the same identity.
func (l *Ledger) Restore(index int) (Finding, error) {
	if index < 0 || index >= len(l.ignored) {
		return Finding{}, fmt.Errorf("%w: ignored index %d (have %d)", ErrIndexOutOfRange, index, len(l.ignored))
	}
	f := l.ignored[index].Finding
	l.ignored = append(l.ignored[:index:index], l.ignored[index+1:]...)
	id := f.Identity()
	for i := range l.active {
		if l.active[i].Identity() == id {
			l.active[i] = f
			return f, nil
		}
	}
	l.active = append(l.active, f)
	return f, nil
}

// Remove deletes the active finding at index. There is no recovery.
func (l *Ledger) Remove(index int) (Finding, error) {
	if index < 0 || index >= len(l.active) {
		return Finding{}, fmt.Errorf("%w: finding index %d (have %d)", ErrIndexOutOfRange, index, len(l.active))
	}
	f := l.active[index]
	l.active = append(l.active[:index:index], l.active[index+1:]...)
	return f, nil
}

// Active returns a copy of the active findings.
func (l *Ledger) Active() []Finding {
	return append([]Finding(nil), l.active...)
}

// Ignored returns a copy of the ignored findings.
func (l *Ledger) Ignored() []IgnoredFinding {
	return append([]IgnoredFinding(nil), l.ignored...)
}

// Len reports the number of active findings.
func (l *Ledger) Len() int {
	return len(l.active)
}

func (l *Ledger) clear() {
	l.active = nil
	l.ignored = nil
}

// DedupeCandidates collapses candidates sharing an identity within room,
// keeping first-seen order and the highest severity.
func DedupeCandidates(roomID string, candidates []DamageCandidate) []DamageCandidate {
	out := make([]DamageCandidate, 0, len(candidates))
	seen := make(map[Identity]int, len(candidates))
	for _, c := range candidates {
		if c.Severity == "" {
			c.Severity = SeverityModerate
		}
		id := c.Identity(roomID)
		if i, ok := seen[id]; ok {
			if c.Severity.Rank() > out[i].Severity.Rank() {
				out[i] = c
			}
			continue
		}
		seen[id] = len(out)
		out = append(out, c)
	}
	return out
}
