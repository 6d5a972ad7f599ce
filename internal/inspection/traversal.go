package inspection

// TraversalState is the traversal state machine position.
type TraversalState string

const (
	StateNotStarted TraversalState = "not_started"
	StateInProgress TraversalState = "in_progress"
	StateComplete   TraversalState = "complete"
)

// Traversal walks the registry in order. The cursor stays within
// [0, rooms]; a cursor equal to the room count means every room was visited.
type Traversal struct {
	state     TraversalState
	cursor    int
	inspected []string
	seen      map[string]struct{}
}

// State returns the current state.
func (t *Traversal) State() TraversalState {
	if t.state == "" {
		return StateNotStarted
	}
	return t.state
}

// Cursor returns the current registry position.
func (t *Traversal) Cursor() int {
	return t.cursor
}

// Start selects room 0.
func (t *Traversal) Start(rooms int) error {
	if rooms == 0 {
		return ErrNoRooms
	}
	if t.State() != StateNotStarted {
		return ErrAlreadyStarted
	}
	t.state = StateInProgress
	t.cursor = 0
	return nil
}

// MarkInspected records roomID as inspected once.
func (t *Traversal) MarkInspected(roomID string) bool {
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	if _, ok := t.seen[roomID]; ok {
		return false
	}
	t.seen[roomID] = struct{}{}
	t.inspected = append(t.inspected, roomID)
	return true
}

// Advance moves the cursor forward and completes the walk at the end.
func (t *Traversal) Advance(rooms int) {
	if t.cursor < rooms {
		t.cursor++
	}
	if t.cursor >= rooms {
		t.cursor = rooms
		t.state = StateComplete
	}
}

// GoTo moves the cursor to index, re-entering InProgress from Complete.
func (t *Traversal) GoTo(index, rooms int) error {
	if index < 0 || index >= rooms {
		return ErrIndexOutOfRange
	}
	t.cursor = index
	t.state = StateInProgress
	return nil
}

// Inspected returns the inspected room IDs in completion order.
func (t *Traversal) Inspected() []string {
	return append([]string(nil), t.inspected...)
}

// IsInspected reports whether roomID was completed.
func (t *Traversal) IsInspected(roomID string) bool {
	_, ok := t.seen[roomID]
	return ok
}

// Progress is inspected/rooms as a percentage.
func (t *Traversal) Progress(rooms int) float64 {
	if rooms == 0 {
		return 0
	}
	if len(t.inspected) == rooms {
		return 100
	}
	return float64(len(t.inspected)) / float64(rooms) * 100
}

func (t *Traversal) reset() {
	*t = Traversal{}
}
