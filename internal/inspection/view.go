package inspection

import "time"

// RoomView is a room plus its per-session status.
type RoomView struct {
	Room
	ReferenceCount int
	Inspected      bool
	Current        bool
}

// OpStates groups the collaborator-dependent operation states.
type OpStates struct {
	Scan       OpState
	Quote      OpState
	Settlement OpState
	Lease      OpState
}

// View is a consistent copy of the whole session.
type View struct {
	SessionID   string
	Mode        Mode
	Generation  uint64
	CreatedAt   time.Time
	State       TraversalState
	Cursor      int
	CurrentRoom *Room
	Rooms       []RoomView
	Inspected   []string
	Progress    float64
	Findings    []Finding
	Ignored     []IgnoredFinding
	Buffer      []DamageCandidate
	Advisory    string
	Deposit     *Deposit
	Quote       *RepairQuote
	Lease       *LeaseInfo
	Settlement  *Settlement
	Ops         OpStates
}

// View returns a snapshot of the session for presentation.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := View{
		SessionID:  s.id,
		Mode:       s.mode,
		Generation: s.generation,
		CreatedAt:  s.createdAt,
		State:      s.traversal.State(),
		Cursor:     s.traversal.Cursor(),
		Inspected:  s.traversal.Inspected(),
		Progress:   s.traversal.Progress(s.registry.Len()),
		Findings:   s.ledger.Active(),
		Ignored:    s.ledger.Ignored(),
		Buffer:     append([]DamageCandidate(nil), s.buffer...),
		Advisory:   s.advisory,
		Ops: OpStates{
			Scan:       s.scanOp,
			Quote:      s.quoteOp,
			Settlement: s.settlementOp,
			Lease:      s.leaseOp,
		},
	}
	current, hasCurrent := s.currentRoom()
	if hasCurrent {
		v.CurrentRoom = &current
	}
	for i, room := range s.registry.Rooms() {
		v.Rooms = append(v.Rooms, RoomView{
			Room:           room,
			ReferenceCount: s.refs.Count(room.ID),
			Inspected:      s.traversal.IsInspected(room.ID),
			Current:        hasCurrent && i == s.traversal.Cursor(),
		})
	}
	if s.deposit != nil {
		dep := *s.deposit
		v.Deposit = &dep
	}
	if s.quote != nil {
		q := *s.quote
		q.LineItems = append([]QuoteLine(nil), s.quote.LineItems...)
		v.Quote = &q
	}
	if s.lease != nil {
		l := *s.lease
		v.Lease = &l
	}
	if s.settlement != nil {
		st := cloneSettlement(*s.settlement)
		v.Settlement = &st
	}
	return v
}

// PersistedState is the small scalar subset of a session that survives a
// restart. Images, findings and settlements are never persisted.
type PersistedState struct {
	SessionID string   `json:"sessionId"`
	Mode      Mode     `json:"mode"`
	Rooms     []Room   `json:"rooms"`
	Deposit   *Deposit `json:"deposit,omitempty"`
}

// Persisted returns the session's persistable fields.
func (s *Session) Persisted() PersistedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := PersistedState{SessionID: s.id, Mode: s.mode, Rooms: s.registry.Rooms()}
	if s.deposit != nil {
		dep := *s.deposit
		st.Deposit = &dep
	}
	return st
}

// RestorePersisted replaces the session with a persisted state. On error the
// session is unchanged.
func (s *Session) RestorePersisted(st PersistedState) error {
	var next Registry
	if err := next.Load(st.Rooms); err != nil {
		return err
	}
	var dep *Deposit
	if st.Deposit != nil {
		d, err := newDeposit(st.Deposit.Amount, st.Deposit.Currency, st.Deposit.Source)
		if err != nil {
			return err
		}
		if d.Source != DepositLease {
			d.Source = DepositManual
		}
		dep = &d
	}
	mode := st.Mode
	if mode != ModeCheckOut {
		mode = ModeCheckIn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetFull(st.SessionID)
	s.mode = mode
	s.registry = next
	s.deposit = dep
	return nil
}
