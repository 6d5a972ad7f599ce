package inspection

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// Session owns every piece of inspection state for one property. All
// mutations run under a single lock and are atomic with respect to readers.
type Session struct {
	mu sync.RWMutex

	id         string
	mode       Mode
	createdAt  time.Time
	generation uint64
	// inputsVersion advances whenever a settlement input changes.
	inputsVersion uint64
	// ledgerVersion advances whenever the active findings change.
	ledgerVersion uint64
	// navEpoch advances whenever the traversal cursor moves.
	navEpoch uint64

	registry  Registry
	refs      ReferenceStore
	ledger    Ledger
	traversal Traversal
	buffer    []DamageCandidate
	advisory  string

	deposit         *Deposit
	quote           *RepairQuote
	lease           *LeaseInfo
	settlement      *Settlement
	settlementValid bool

	scanOp       OpState
	quoteOp      OpState
	settlementOp OpState
	leaseOp      OpState

	now func() time.Time
}

// Option customizes a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates an empty session in check-in mode.
func NewSession(id string, opts ...Option) *Session {
	s := &Session{id: id, mode: ModeCheckIn, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.createdAt = s.now()
	s.resetOps()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Generation returns the reset counter.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Mode returns the current inspection phase.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches between check-in and check-out.
func (s *Session) SetMode(mode Mode) error {
	if mode != ModeCheckIn && mode != ModeCheckOut {
		return ErrInvalidMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return nil
}

// LoadRooms replaces the room registry for a new property. References, the
// ledger, traversal and cached estimates are cleared; deposit and mode are
// kept.
func (s *Session) LoadRooms(rooms []Room) error {
	var next Registry
	if err := next.Load(rooms); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceRooms(next)
	return nil
}

// LoadRoomsAt is LoadRooms for rooms derived from a collaborator call issued
// at generation. It fails with ErrStaleTicket when the session has moved on.
func (s *Session) LoadRoomsAt(generation uint64, rooms []Room) error {
	var next Registry
	if err := next.Load(rooms); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return fmt.Errorf("%w: rooms from generation %d, session at %d", ErrStaleTicket, generation, s.generation)
	}
	s.replaceRooms(next)
	return nil
}

func (s *Session) replaceRooms(next Registry) {
	s.generation++
	s.registry = next
	s.refs.clear()
	s.lease = nil
	s.clearInspection()
}

// Room returns the room with id and its inspection status.
func (s *Session) Room(id string) (RoomView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, err := s.registry.Get(id)
	if err != nil {
		return RoomView{}, err
	}
	idx, _ := s.registry.IndexOf(id)
	_, hasCurrent := s.currentRoom()
	return RoomView{
		Room:           room,
		ReferenceCount: s.refs.Count(id),
		Inspected:      s.traversal.IsInspected(id),
		Current:        hasCurrent && idx == s.traversal.Cursor(),
	}, nil
}

// Rooms returns the ordered room list.
func (s *Session) Rooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Rooms()
}

// References returns the room's check-in images.
func (s *Session) References(roomID string) []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refs.Images(roomID)
}

// AddReference appends a baseline image to roomID. Only allowed in check-in
// mode.
func (s *Session) AddReference(roomID string, img Image) (int, error) {
	if len(img.Data) == 0 {
		return 0, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeCheckIn {
		return 0, fmt.Errorf("%w: reference images are captured during check-in", ErrWrongMode)
	}
	if _, err := s.registry.Get(roomID); err != nil {
		return 0, err
	}
	return s.refs.Add(roomID, img, s.now()), nil
}

// Start begins the traversal at room 0.
func (s *Session) Start() (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.traversal.Start(s.registry.Len()); err != nil {
		return Room{}, err
	}
	s.moved()
	room, _ := s.registry.At(0)
	return room, nil
}

// CurrentRoom returns the room under the cursor while in progress.
func (s *Session) CurrentRoom() (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoom()
}

func (s *Session) currentRoom() (Room, bool) {
	if s.traversal.State() != StateInProgress {
		return Room{}, false
	}
	return s.registry.At(s.traversal.Cursor())
}

// GoTo moves the cursor to roomID. From Complete the walk re-enters
// InProgress so the room can be finalized again.
func (s *Session) GoTo(roomID string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry.Len() == 0 {
		return Room{}, ErrNoRooms
	}
	idx, ok := s.registry.IndexOf(roomID)
	if !ok {
		return Room{}, fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
	}
	if err := s.traversal.GoTo(idx, s.registry.Len()); err != nil {
		return Room{}, err
	}
	s.moved()
	room, _ := s.registry.At(idx)
	return room, nil
}

// CompleteCurrentRoom finalizes the current room with findings, or with the
// candidate buffer when findings is nil, and advances the cursor. It returns
// the finalized room.
func (s *Session) CompleteCurrentRoom(findings []DamageCandidate) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.currentRoom()
	if !ok {
		return Room{}, ErrNotInProgress
	}
	if findings == nil {
		findings = s.buffer
	}
	s.ledger.RecordRoomScan(room, findings, s.now())
	s.ledgerChanged()
	s.traversal.MarkInspected(room.ID)
	s.traversal.Advance(s.registry.Len())
	s.moved()
	return room, nil
}

// SkipCurrentRoom advances the cursor without touching the ledger or the
// inspected list.
func (s *Session) SkipCurrentRoom() (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.currentRoom()
	if !ok {
		return Room{}, ErrNotInProgress
	}
	s.traversal.Advance(s.registry.Len())
	s.moved()
	return room, nil
}

// Buffer returns the candidates gathered for the current room.
func (s *Session) Buffer() []DamageCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]DamageCandidate(nil), s.buffer...)
}

// DismissCandidate drops the buffered candidate at index.
func (s *Session) DismissCandidate(index int) (DamageCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.buffer) {
		return DamageCandidate{}, fmt.Errorf("%w: candidate index %d (have %d)", ErrIndexOutOfRange, index, len(s.buffer))
	}
	c := s.buffer[index]
	s.buffer = append(s.buffer[:index:index], s.buffer[index+1:]...)
	return c, nil
}

// Findings returns the active ledger.
func (s *Session) Findings() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Active()
}

// IgnoredFindings returns the ignored ledger entries.
func (s *Session) IgnoredFindings() []IgnoredFinding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Ignored()
}

// Ignore moves the active finding with identity id to the ignored set.
func (s *Session) Ignore(id Identity, reason string) (IgnoredFinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.ledger.Ignore(id, reason, s.now())
	if err != nil {
		return IgnoredFinding{}, err
	}
	s.ledgerChanged()
	return entry, nil
}

// Restore moves the ignored finding at index back to the active set.
func (s *Session) Restore(index int) (Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.ledger.Restore(index)
	if err != nil {
		return Finding{}, err
	}
	s.ledgerChanged()
	return f, nil
}

// RemoveFinding deletes the active finding at index.
func (s *Session) RemoveFinding(index int) (Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.ledger.Remove(index)
	if err != nil {
		return Finding{}, err
	}
	s.ledgerChanged()
	return f, nil
}

// Deposit returns the current deposit, if known.
func (s *Session) Deposit() (Deposit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deposit == nil {
		return Deposit{}, false
	}
	return *s.deposit, true
}

// SetManualDeposit sets the deposit from manual entry. Manual entry always
// replaces a lease-derived amount.
func (s *Session) SetManualDeposit(amount float64, currency string) (Deposit, error) {
	dep, err := newDeposit(amount, currency, DepositManual)
	if err != nil {
		return Deposit{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposit = &dep
	s.invalidate()
	return dep, nil
}

func newDeposit(amount float64, currency string, source DepositSource) (Deposit, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return Deposit{}, fmt.Errorf("%w: amount %v", ErrInvalidDeposit, amount)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Deposit{}, fmt.Errorf("%w: currency %q", ErrInvalidDeposit, currency)
	}
	return Deposit{Amount: round2(amount), Currency: currency, Source: source}, nil
}

// Quote returns the current repair estimate, if any.
func (s *Session) Quote() (RepairQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quote == nil {
		return RepairQuote{}, false
	}
	return *s.quote, true
}

// Lease returns the last lease extraction, if any.
func (s *Session) Lease() (LeaseInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lease == nil {
		return LeaseInfo{}, false
	}
	return *s.lease, true
}

// InvalidateSettlement discards the cached settlement so the next read
// recomputes it.
func (s *Session) InvalidateSettlement() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate()
}

// ResetInspection clears the traversal, ledger, buffer, repair estimate and
// settlement. Rooms, references, deposit and mode survive.
func (s *Session) ResetInspection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.clearInspection()
}

// ResetFull clears everything and starts a new session under newID.
func (s *Session) ResetFull(newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetFull(newID)
}

func (s *Session) resetFull(newID string) {
	s.generation++
	s.id = newID
	s.mode = ModeCheckIn
	s.createdAt = s.now()
	s.registry.clear()
	s.refs.clear()
	s.deposit = nil
	s.lease = nil
	s.clearInspection()
}

func (s *Session) clearInspection() {
	s.traversal.reset()
	s.ledger.clear()
	s.buffer = nil
	s.advisory = ""
	s.quote = nil
	s.settlement = nil
	s.settlementValid = false
	s.inputsVersion++
	s.ledgerVersion++
	s.navEpoch++
	s.resetOps()
}

func (s *Session) resetOps() {
	now := s.now()
	idle := OpState{Status: OpIdle, UpdatedAt: now}
	s.scanOp = idle
	s.quoteOp = idle
	s.settlementOp = idle
	s.leaseOp = idle
}

// moved clears per-room scan state after a cursor move.
func (s *Session) moved() {
	s.navEpoch++
	s.buffer = nil
	s.advisory = ""
	s.scanOp = OpState{Status: OpIdle, UpdatedAt: s.now()}
}

func (s *Session) ledgerChanged() {
	s.ledgerVersion++
	s.invalidate()
}

func (s *Session) invalidate() {
	s.inputsVersion++
	s.settlementValid = false
	if s.settlement != nil {
		s.settlement.Stale = true
	}
}

func (s *Session) settlementInputs() SettlementInputs {
	in := SettlementInputs{Findings: s.ledger.Active()}
	if s.deposit != nil {
		dep := *s.deposit
		in.Deposit = &dep
	}
	if s.quote != nil {
		q := *s.quote
		in.Quote = &q
	}
	return in
}
