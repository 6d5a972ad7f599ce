package workflow

import (
	"context"
	"fmt"

	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/services"
)

// SetMode switches between check-in and check-out.
func (m *Manager) SetMode(ctx context.Context, mode inspection.Mode) error {
	if err := m.session.SetMode(mode); err != nil {
		return err
	}
	m.sessionLogger(ctx).Info("mode changed", logging.String("mode", string(mode)))
	m.persist(ctx)
	return nil
}

// LoadRooms replaces the room registry.
func (m *Manager) LoadRooms(ctx context.Context, rooms []inspection.Room) error {
	if err := m.session.LoadRooms(rooms); err != nil {
		return err
	}
	m.sessionLogger(ctx).Info("rooms loaded", logging.Int("rooms", len(rooms)))
	m.persist(ctx)
	return nil
}

// LoadRawPlan normalizes plan and loads its rooms.
func (m *Manager) LoadRawPlan(ctx context.Context, plan floorplan.RawPlan) ([]inspection.Room, error) {
	rooms, err := floorplan.Normalize(plan)
	if err != nil {
		return nil, err
	}
	if err := m.LoadRooms(ctx, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ParseFloorPlan sends img to the floor-plan analyzer and loads the result.
// The rooms are discarded if the session was reset while the call ran.
func (m *Manager) ParseFloorPlan(ctx context.Context, img inspection.Image) ([]inspection.Room, error) {
	if m.collab.FloorPlans == nil {
		return nil, services.Wrap(services.ErrUnavailable, "workflow", "parse floor plan", "no floor-plan analyzer configured", nil)
	}
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: empty floor plan", inspection.ErrInvalidImage)
	}
	generation := m.session.Generation()
	callCtx, cancel := m.callContext(ctx, m.analyzeTimeout)
	defer cancel()
	plan, err := m.collab.FloorPlans.ParseFloorPlan(callCtx, img)
	if err != nil {
		m.collaboratorFailed(ctx, "floor plan parsing", err)
		return nil, err
	}
	rooms, err := floorplan.Normalize(plan)
	if err != nil {
		return nil, err
	}
	if err := m.session.LoadRoomsAt(generation, rooms); err != nil {
		return nil, err
	}
	m.sessionLogger(ctx).Info("rooms loaded from floor plan", logging.Int("rooms", len(rooms)))
	m.persist(ctx)
	return rooms, nil
}

// AddReference stores a check-in baseline image for roomID.
func (m *Manager) AddReference(ctx context.Context, roomID string, img inspection.Image) (int, error) {
	count, err := m.session.AddReference(roomID, img)
	if err != nil {
		return 0, err
	}
	m.sessionLogger(services.WithRoomID(ctx, roomID)).Debug("reference stored", logging.Int("references", count))
	return count, nil
}

// Start begins the traversal at the first room.
func (m *Manager) Start(ctx context.Context) (inspection.Room, error) {
	room, err := m.session.Start()
	if err != nil {
		return inspection.Room{}, err
	}
	m.sessionLogger(ctx).Info("inspection started",
		logging.RoomID(room.ID),
		logging.RoomName(room.Name),
	)
	return room, nil
}

// Room returns one room with its status.
func (m *Manager) Room(id string) (inspection.RoomView, error) {
	return m.session.Room(id)
}

// GoTo moves the cursor to roomID.
func (m *Manager) GoTo(_ context.Context, roomID string) (inspection.Room, error) {
	return m.session.GoTo(roomID)
}

// CompleteRoom commits findings (or the candidate buffer when findings is
// nil) for the current room and advances.
func (m *Manager) CompleteRoom(ctx context.Context, findings []inspection.DamageCandidate) (inspection.Room, error) {
	room, err := m.session.CompleteCurrentRoom(findings)
	if err != nil {
		return inspection.Room{}, err
	}
	view := m.session.View()
	m.sessionLogger(ctx).Info("room completed",
		logging.RoomID(room.ID),
		logging.RoomName(room.Name),
		logging.Int("findings", len(view.Findings)),
		logging.Float64("progress", view.Progress),
	)
	if view.State == inspection.StateComplete {
		m.notifyInspectionCompleted(ctx, view)
	}
	return room, nil
}

// SkipRoom advances without touching the ledger.
func (m *Manager) SkipRoom(ctx context.Context) (inspection.Room, error) {
	room, err := m.session.SkipCurrentRoom()
	if err != nil {
		return inspection.Room{}, err
	}
	if view := m.session.View(); view.State == inspection.StateComplete {
		m.notifyInspectionCompleted(ctx, view)
	}
	return room, nil
}

// DismissCandidate drops one buffered candidate.
func (m *Manager) DismissCandidate(_ context.Context, index int) (inspection.DamageCandidate, error) {
	return m.session.DismissCandidate(index)
}

// IgnoreFinding moves a finding to the ignored list.
func (m *Manager) IgnoreFinding(_ context.Context, id inspection.Identity, reason string) (inspection.IgnoredFinding, error) {
	return m.session.Ignore(id, reason)
}

// RestoreFinding moves an ignored finding back to the ledger.
func (m *Manager) RestoreFinding(_ context.Context, index int) (inspection.Finding, error) {
	return m.session.Restore(index)
}

// RemoveFinding deletes an active finding outright.
func (m *Manager) RemoveFinding(_ context.Context, index int) (inspection.Finding, error) {
	return m.session.RemoveFinding(index)
}

// SetDeposit records a manual deposit, which outranks any lease value.
func (m *Manager) SetDeposit(ctx context.Context, amount float64, currency string) (inspection.Deposit, error) {
	if currency == "" {
		currency = m.defaultCurrency
	}
	dep, err := m.session.SetManualDeposit(amount, currency)
	if err != nil {
		return inspection.Deposit{}, err
	}
	m.sessionLogger(ctx).Info("deposit set",
		logging.Float64("amount", dep.Amount),
		logging.String("currency", dep.Currency),
	)
	m.persist(ctx)
	return dep, nil
}

// ResetInspection clears the traversal and everything derived from it.
// Outstanding collaborator results become stale.
func (m *Manager) ResetInspection(ctx context.Context) {
	m.session.ResetInspection()
	m.sessionLogger(ctx).Info("inspection reset")
}

// ResetFull starts a brand-new session.
func (m *Manager) ResetFull(ctx context.Context) string {
	id := m.newID()
	m.session.ResetFull(id)
	m.sessionLogger(ctx).Info("session reset")
	m.persist(ctx)
	return id
}
