package api

import (
	"time"

	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/workflow"
)

// FromRoom converts a registry room.
func FromRoom(r inspection.Room) Room {
	return Room{
		ID:       r.ID,
		Name:     r.Name,
		Type:     string(r.Type),
		Priority: string(r.Priority),
		Features: r.Features,
		Tips:     r.Tips,
		Position: r.Position,
	}
}

// FromRooms converts a room list.
func FromRooms(rooms []inspection.Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, FromRoom(r))
	}
	return out
}

// FromRoomView converts a room with its session status.
func FromRoomView(r inspection.RoomView) RoomStatus {
	return RoomStatus{
		Room:       FromRoom(r.Room),
		References: r.ReferenceCount,
		Inspected:  r.Inspected,
		Current:    r.Current,
	}
}

// FromFinding converts an active ledger entry.
func FromFinding(f inspection.Finding) Finding {
	return Finding{
		Type:        f.Type,
		Severity:    string(f.Severity),
		Location:    f.Location,
		Description: f.Description,
		RoomID:      f.RoomID,
		RoomName:    f.RoomName,
		CapturedAt:  FormatTime(f.CapturedAt),
		HasImage:    f.HasImage,
	}
}

// FromCandidate converts a buffered candidate.
func FromCandidate(c inspection.DamageCandidate) Candidate {
	return Candidate{
		Type:        c.Type,
		Severity:    string(c.Severity),
		Location:    c.Location,
		Description: c.Description,
		Size:        c.Size,
		LikelyCause: c.LikelyCause,
		HasImage:    c.HasImage,
	}
}

// ToCandidate converts a client-supplied finding.
func (c Candidate) ToCandidate() inspection.DamageCandidate {
	return inspection.DamageCandidate{
		Type:        c.Type,
		Severity:    inspection.ParseSeverity(c.Severity),
		Location:    c.Location,
		Description: c.Description,
		Size:        c.Size,
		LikelyCause: c.LikelyCause,
		HasImage:    c.HasImage,
	}
}

// Candidates returns the findings to commit, or nil when the request omitted
// them so the buffer is used.
func (r CompleteRequest) Candidates() []inspection.DamageCandidate {
	if r.Findings == nil {
		return nil
	}
	out := make([]inspection.DamageCandidate, 0, len(r.Findings))
	for _, c := range r.Findings {
		out = append(out, c.ToCandidate())
	}
	return out
}

// Plan converts the request into the analyzer's plan shape for normalization.
func (r RoomsRequest) Plan() floorplan.RawPlan {
	plan := floorplan.RawPlan{InspectionRoute: r.Route}
	for _, in := range r.Rooms {
		plan.Rooms = append(plan.Rooms, floorplan.RawRoom{
			ID:                 in.ID,
			Name:               in.Name,
			Type:               in.Type,
			Position:           in.Position,
			Features:           in.Features,
			InspectionPriority: in.Priority,
			InspectionTips:     in.Tips,
		})
	}
	return plan
}

// FromLease converts a lease extraction.
func FromLease(l inspection.LeaseInfo) Lease {
	return Lease{
		DepositAmount:   l.DepositAmount,
		DepositCurrency: l.DepositCurrency,
		Conditions:      l.Conditions,
		PropertyAddress: l.PropertyAddress,
		TenantName:      l.TenantName,
		LandlordName:    l.LandlordName,
		LeaseStart:      l.LeaseStart,
		LeaseEnd:        l.LeaseEnd,
		MonthlyRent:     l.MonthlyRent,
	}
}

// FromSettlement converts a settlement.
func FromSettlement(s inspection.Settlement) Settlement {
	lines := s.LineItems
	if lines == nil {
		lines = []inspection.Deduction{}
	}
	return Settlement{
		Kind:            string(s.Kind),
		OriginalDeposit: s.OriginalDeposit,
		Currency:        s.Currency,
		TotalDeductions: s.TotalDeductions,
		DepositReturn:   s.DepositReturn,
		LineItems:       lines,
		Summary:         s.Summary,
		LandlordNotes:   s.LandlordNotes,
		PendingReason:   s.PendingReason,
		Stale:           s.Stale,
		ComputedAt:      FormatTime(s.ComputedAt),
	}
}

// FromOpStates converts the operation states.
func FromOpStates(ops inspection.OpStates) OpStates {
	conv := func(o inspection.OpState) OpState {
		return OpState{Status: string(o.Status), Error: o.Error, UpdatedAt: FormatTime(o.UpdatedAt)}
	}
	return OpStates{
		Scan:       conv(ops.Scan),
		Quote:      conv(ops.Quote),
		Settlement: conv(ops.Settlement),
		Lease:      conv(ops.Lease),
	}
}

// FromView converts a session snapshot. Slices are never nil so clients can
// iterate without checks.
func FromView(v inspection.View) SessionView {
	out := SessionView{
		SessionID:  v.SessionID,
		Mode:       string(v.Mode),
		Generation: v.Generation,
		CreatedAt:  FormatTime(v.CreatedAt),
		State:      string(v.State),
		Cursor:     v.Cursor,
		Rooms:      make([]RoomStatus, 0, len(v.Rooms)),
		Inspected:  append([]string{}, v.Inspected...),
		Progress:   v.Progress,
		Findings:   make([]Finding, 0, len(v.Findings)),
		Ignored:    make([]IgnoredFinding, 0, len(v.Ignored)),
		Buffer:     make([]Candidate, 0, len(v.Buffer)),
		Advisory:   v.Advisory,
		Deposit:    v.Deposit,
		Quote:      v.Quote,
		Ops:        FromOpStates(v.Ops),
	}
	if v.CurrentRoom != nil {
		room := FromRoom(*v.CurrentRoom)
		out.CurrentRoom = &room
	}
	for _, r := range v.Rooms {
		out.Rooms = append(out.Rooms, FromRoomView(r))
	}
	for _, f := range v.Findings {
		out.Findings = append(out.Findings, FromFinding(f))
	}
	for _, f := range v.Ignored {
		out.Ignored = append(out.Ignored, IgnoredFinding{
			Finding:   FromFinding(f.Finding),
			Reason:    f.Reason,
			IgnoredAt: FormatTime(f.IgnoredAt),
		})
	}
	for _, c := range v.Buffer {
		out.Buffer = append(out.Buffer, FromCandidate(c))
	}
	if v.Lease != nil {
		lease := FromLease(*v.Lease)
		out.Lease = &lease
	}
	if v.Settlement != nil {
		s := FromSettlement(*v.Settlement)
		out.Settlement = &s
	}
	return out
}

// FromScanOutcome converts a scan result.
func FromScanOutcome(o inspection.ScanOutcome) ScanResponse {
	return ScanResponse{
		Status:   string(o.Status),
		Accepted: o.Accepted,
		Buffered: o.Buffered,
		Message:  o.Message,
		Advisory: o.Advisory,
	}
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) SessionSummary {
	return SessionSummary{
		SessionID:    summary.SessionID,
		Generation:   summary.Generation,
		Mode:         string(summary.Mode),
		State:        string(summary.State),
		Rooms:        summary.Rooms,
		Findings:     summary.Findings,
		Persistence:  summary.Persistence,
		LastError:    summary.LastError,
		PersistError: summary.PersistError,
		Ops:          FromOpStates(summary.Ops),
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
