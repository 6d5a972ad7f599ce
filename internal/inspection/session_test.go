package inspection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condish/internal/services"
)

func newTestSession(t *testing.T, ids ...string) *Session {
	t.Helper()
	clock := fixedNow
	s := NewSession("sess-1", WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	rooms := make([]Room, 0, len(ids))
	for _, id := range ids {
		rooms = append(rooms, Room{ID: id, Name: "Room " + id, Type: RoomOther})
	}
	if len(rooms) > 0 {
		require.NoError(t, s.LoadRooms(rooms))
	}
	return s
}

var frame = Image{Data: []byte{0xff, 0xd8}, MimeType: "image/jpeg"}

func TestProgressAcrossTraversal(t *testing.T) {
	s := newTestSession(t, "a", "b", "c", "d")
	_, err := s.Start()
	require.NoError(t, err)

	for k := 1; k <= 4; k++ {
		_, err := s.CompleteCurrentRoom([]DamageCandidate{})
		require.NoError(t, err)
		assert.InDelta(t, float64(k)/4*100, s.View().Progress, 1e-9)
	}
	v := s.View()
	assert.Equal(t, 100.0, v.Progress)
	assert.Equal(t, StateComplete, v.State)
	assert.Equal(t, 4, v.Cursor)
	assert.Nil(t, v.CurrentRoom)
}

func TestProgressThreeRoomsIsExactlyHundred(t *testing.T) {
	s := newTestSession(t, "a", "b", "c")
	_, err := s.Start()
	require.NoError(t, err)
	for range 3 {
		_, err := s.CompleteCurrentRoom(nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 100.0, s.View().Progress)
}

func TestSkipNeverDecreasesInspected(t *testing.T) {
	s := newTestSession(t, "a", "b", "c")
	_, err := s.Start()
	require.NoError(t, err)
	_, err = s.CompleteCurrentRoom(nil)
	require.NoError(t, err)

	_, err = s.GoTo("a")
	require.NoError(t, err)
	_, err = s.SkipCurrentRoom()
	require.NoError(t, err)
	_, err = s.SkipCurrentRoom()
	require.NoError(t, err)

	v := s.View()
	assert.Equal(t, []string{"a"}, v.Inspected)
	assert.Equal(t, 2, v.Cursor)
	_, err = s.SkipCurrentRoom()
	require.NoError(t, err)
	assert.Equal(t, StateComplete, s.View().State)
	_, err = s.SkipCurrentRoom()
	require.ErrorIs(t, err, ErrNotInProgress)
	assert.Len(t, s.View().Inspected, 1)
}

func TestStartRequiresRooms(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Start()
	require.ErrorIs(t, err, ErrNoRooms)
	assert.Equal(t, services.CategoryInput, services.Classify(err))

	s = newTestSession(t, "a")
	_, err = s.Start()
	require.NoError(t, err)
	_, err = s.Start()
	require.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestGoToUnknownRoom(t *testing.T) {
	s := newTestSession(t, "a")
	_, err := s.GoTo("zzz")
	require.ErrorIs(t, err, ErrRoomNotFound)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestRoomReportsStatus(t *testing.T) {
	s := newTestSession(t, "a", "b")
	_, err := s.AddReference("b", frame)
	require.NoError(t, err)
	_, err = s.Start()
	require.NoError(t, err)
	_, err = s.CompleteCurrentRoom([]DamageCandidate{})
	require.NoError(t, err)

	a, err := s.Room("a")
	require.NoError(t, err)
	assert.True(t, a.Inspected)
	assert.False(t, a.Current)

	b, err := s.Room("b")
	require.NoError(t, err)
	assert.Equal(t, "Room b", b.Name)
	assert.Equal(t, 1, b.ReferenceCount)
	assert.True(t, b.Current)
	assert.False(t, b.Inspected)

	_, err = s.Room("zzz")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLoadRoomsAtRejectsStaleGeneration(t *testing.T) {
	s := newTestSession(t, "a")
	issued := s.Generation()
	s.ResetFull("sess-2")

	err := s.LoadRoomsAt(issued, []Room{{ID: "x", Name: "X", Type: RoomOther}})
	require.ErrorIs(t, err, ErrStaleTicket)
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Empty(t, s.Rooms())

	require.NoError(t, s.LoadRoomsAt(s.Generation(), []Room{{ID: "x", Name: "X", Type: RoomOther}}))
	assert.Len(t, s.Rooms(), 1)
	assert.Greater(t, s.Generation(), issued)
}

func TestLoadRoomsRejectsDuplicates(t *testing.T) {
	s := newTestSession(t, "a")
	err := s.LoadRooms([]Room{{ID: "x"}, {ID: "x"}})
	require.ErrorIs(t, err, ErrInvalidRooms)
	assert.Len(t, s.Rooms(), 1, "failed load must leave registry untouched")
}

func TestReferenceImagesOnlyInCheckIn(t *testing.T) {
	s := newTestSession(t, "a")
	n, err := s.AddReference("a", frame)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.AddReference("nope", frame)
	require.ErrorIs(t, err, ErrRoomNotFound)

	require.NoError(t, s.SetMode(ModeCheckOut))
	_, err = s.AddReference("a", frame)
	require.ErrorIs(t, err, ErrWrongMode)
	assert.Len(t, s.References("a"), 1)
}

// Rooms [A, B]; two check-in images for A; check-out scans A twice.
func TestRescanScenarioYieldsTwoFindings(t *testing.T) {
	s := newTestSession(t, "A", "B")
	for range 2 {
		_, err := s.AddReference("A", frame)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetMode(ModeCheckOut))
	_, err := s.Start()
	require.NoError(t, err)

	ticket, err := s.BeginScan(frame)
	require.NoError(t, err)
	assert.Len(t, ticket.References, 2)
	assert.False(t, ticket.Standalone())
	_, err = s.CommitScan(ticket, AnalysisResult{Status: AnalysisOK, DamageFound: true, Damages: []DamageCandidate{
		{Type: "hole", Location: "north wall", Severity: SeverityMajor},
	}})
	require.NoError(t, err)
	_, err = s.CompleteCurrentRoom(nil)
	require.NoError(t, err)

	_, err = s.GoTo("A")
	require.NoError(t, err)
	ticket, err = s.BeginScan(frame)
	require.NoError(t, err)
	out, err := s.CommitScan(ticket, AnalysisResult{Status: AnalysisOK, DamageFound: true, Damages: []DamageCandidate{
		{Type: "hole", Location: "north wall", Severity: SeverityMajor},
		{Type: "scratch", Location: "floor", Severity: SeverityMinor},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Buffered)
	_, err = s.CompleteCurrentRoom(nil)
	require.NoError(t, err)

	findings := s.Findings()
	require.Len(t, findings, 2)
	assert.Equal(t, []string{"A"}, s.View().Inspected)
}

func TestScanStatusHandling(t *testing.T) {
	s := newTestSession(t, "a", "b")
	_, err := s.Start()
	require.NoError(t, err)
	crack := []DamageCandidate{{Type: "crack", Location: "wall", Severity: SeverityMinor}}

	ticket, err := s.BeginScan(frame)
	require.NoError(t, err)
	assert.True(t, ticket.Standalone())
	assert.Equal(t, OpPending, s.View().Ops.Scan.Status)
	out, err := s.CommitScan(ticket, AnalysisResult{Status: AnalysisWrongRoom, Damages: crack, Message: "this is the hallway"})
	require.NoError(t, err)
	assert.Zero(t, out.Buffered)
	assert.Equal(t, "this is the hallway", out.Advisory)

	ticket, _ = s.BeginScan(frame)
	out, err = s.CommitScan(ticket, AnalysisResult{Status: AnalysisSceneMismatch, Damages: crack})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Buffered)
	assert.NotEmpty(t, out.Advisory)

	ticket, _ = s.BeginScan(frame)
	out, err = s.CommitScan(ticket, AnalysisResult{Status: AnalysisError, Message: "model refused"})
	require.NoError(t, err)
	assert.Equal(t, AnalysisError, out.Status)
	v := s.View()
	assert.Equal(t, OpFailed, v.Ops.Scan.Status)
	assert.Len(t, v.Buffer, 1, "failed scan must not drop buffered candidates")
	assert.Empty(t, v.Findings)
}

func TestScanDiscardedAfterNavigation(t *testing.T) {
	s := newTestSession(t, "a", "b")
	_, err := s.Start()
	require.NoError(t, err)
	ticket, err := s.BeginScan(frame)
	require.NoError(t, err)

	_, err = s.SkipCurrentRoom()
	require.NoError(t, err)
	_, err = s.GoTo("a")
	require.NoError(t, err)

	_, err = s.CommitScan(ticket, AnalysisResult{Status: AnalysisOK, Damages: []DamageCandidate{{Type: "x", Location: "y"}}})
	require.ErrorIs(t, err, ErrStaleTicket)
	assert.Empty(t, s.Buffer())
}

func TestDismissCandidate(t *testing.T) {
	s := newTestSession(t, "a")
	_, err := s.Start()
	require.NoError(t, err)
	ticket, _ := s.BeginScan(frame)
	_, err = s.CommitScan(ticket, AnalysisResult{Status: AnalysisOK, Damages: []DamageCandidate{
		{Type: "crack", Location: "wall"},
		{Type: "stain", Location: "floor"},
	}})
	require.NoError(t, err)

	_, err = s.DismissCandidate(5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	c, err := s.DismissCandidate(0)
	require.NoError(t, err)
	assert.Equal(t, "crack", c.Type)

	_, err = s.CompleteCurrentRoom(nil)
	require.NoError(t, err)
	require.Len(t, s.Findings(), 1)
	assert.Equal(t, "stain", s.Findings()[0].Type)
}

func completeWith(t *testing.T, s *Session, candidates ...DamageCandidate) {
	t.Helper()
	_, err := s.CompleteCurrentRoom(candidates)
	require.NoError(t, err)
}

func TestSettlementTrivialRegardlessOfEstimator(t *testing.T) {
	s := newTestSession(t, "a")
	_, err := s.SetManualDeposit(1000, "usd")
	require.NoError(t, err)
	_, err = s.Start()
	require.NoError(t, err)
	completeWith(t, s)

	st, ticket := s.PrepareSettlement(false)
	assert.Nil(t, ticket)
	assert.Equal(t, SettlementTrivial, st.Kind)
	assert.Zero(t, st.TotalDeductions)
	assert.Equal(t, 1000.0, st.DepositReturn)
	assert.Equal(t, "USD", st.Currency)
}

func settleSetup(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t, "a", "b")
	_, err := s.SetManualDeposit(1000, "USD")
	require.NoError(t, err)
	_, err = s.Start()
	require.NoError(t, err)
	completeWith(t, s,
		DamageCandidate{Type: "crack", Location: "wall", Severity: SeverityMajor},
		DamageCandidate{Type: "stain", Location: "carpet", Severity: SeverityMinor},
	)
	completeWith(t, s, DamageCandidate{Type: "dent", Location: "door", Severity: SeverityModerate})

	qt, needs := s.BeginQuote("United States", "USD")
	require.True(t, needs)
	require.Len(t, qt.Findings, 3)
	require.NoError(t, s.CommitQuote(qt, RepairQuote{GrandTotal: 300}))
	return s
}

func TestSettlementFallbackThroughSession(t *testing.T) {
	s := settleSetup(t)
	_, ticket := s.PrepareSettlement(false)
	require.NotNil(t, ticket)
	assert.Equal(t, OpPending, s.View().Ops.Settlement.Status)

	st, err := s.CommitSettlement(*ticket, nil, services.ErrUnavailable)
	require.NoError(t, err)
	assert.Equal(t, SettlementApproximate, st.Kind)
	assert.Equal(t, 300.0, st.TotalDeductions)
	assert.Equal(t, 700.0, st.DepositReturn)
	assert.Len(t, st.LineItems, 3)

	cached, ticket := s.PrepareSettlement(false)
	assert.Nil(t, ticket)
	assert.Equal(t, st.TotalDeductions, cached.TotalDeductions)
}

func TestSettlementInvalidatedByLedgerChange(t *testing.T) {
	s := settleSetup(t)
	_, ticket := s.PrepareSettlement(false)
	_, err := s.CommitSettlement(*ticket, nil, errors.New("down"))
	require.NoError(t, err)

	_, err = s.RemoveFinding(0)
	require.NoError(t, err)
	v := s.View()
	require.NotNil(t, v.Settlement)
	assert.True(t, v.Settlement.Stale)

	prev, ticket := s.PrepareSettlement(false)
	require.NotNil(t, ticket)
	assert.True(t, prev.Stale)
	assert.Len(t, ticket.Inputs.Findings, 2)
}

func TestSettlementDiscardedAfterFullReset(t *testing.T) {
	s := settleSetup(t)
	_, ticket := s.PrepareSettlement(false)
	require.NotNil(t, ticket)

	s.ResetFull("sess-2")
	_, err := s.CommitSettlement(*ticket, &EstimatorResult{Status: "success", OriginalDeposit: 1000, DepositReturn: 1000}, nil)
	require.ErrorIs(t, err, ErrStaleTicket)

	v := s.View()
	assert.Equal(t, "sess-2", v.SessionID)
	assert.Nil(t, v.Settlement)
	assert.Nil(t, v.Deposit)
	assert.Empty(t, v.Rooms)
}

func TestSettlementDiscardedWhenDepositChanges(t *testing.T) {
	s := settleSetup(t)
	_, ticket := s.PrepareSettlement(false)
	_, err := s.SetManualDeposit(1500, "USD")
	require.NoError(t, err)
	_, err = s.CommitSettlement(*ticket, nil, errors.New("late"))
	require.ErrorIs(t, err, ErrStaleTicket)
}

func TestQuoteDiscardedWhenLedgerChanges(t *testing.T) {
	s := settleSetup(t)
	qt, needs := s.BeginQuote("", "USD")
	require.True(t, needs)
	_, err := s.Ignore(NewIdentity("crack", "wall", "a"), "pre-existing")
	require.NoError(t, err)
	require.ErrorIs(t, s.CommitQuote(qt, RepairQuote{GrandTotal: 999}), ErrStaleTicket)
	q, ok := s.Quote()
	require.True(t, ok)
	assert.Equal(t, 300.0, q.GrandTotal)
}

func TestQuoteZeroFindingsShortCircuits(t *testing.T) {
	s := newTestSession(t, "a")
	_, needs := s.BeginQuote("", "EUR")
	assert.False(t, needs)
	q, ok := s.Quote()
	require.True(t, ok)
	assert.Zero(t, q.GrandTotal)
	assert.Equal(t, "EUR", q.Currency)
}

func TestInspectionResetPreservesBaseline(t *testing.T) {
	s := settleSetup(t)
	_, err := s.AddReference("a", frame)
	require.NoError(t, err)
	require.NoError(t, s.SetMode(ModeCheckOut))
	gen := s.Generation()

	s.ResetInspection()
	v := s.View()
	assert.Greater(t, v.Generation, gen)
	assert.Len(t, v.Rooms, 2)
	assert.Equal(t, 1, v.Rooms[0].ReferenceCount)
	require.NotNil(t, v.Deposit)
	assert.Equal(t, ModeCheckOut, v.Mode)
	assert.Empty(t, v.Findings)
	assert.Empty(t, v.Inspected)
	assert.Nil(t, v.Quote)
	assert.Nil(t, v.Settlement)
	assert.Equal(t, StateNotStarted, v.State)
	assert.Equal(t, "sess-1", v.SessionID)
}

func TestLeaseDepositDoesNotOverrideManual(t *testing.T) {
	s := newTestSession(t, "a")
	lt := s.BeginLease()
	applied, err := s.CommitLease(lt, LeaseInfo{DepositAmount: 1200, DepositCurrency: "usd", TenantName: "Sam"})
	require.NoError(t, err)
	assert.True(t, applied)
	dep, _ := s.Deposit()
	assert.Equal(t, DepositLease, dep.Source)

	_, err = s.SetManualDeposit(900, "USD")
	require.NoError(t, err)
	lt = s.BeginLease()
	applied, err = s.CommitLease(lt, LeaseInfo{DepositAmount: 1500, DepositCurrency: "USD"})
	require.NoError(t, err)
	assert.False(t, applied)
	dep, _ = s.Deposit()
	assert.Equal(t, 900.0, dep.Amount)
	assert.Equal(t, DepositManual, dep.Source)
}

func TestInvalidDeposit(t *testing.T) {
	s := newTestSession(t)
	_, err := s.SetManualDeposit(-1, "USD")
	require.ErrorIs(t, err, ErrInvalidDeposit)
	_, err = s.SetManualDeposit(10, "dollars")
	require.ErrorIs(t, err, ErrInvalidDeposit)
}

func TestPersistedRoundTrip(t *testing.T) {
	s := newTestSession(t, "a", "b")
	require.NoError(t, s.SetMode(ModeCheckOut))
	_, err := s.SetManualDeposit(750, "GBP")
	require.NoError(t, err)
	st := s.Persisted()

	restored := NewSession("other")
	require.NoError(t, restored.RestorePersisted(st))
	v := restored.View()
	assert.Equal(t, "sess-1", v.SessionID)
	assert.Equal(t, ModeCheckOut, v.Mode)
	assert.Len(t, v.Rooms, 2)
	require.NotNil(t, v.Deposit)
	assert.Equal(t, 750.0, v.Deposit.Amount)
	assert.Equal(t, DepositManual, v.Deposit.Source)
}
