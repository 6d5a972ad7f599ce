package inspection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func identities(findings []Finding) []Identity {
	out := make([]Identity, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Identity())
	}
	return out
}

func assertDisjoint(t *testing.T, l *Ledger) {
	t.Helper()
	active := make(map[Identity]struct{})
	for _, f := range l.Active() {
		active[f.Identity()] = struct{}{}
	}
	for _, f := range l.Ignored() {
		_, clash := active[f.Identity()]
		assert.False(t, clash, "finding %+v is both active and ignored", f.Identity())
	}
}

func TestRecordRoomScanSupersedesPriorFindings(t *testing.T) {
	var l Ledger
	kitchen := Room{ID: "kitchen", Name: "Kitchen"}
	hall := Room{ID: "hall", Name: "Hall"}

	l.RecordRoomScan(hall, []DamageCandidate{{Type: "scuff", Location: "door", Severity: SeverityMinor}}, fixedNow)
	l.RecordRoomScan(kitchen, []DamageCandidate{
		{Type: "stain", Location: "floor", Severity: SeverityMinor},
		{Type: "crack", Location: "tile", Severity: SeverityMajor},
	}, fixedNow)
	l.RecordRoomScan(kitchen, []DamageCandidate{{Type: "burn", Location: "counter", Severity: SeverityModerate}}, fixedNow)

	assert.ElementsMatch(t, []Identity{
		NewIdentity("scuff", "door", "hall"),
		NewIdentity("burn", "counter", "kitchen"),
	}, identities(l.Active()))
	for _, f := range l.Active() {
		if f.RoomID == "kitchen" {
			assert.Equal(t, "Kitchen", f.RoomName)
			assert.Equal(t, fixedNow, f.CapturedAt)
		}
	}
}

func TestRecordRoomScanDedupesByNormalizedIdentity(t *testing.T) {
	var l Ledger
	room := Room{ID: "a", Name: "A"}
	n := l.RecordRoomScan(room, []DamageCandidate{
		{Type: "Crack", Location: "north wall", Severity: SeverityMinor},
		{Type: "crack ", Location: "North  Wall", Severity: SeverityMajor},
	}, fixedNow)
	require.Equal(t, 1, n)
	require.Len(t, l.Active(), 1)
	assert.Equal(t, SeverityMajor, l.Active()[0].Severity)
}

func TestIgnoreRestoreRoundTrip(t *testing.T) {
	var l Ledger
	room := Room{ID: "a", Name: "A"}
	l.RecordRoomScan(room, []DamageCandidate{
		{Type: "crack", Location: "north wall", Severity: SeverityMajor},
		{Type: "stain", Location: "carpet", Severity: SeverityMinor},
	}, fixedNow)
	before := identities(l.Active())

	entry, err := l.Ignore(NewIdentity(" Stain", "CARPET", "a"), "pre-existing", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "pre-existing", entry.Reason)
	assert.Len(t, l.Active(), 1)
	assert.Len(t, l.Ignored(), 1)
	assertDisjoint(t, &l)

	_, err = l.Restore(0)
	require.NoError(t, err)
	assert.ElementsMatch(t, before, identities(l.Active()))
	assert.Empty(t, l.Ignored())
}

func TestIgnoreUnknownFinding(t *testing.T) {
	var l Ledger
	_, err := l.Ignore(NewIdentity("crack", "wall", "a"), "", fixedNow)
	require.ErrorIs(t, err, ErrFindingNotFound)
}

func TestRestoreAndRemoveOutOfRange(t *testing.T) {
	var l Ledger
	_, err := l.Restore(0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = l.Remove(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRescanKeepsIgnoredFindingIgnored(t *testing.T) {
	var l Ledger
	room := Room{ID: "a", Name: "A"}
	crack := DamageCandidate{Type: "crack", Location: "north wall", Severity: SeverityMajor}
	l.RecordRoomScan(room, []DamageCandidate{crack}, fixedNow)
	_, err := l.Ignore(crack.Identity("a"), "known", fixedNow)
	require.NoError(t, err)

	l.RecordRoomScan(room, []DamageCandidate{crack, {Type: "dent", Location: "door", Severity: SeverityMinor}}, fixedNow)
	assert.Equal(t, []Identity{NewIdentity("dent", "door", "a")}, identities(l.Active()))
	assertDisjoint(t, &l)
}

func TestRemoveDeletesOutright(t *testing.T) {
	var l Ledger
	l.RecordRoomScan(Room{ID: "a"}, []DamageCandidate{{Type: "crack", Location: "wall"}}, fixedNow)
	f, err := l.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "crack", f.Type)
	assert.Equal(t, SeverityModerate, f.Severity)
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Ignored())
}
