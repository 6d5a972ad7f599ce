package api

import (
	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/preflight"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

// Room describes a registry entry.
type Room struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Type     string               `json:"type"`
	Priority string               `json:"priority"`
	Features []string             `json:"features,omitempty"`
	Tips     []string             `json:"tips,omitempty"`
	Position *inspection.Position `json:"position,omitempty"`
}

// RoomStatus is a room plus its per-session state.
type RoomStatus struct {
	Room
	References int  `json:"references"`
	Inspected  bool `json:"inspected"`
	Current    bool `json:"current"`
}

// RoomDetail is a single room with its inspection checklist.
type RoomDetail struct {
	RoomStatus
	Checklist []string `json:"checklist"`
}

// Finding is an active ledger entry.
type Finding struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	CapturedAt  string `json:"capturedAt,omitempty"`
	HasImage    bool   `json:"hasImage"`
}

// IgnoredFinding is a dismissed ledger entry.
type IgnoredFinding struct {
	Finding
	Reason    string `json:"reason,omitempty"`
	IgnoredAt string `json:"ignoredAt,omitempty"`
}

// Candidate is a buffered analyzer proposal or a caller-supplied finding.
type Candidate struct {
	Type        string `json:"type" validate:"required,max=120"`
	Severity    string `json:"severity,omitempty" validate:"omitempty,oneof=minor moderate major critical"`
	Location    string `json:"location" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Size        string `json:"size,omitempty"`
	LikelyCause string `json:"likelyCause,omitempty"`
	HasImage    bool   `json:"hasImage"`
}

// OpState is the last known state of a collaborator-dependent operation.
type OpState struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// OpStates groups the operation states.
type OpStates struct {
	Scan       OpState `json:"scan"`
	Quote      OpState `json:"quote"`
	Settlement OpState `json:"settlement"`
	Lease      OpState `json:"lease"`
}

// Lease is the lease extractor's answer.
type Lease struct {
	DepositAmount   float64  `json:"depositAmount"`
	DepositCurrency string   `json:"depositCurrency,omitempty"`
	Conditions      []string `json:"conditions,omitempty"`
	PropertyAddress string   `json:"propertyAddress,omitempty"`
	TenantName      string   `json:"tenantName,omitempty"`
	LandlordName    string   `json:"landlordName,omitempty"`
	LeaseStart      string   `json:"leaseStart,omitempty"`
	LeaseEnd        string   `json:"leaseEnd,omitempty"`
	MonthlyRent     float64  `json:"monthlyRent,omitempty"`
}

// Settlement is the deposit breakdown.
type Settlement struct {
	Kind            string                 `json:"kind"`
	OriginalDeposit float64                `json:"originalDeposit"`
	Currency        string                 `json:"currency,omitempty"`
	TotalDeductions float64                `json:"totalDeductions"`
	DepositReturn   float64                `json:"depositReturn"`
	LineItems       []inspection.Deduction `json:"lineItems"`
	Summary         string                 `json:"summary,omitempty"`
	LandlordNotes   string                 `json:"landlordNotes,omitempty"`
	PendingReason   string                 `json:"pendingReason,omitempty"`
	Stale           bool                   `json:"stale"`
	ComputedAt      string                 `json:"computedAt,omitempty"`
}

// SessionView is the whole session.
type SessionView struct {
	SessionID   string                  `json:"sessionId"`
	Mode        string                  `json:"mode"`
	Generation  uint64                  `json:"generation"`
	CreatedAt   string                  `json:"createdAt,omitempty"`
	State       string                  `json:"state"`
	Cursor      int                     `json:"cursor"`
	CurrentRoom *Room                   `json:"currentRoom,omitempty"`
	Rooms       []RoomStatus            `json:"rooms"`
	Inspected   []string                `json:"inspected"`
	Progress    float64                 `json:"progress"`
	Findings    []Finding               `json:"findings"`
	Ignored     []IgnoredFinding        `json:"ignored"`
	Buffer      []Candidate             `json:"buffer"`
	Advisory    string                  `json:"advisory,omitempty"`
	Deposit     *inspection.Deposit     `json:"deposit,omitempty"`
	Quote       *inspection.RepairQuote `json:"quote,omitempty"`
	Lease       *Lease                  `json:"lease,omitempty"`
	Settlement  *Settlement             `json:"settlement,omitempty"`
	Ops         OpStates                `json:"ops"`
}

// SessionSummary is the short form shown by status.
type SessionSummary struct {
	SessionID    string   `json:"sessionId"`
	Generation   uint64   `json:"generation"`
	Mode         string   `json:"mode"`
	State        string   `json:"state"`
	Rooms        int      `json:"rooms"`
	Findings     int      `json:"findings"`
	Persistence  bool     `json:"persistence"`
	LastError    string   `json:"lastError,omitempty"`
	PersistError string   `json:"persistError,omitempty"`
	Ops          OpStates `json:"ops"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	StoreBackend  string             `json:"storeBackend"`
	LockFilePath  string             `json:"lockFilePath"`
	Collaborators string             `json:"collaborators"`
	Session       SessionSummary     `json:"session"`
	Preflight     []preflight.Result `json:"preflight"`
}

// LayoutResponse carries the 3D floor-plan boxes.
type LayoutResponse struct {
	Rooms []floorplan.LayoutRoom `json:"rooms"`
}

// RoomsResponse wraps a room list.
type RoomsResponse struct {
	Rooms []Room `json:"rooms"`
}

// ScanResponse reports how an analysis was applied.
type ScanResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
	Buffered int    `json:"buffered"`
	Message  string `json:"message,omitempty"`
	Advisory string `json:"advisory,omitempty"`
}

// ReferenceResponse reports the room's reference count after an append.
type ReferenceResponse struct {
	RoomID     string `json:"roomId"`
	References int    `json:"references"`
}

// RoomResponse wraps the room a traversal operation acted on.
type RoomResponse struct {
	Room Room `json:"room"`
}

// LeaseResponse reports a lease extraction.
type LeaseResponse struct {
	Lease          Lease `json:"lease"`
	DepositApplied bool  `json:"depositApplied"`
}

// ResetResponse reports the session ID after a reset.
type ResetResponse struct {
	SessionID string `json:"sessionId"`
	Scope     string `json:"scope"`
}

// RoomInput is a room supplied by a client. It mirrors the floor-plan
// analyzer's room shape.
type RoomInput struct {
	ID       string               `json:"id,omitempty" validate:"omitempty,max=64"`
	Name     string               `json:"name" validate:"max=120"`
	Type     string               `json:"type,omitempty"`
	Priority string               `json:"priority,omitempty" validate:"omitempty,oneof=low normal medium high urgent"`
	Features []string             `json:"features,omitempty"`
	Tips     []string             `json:"tips,omitempty"`
	Position *inspection.Position `json:"position,omitempty"`
}

// RoomsRequest loads a new room list.
type RoomsRequest struct {
	Rooms []RoomInput `json:"rooms" validate:"required,min=1,max=100,dive"`
	Route []string    `json:"route,omitempty"`
}

// ResetRequest selects the reset scope.
type ResetRequest struct {
	Scope string `json:"scope" validate:"omitempty,oneof=inspection full"`
}

// ModeRequest switches the inspection mode.
type ModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=checkin checkout"`
}

// ImageRequest carries an image or document.
type ImageRequest struct {
	Image    []byte `json:"image" validate:"required"`
	MimeType string `json:"mimeType,omitempty"`
}

// LeaseRequest carries a lease document.
type LeaseRequest struct {
	Document []byte `json:"document" validate:"required"`
	MimeType string `json:"mimeType,omitempty"`
}

// GoToRequest moves the traversal cursor.
type GoToRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

// CompleteRequest finalizes the current room. Omitting findings commits the
// candidate buffer; an empty list commits no findings.
type CompleteRequest struct {
	Findings []Candidate `json:"findings" validate:"omitempty,dive"`
}

// IgnoreRequest moves a finding to the ignored list.
type IgnoreRequest struct {
	Type     string `json:"type" validate:"required"`
	Location string `json:"location" validate:"required"`
	RoomID   string `json:"roomId" validate:"required"`
	Reason   string `json:"reason,omitempty" validate:"max=500"`
}

// DepositRequest sets the manual deposit.
type DepositRequest struct {
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency,omitempty" validate:"omitempty,alpha,len=3"`
}
