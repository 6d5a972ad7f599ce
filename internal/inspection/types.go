package inspection

import (
	"strings"
	"time"

	"condish/internal/textutil"
)

// RoomType classifies a room for checklists and layout colouring.
type RoomType string

const (
	RoomLiving   RoomType = "living"
	RoomBedroom  RoomType = "bedroom"
	RoomBathroom RoomType = "bathroom"
	RoomKitchen  RoomType = "kitchen"
	RoomHallway  RoomType = "hallway"
	RoomOther    RoomType = "other"
)

// ParseRoomType maps free-form labels onto the known room types. Unknown
// values become RoomOther.
func ParseRoomType(value string) RoomType {
	switch textutil.NormalizeField(value) {
	case "living", "living room", "lounge", "family room":
		return RoomLiving
	case "bedroom", "bed room", "master bedroom":
		return RoomBedroom
	case "bathroom", "bath", "restroom", "toilet", "wc":
		return RoomBathroom
	case "kitchen":
		return RoomKitchen
	case "hallway", "hall", "corridor", "entry", "entryway":
		return RoomHallway
	default:
		return RoomOther
	}
}

// Priority is the inspection priority of a room.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts analyzer labels; "medium" and unknown values map to
// PriorityNormal.
func ParsePriority(value string) Priority {
	switch textutil.NormalizeField(value) {
	case "low":
		return PriorityLow
	case "high", "urgent":
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// Severity grades a damage finding.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// ParseSeverity maps analyzer labels onto the four severities. Unknown labels
// are treated as moderate.
func ParseSeverity(value string) Severity {
	switch textutil.NormalizeField(value) {
	case "minor", "low", "cosmetic":
		return SeverityMinor
	case "major", "high", "severe":
		return SeverityMajor
	case "critical":
		return SeverityCritical
	default:
		return SeverityModerate
	}
}

// Rank orders severities from minor (1) to critical (4).
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeverityMajor:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Mode is the inspection phase.
type Mode string

const (
	ModeCheckIn  Mode = "checkin"
	ModeCheckOut Mode = "checkout"
)

// ParseMode validates a mode label.
func ParseMode(value string) (Mode, error) {
	switch Mode(textutil.NormalizeField(value)) {
	case ModeCheckIn:
		return ModeCheckIn, nil
	case ModeCheckOut:
		return ModeCheckOut, nil
	default:
		return "", ErrInvalidMode
	}
}

// Position places a room on the floor plan grid.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Room is immutable once loaded into the registry.
type Room struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     RoomType  `json:"type"`
	Priority Priority  `json:"priority"`
	Features []string  `json:"features,omitempty"`
	Tips     []string  `json:"tips,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// Image is an opaque image blob.
type Image struct {
	Data     []byte
	MimeType string
}

// ReferenceImageSet holds the check-in baseline for one room.
type ReferenceImageSet struct {
	Images     []Image
	CapturedAt time.Time
}

// DamageCandidate is a finding proposed by the damage analyzer (or a caller)
// before it is stamped with room context.
type DamageCandidate struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Size        string   `json:"size,omitempty"`
	LikelyCause string   `json:"likelyCause,omitempty"`
	HasImage    bool     `json:"hasImage"`
}

// Identity returns the deduplication key the candidate would have in room.
func (c DamageCandidate) Identity(roomID string) Identity {
	return NewIdentity(c.Type, c.Location, roomID)
}

// Finding is an active damage ledger entry.
type Finding struct {
	Type        string
	Severity    Severity
	Location    string
	Description string
	RoomID      string
	RoomName    string
	CapturedAt  time.Time
	HasImage    bool
}

// Identity returns the finding's deduplication key.
func (f Finding) Identity() Identity {
	return NewIdentity(f.Type, f.Location, f.RoomID)
}

// IgnoredFinding is a finding a human dismissed.
type IgnoredFinding struct {
	Finding
	Reason    string
	IgnoredAt time.Time
}

// Identity is the deduplication tuple. Type and location are normalized
// (trimmed, lowercased, whitespace collapsed); room IDs compare exactly.
type Identity struct {
	Type     string
	Location string
	RoomID   string
}

// NewIdentity builds a normalized identity.
func NewIdentity(damageType, location, roomID string) Identity {
	return Identity{
		Type:     textutil.NormalizeField(damageType),
		Location: textutil.NormalizeField(location),
		RoomID:   strings.TrimSpace(roomID),
	}
}

// DepositSource records where the deposit amount came from.
type DepositSource string

const (
	DepositManual DepositSource = "manual"
	DepositLease  DepositSource = "lease"
)

// Deposit is the security deposit the settlement is computed against.
type Deposit struct {
	Amount   float64       `json:"amount"`
	Currency string        `json:"currency"`
	Source   DepositSource `json:"source"`
}

// QuoteLine is one material or labor line of a repair estimate.
type QuoteLine struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
	ForDamage   string  `json:"forDamage,omitempty"`
}

// RepairQuote is the repair estimator's answer.
type RepairQuote struct {
	LineItems      []QuoteLine `json:"lineItems"`
	MaterialsTotal float64     `json:"materialsTotal"`
	LaborTotal     float64     `json:"laborTotal"`
	GrandTotal     float64     `json:"grandTotal"`
	Currency       string      `json:"currency"`
	Notes          string      `json:"notes,omitempty"`
}

// LeaseInfo is what the lease extractor found in a lease document.
type LeaseInfo struct {
	DepositAmount   float64
	DepositCurrency string
	Conditions      []string
	PropertyAddress string
	TenantName      string
	LandlordName    string
	LeaseStart      string
	LeaseEnd        string
	MonthlyRent     float64
}

// AnalysisStatus is the normalized damage analyzer verdict.
type AnalysisStatus string

const (
	AnalysisOK            AnalysisStatus = "ok"
	AnalysisWrongRoom     AnalysisStatus = "wrong_room"
	AnalysisSceneMismatch AnalysisStatus = "scene_mismatch"
	AnalysisError         AnalysisStatus = "error"
)

// AnalysisResult is the damage analyzer's answer for one frame.
type AnalysisResult struct {
	Status           AnalysisStatus
	DamageFound      bool
	Damages          []DamageCandidate
	Message          string
	Suggestion       string
	OverallCondition string
	RepairUrgency    string
}

// OpStatus tracks a collaborator-dependent operation.
type OpStatus string

const (
	OpIdle    OpStatus = "idle"
	OpPending OpStatus = "pending"
	OpSettled OpStatus = "settled"
	OpFailed  OpStatus = "failed"
)

// OpState is the last known state of a collaborator-dependent operation.
type OpState struct {
	Status    OpStatus
	Error     string
	UpdatedAt time.Time
}
