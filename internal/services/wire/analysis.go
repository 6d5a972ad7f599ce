package wire

import (
	"strings"

	"condish/internal/inspection"
	"condish/internal/textutil"
)

// DamageKeywords drive the heuristic used when an analyzer reply is not JSON.
var DamageKeywords = []string{
	"damage", "crack", "hole", "dent", "scratch", "stain",
	"peel", "mold", "water", "broken", "chip", "wear",
}

// Damage is one damage entry of an analyzer reply.
type Damage struct {
	Type        string `json:"type"`
	Location    string `json:"location"`
	Severity    string `json:"severity"`
	Size        string `json:"size,omitempty"`
	Description string `json:"description"`
	LikelyCause string `json:"likely_cause,omitempty"`
	IsNew       *bool  `json:"is_new,omitempty"`
}

// AnalyzeRequest is the remote /analyze body.
type AnalyzeRequest struct {
	CurrentImage    string   `json:"current_image"`
	ReferenceImages []string `json:"reference_images"`
}

// StandaloneRequest is the remote /analyze/standalone body.
type StandaloneRequest struct {
	Image string `json:"image"`
}

// AnalyzeResponse is a damage analyzer reply.
type AnalyzeResponse struct {
	Status                string   `json:"status"`
	SameRoom              *bool    `json:"same_room,omitempty"`
	DamageFound           bool     `json:"damage_found"`
	AngleMatchesReference *bool    `json:"angle_matches_reference,omitempty"`
	Damages               []Damage `json:"damages"`
	PreExistingNoted      []string `json:"pre_existing_noted,omitempty"`
	OverallCondition      string   `json:"overall_condition,omitempty"`
	Message               string   `json:"message"`
	Suggestion            string   `json:"suggestion,omitempty"`
	RepairUrgency         string   `json:"repair_urgency,omitempty"`
}

// NormalizeStatus maps analyzer status labels onto the four session
// statuses.
func NormalizeStatus(raw string) inspection.AnalysisStatus {
	switch textutil.NormalizeField(raw) {
	case "ok", "new_damage_found", "no_new_damage", "damage_found", "no_damage":
		return inspection.AnalysisOK
	case "wrong_room":
		return inspection.AnalysisWrongRoom
	case "scene_mismatch":
		return inspection.AnalysisSceneMismatch
	default:
		return inspection.AnalysisError
	}
}

// ToResult converts a reply into an analysis result. A same-room reply whose
// angle does not match the reference is reported as a scene mismatch.
// Damages explicitly marked as not new are dropped.
func (r AnalyzeResponse) ToResult() inspection.AnalysisResult {
	status := NormalizeStatus(r.Status)
	if status == inspection.AnalysisOK && r.SameRoom != nil && !*r.SameRoom {
		status = inspection.AnalysisWrongRoom
	}
	if status == inspection.AnalysisOK && r.AngleMatchesReference != nil && !*r.AngleMatchesReference {
		status = inspection.AnalysisSceneMismatch
	}
	out := inspection.AnalysisResult{
		Status:           status,
		DamageFound:      r.DamageFound,
		Message:          strings.TrimSpace(r.Message),
		Suggestion:       strings.TrimSpace(r.Suggestion),
		OverallCondition: strings.TrimSpace(r.OverallCondition),
		RepairUrgency:    strings.TrimSpace(r.RepairUrgency),
	}
	for _, d := range r.Damages {
		if d.IsNew != nil && !*d.IsNew {
			continue
		}
		if strings.TrimSpace(d.Type) == "" && strings.TrimSpace(d.Location) == "" {
			continue
		}
		out.Damages = append(out.Damages, inspection.DamageCandidate{
			Type:        textutil.CollapseSpace(d.Type),
			Severity:    inspection.ParseSeverity(d.Severity),
			Location:    textutil.CollapseSpace(d.Location),
			Description: strings.TrimSpace(d.Description),
			Size:        strings.TrimSpace(d.Size),
			LikelyCause: strings.TrimSpace(d.LikelyCause),
			HasImage:    true,
		})
	}
	if len(out.Damages) > 0 {
		out.DamageFound = true
	}
	return out
}

// StandaloneResult converts a standalone reply. Without references there is
// no room or angle to disagree with, so any non-error reply is ok.
func (r AnalyzeResponse) StandaloneResult() inspection.AnalysisResult {
	if NormalizeStatus(r.Status) != inspection.AnalysisError {
		r.Status = "ok"
		r.SameRoom = nil
		r.AngleMatchesReference = nil
	}
	return r.ToResult()
}

// HeuristicResult interprets a non-JSON analyzer reply: damage keywords
// without an explicit "no damage" mark damage as found, with no candidates.
func HeuristicResult(text string) inspection.AnalysisResult {
	lower := strings.ToLower(text)
	found := textutil.ContainsKeyword(text, DamageKeywords) && !strings.Contains(lower, "no damage")
	return inspection.AnalysisResult{
		Status:      inspection.AnalysisOK,
		DamageFound: found,
		Message:     strings.TrimSpace(text),
	}
}

// FromFindings renders ledger findings as wire damages for the estimators.
func FromFindings(findings []inspection.Finding) []Damage {
	out := make([]Damage, 0, len(findings))
	for _, f := range findings {
		out = append(out, Damage{
			Type:        f.Type,
			Location:    f.Location + " (" + f.RoomName + ")",
			Severity:    string(f.Severity),
			Description: f.Description,
		})
	}
	return out
}
