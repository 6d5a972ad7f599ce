package wire

import (
	"encoding/base64"
	"strings"

	"condish/internal/floorplan"
	"condish/internal/inspection"
)

// FloorPlanRequest is the remote /floor-plan/parse body.
type FloorPlanRequest struct {
	ProjectID      string `json:"project_id"`
	FloorPlanImage string `json:"floor_plan_image"`
	MimeType       string `json:"mime_type,omitempty"`
}

// FloorPlanResponse is the floor-plan analyzer reply. The remote API nests
// the plan under floor_plan; the model replies with it at top level.
type FloorPlanResponse struct {
	Status    string             `json:"status,omitempty"`
	Message   string             `json:"message,omitempty"`
	FloorPlan *floorplan.RawPlan `json:"floor_plan,omitempty"`
	floorplan.RawPlan
}

// Plan returns the nested plan when present.
func (r FloorPlanResponse) Plan() floorplan.RawPlan {
	if r.FloorPlan != nil {
		return *r.FloorPlan
	}
	return r.RawPlan
}

// LeaseRequest is the remote /lease/extract-info body.
type LeaseRequest struct {
	ProjectID string `json:"project_id"`
	Document  string `json:"document"`
	MimeType  string `json:"mime_type"`
}

// Money is an amount with its currency.
type Money struct {
	Amount     *float64 `json:"amount"`
	Currency   string   `json:"currency"`
	Conditions string   `json:"conditions,omitempty"`
}

// LeaseResponse is the lease extractor reply.
type LeaseResponse struct {
	Status          string `json:"status,omitempty"`
	Message         string `json:"message,omitempty"`
	PropertyAddress string `json:"property_address"`
	TenantName      string `json:"tenant_name"`
	LandlordName    string `json:"landlord_name"`
	LeaseStartDate  string `json:"lease_start_date"`
	LeaseEndDate    string `json:"lease_end_date"`
	MonthlyRent     *Money `json:"monthly_rent"`
	SecurityDeposit *Money `json:"security_deposit"`
	// The remote API nests the extraction under lease_info.
	LeaseInfo *LeaseResponse `json:"lease_info,omitempty"`
}

// ToLeaseInfo converts the reply.
func (r LeaseResponse) ToLeaseInfo() inspection.LeaseInfo {
	if r.LeaseInfo != nil {
		return r.LeaseInfo.ToLeaseInfo()
	}
	info := inspection.LeaseInfo{
		PropertyAddress: strings.TrimSpace(r.PropertyAddress),
		TenantName:      strings.TrimSpace(r.TenantName),
		LandlordName:    strings.TrimSpace(r.LandlordName),
		LeaseStart:      strings.TrimSpace(r.LeaseStartDate),
		LeaseEnd:        strings.TrimSpace(r.LeaseEndDate),
	}
	if d := r.SecurityDeposit; d != nil {
		if d.Amount != nil {
			info.DepositAmount = *d.Amount
		}
		info.DepositCurrency = strings.ToUpper(strings.TrimSpace(d.Currency))
		if c := strings.TrimSpace(d.Conditions); c != "" {
			info.Conditions = []string{c}
		}
	}
	if m := r.MonthlyRent; m != nil && m.Amount != nil {
		info.MonthlyRent = *m.Amount
	}
	return info
}

// EncodeImage base64-encodes an image for a JSON body.
func EncodeImage(img inspection.Image) string {
	return base64.StdEncoding.EncodeToString(img.Data)
}
