package workflow

import (
	"context"
	"log/slog"
	"time"

	"condish/internal/config"
	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/services/llm"
	"condish/internal/services/remote"
	"condish/internal/services/vision"
)

// FloorPlanAnalyzer extracts rooms from a floor-plan image.
type FloorPlanAnalyzer interface {
	ParseFloorPlan(ctx context.Context, img inspection.Image) (floorplan.RawPlan, error)
}

// DamageAnalyzer compares a frame with its references, or inspects it alone
// when the ticket carries none.
type DamageAnalyzer interface {
	Analyze(ctx context.Context, t inspection.ScanTicket) (inspection.AnalysisResult, error)
}

// RepairEstimator prices repairs for a set of findings.
type RepairEstimator interface {
	Quote(ctx context.Context, t inspection.QuoteTicket) (inspection.RepairQuote, error)
}

// SettlementEstimator proposes a deposit deduction breakdown.
type SettlementEstimator interface {
	ComputeDeductions(ctx context.Context, t inspection.SettlementTicket) (*inspection.EstimatorResult, error)
}

// LeaseExtractor reads deposit and party details from a lease.
type LeaseExtractor interface {
	ExtractLease(ctx context.Context, doc inspection.Image) (inspection.LeaseInfo, error)
}

// Collaborators bundles the external services the manager calls. Any field
// may be nil; the corresponding operation then fails as unavailable, except
// the settlement estimator whose absence triggers the local fallback.
type Collaborators struct {
	FloorPlans  FloorPlanAnalyzer
	Damage      DamageAnalyzer
	Repairs     RepairEstimator
	Settlements SettlementEstimator
	Leases      LeaseExtractor
}

// Backend is a single implementation of every collaborator.
type Backend interface {
	FloorPlanAnalyzer
	DamageAnalyzer
	RepairEstimator
	SettlementEstimator
	LeaseExtractor
}

// FromBackend fills every collaborator from one backend.
func FromBackend(b Backend) Collaborators {
	return Collaborators{FloorPlans: b, Damage: b, Repairs: b, Settlements: b, Leases: b}
}

// NewCollaborators builds the backend selected by cfg.Inspection.Collaborators.
// The remote client is returned as well so callers can health-check it; it is
// nil when the LLM backs the collaborators.
func NewCollaborators(cfg *config.Config, logger *slog.Logger) (Collaborators, *remote.Client, error) {
	if cfg.UsesRemoteCollaborators() {
		client, err := remote.New(remote.Config{
			BaseURL:    cfg.Remote.BaseURL,
			Timeout:    time.Duration(cfg.Remote.TimeoutSeconds) * time.Second,
			RetryCount: cfg.Remote.RetryCount,
		}, logger)
		if err != nil {
			return Collaborators{}, nil, err
		}
		return FromBackend(client), client, nil
	}
	llmCfg := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
	return FromBackend(vision.New(client, logger)), nil, nil
}
