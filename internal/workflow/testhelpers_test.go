package workflow_test

import (
	"context"
	"sync"

	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/notifications"
)

type stubNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	last   map[notifications.Event]notifications.Payload
}

func (s *stubNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.last == nil {
		s.last = make(map[notifications.Event]notifications.Payload)
	}
	s.last[event] = payload
	return nil
}

func (s *stubNotifier) Events() []notifications.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notifications.Event(nil), s.events...)
}

func (s *stubNotifier) Payload(event notifications.Event) notifications.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[event]
}

// fakeBackend implements every collaborator. Unset hooks return zero values.
type fakeBackend struct {
	plan       func(ctx context.Context, img inspection.Image) (floorplan.RawPlan, error)
	analyze    func(ctx context.Context, t inspection.ScanTicket) (inspection.AnalysisResult, error)
	quote      func(ctx context.Context, t inspection.QuoteTicket) (inspection.RepairQuote, error)
	deductions func(ctx context.Context, t inspection.SettlementTicket) (*inspection.EstimatorResult, error)
	lease      func(ctx context.Context, doc inspection.Image) (inspection.LeaseInfo, error)

	mu      sync.Mutex
	tickets []inspection.ScanTicket
}

func (f *fakeBackend) ParseFloorPlan(ctx context.Context, img inspection.Image) (floorplan.RawPlan, error) {
	if f.plan == nil {
		return floorplan.RawPlan{}, nil
	}
	return f.plan(ctx, img)
}

func (f *fakeBackend) Analyze(ctx context.Context, t inspection.ScanTicket) (inspection.AnalysisResult, error) {
	f.mu.Lock()
	f.tickets = append(f.tickets, t)
	f.mu.Unlock()
	if f.analyze == nil {
		return inspection.AnalysisResult{Status: inspection.AnalysisOK}, nil
	}
	return f.analyze(ctx, t)
}

func (f *fakeBackend) Quote(ctx context.Context, t inspection.QuoteTicket) (inspection.RepairQuote, error) {
	if f.quote == nil {
		return inspection.RepairQuote{Currency: t.Currency}, nil
	}
	return f.quote(ctx, t)
}

func (f *fakeBackend) ComputeDeductions(ctx context.Context, t inspection.SettlementTicket) (*inspection.EstimatorResult, error) {
	if f.deductions == nil {
		return nil, nil
	}
	return f.deductions(ctx, t)
}

func (f *fakeBackend) ExtractLease(ctx context.Context, doc inspection.Image) (inspection.LeaseInfo, error) {
	if f.lease == nil {
		return inspection.LeaseInfo{}, nil
	}
	return f.lease(ctx, doc)
}

func (f *fakeBackend) scanTickets() []inspection.ScanTicket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]inspection.ScanTicket(nil), f.tickets...)
}

var (
	frame = inspection.Image{Data: []byte("frame"), MimeType: "image/jpeg"}
	rooms = []inspection.Room{
		{ID: "hall", Name: "Hall", Type: inspection.RoomHallway},
		{ID: "kitchen", Name: "Kitchen", Type: inspection.RoomKitchen},
	}
)
