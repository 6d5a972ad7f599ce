package daemon

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"condish/internal/api"
	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/report"
	"condish/internal/services"
	"condish/internal/textutil"
)

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if wantsFlag(r, "refresh") {
		s.daemon.RefreshPreflight(r.Context())
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		StoreBackend:  status.StoreBackend,
		LockFilePath:  status.LockFilePath,
		Collaborators: status.Collaborators,
		Session:       api.FromStatusSummary(status.Session),
		Preflight:     status.Preflight,
	})
}

func (s *apiServer) handleSession(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.FromView(s.manager.View()))
}

func (s *apiServer) handleReset(w http.ResponseWriter, r *http.Request) {
	var req api.ResetRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Scope == "full" {
		id := s.manager.ResetFull(r.Context())
		s.writeJSON(w, http.StatusOK, api.ResetResponse{SessionID: id, Scope: "full"})
		return
	}
	s.manager.ResetInspection(r.Context())
	s.writeJSON(w, http.StatusOK, api.ResetResponse{SessionID: s.manager.View().SessionID, Scope: "inspection"})
}

func (s *apiServer) handleMode(w http.ResponseWriter, r *http.Request) {
	var req api.ModeRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := inspection.ParseMode(req.Mode)
	if err == nil {
		err = s.manager.SetMode(r.Context(), mode)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromView(s.manager.View()))
}

func (s *apiServer) handleLoadRooms(w http.ResponseWriter, r *http.Request) {
	var req api.RoomsRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rooms, err := s.manager.LoadRawPlan(r.Context(), req.Plan())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.RoomsResponse{Rooms: api.FromRooms(rooms)})
}

func (s *apiServer) handleFloorPlan(w http.ResponseWriter, r *http.Request) {
	img, ok := s.decodeImage(w, r)
	if !ok {
		return
	}
	rooms, err := s.manager.ParseFloorPlan(r.Context(), img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.RoomsResponse{Rooms: api.FromRooms(rooms)})
}

func (s *apiServer) handleRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.manager.Room(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.RoomDetail{
		RoomStatus: api.FromRoomView(room),
		Checklist:  floorplan.Checklist(room.Room),
	})
}

func (s *apiServer) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.LayoutResponse{Rooms: floorplan.Layout(s.manager.View().Rooms)})
}

func (s *apiServer) handleAddReference(w http.ResponseWriter, r *http.Request) {
	img, ok := s.decodeImage(w, r)
	if !ok {
		return
	}
	roomID := r.PathValue("id")
	count, err := s.manager.AddReference(r.Context(), roomID, img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ReferenceResponse{RoomID: roomID, References: count})
}

func (s *apiServer) handleStart(w http.ResponseWriter, r *http.Request) {
	room, err := s.manager.Start(r.Context())
	s.writeRoom(w, r, room, err)
}

func (s *apiServer) handleGoTo(w http.ResponseWriter, r *http.Request) {
	var req api.GoToRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.manager.GoTo(r.Context(), req.RoomID)
	s.writeRoom(w, r, room, err)
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	img, ok := s.decodeImage(w, r)
	if !ok {
		return
	}
	if wantsFlag(r, "async") {
		if err := s.manager.ScanAsync(img); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, api.FromView(s.manager.View()))
		return
	}
	outcome, err := s.manager.Scan(r.Context(), img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromScanOutcome(outcome))
}

func (s *apiServer) handleDismiss(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	candidate, err := s.manager.DismissCandidate(r.Context(), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromCandidate(candidate))
}

func (s *apiServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req api.CompleteRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.manager.CompleteRoom(r.Context(), req.Candidates())
	s.writeRoom(w, r, room, err)
}

func (s *apiServer) handleSkip(w http.ResponseWriter, r *http.Request) {
	room, err := s.manager.SkipRoom(r.Context())
	s.writeRoom(w, r, room, err)
}

func (s *apiServer) handleIgnore(w http.ResponseWriter, r *http.Request) {
	var req api.IgnoreRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.manager.IgnoreFinding(r.Context(), inspection.NewIdentity(req.Type, req.Location, req.RoomID), req.Reason)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.IgnoredFinding{
		Finding:   api.FromFinding(entry.Finding),
		Reason:    entry.Reason,
		IgnoredAt: api.FormatTime(entry.IgnoredAt),
	})
}

func (s *apiServer) handleRestore(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	finding, err := s.manager.RestoreFinding(r.Context(), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromFinding(finding))
}

func (s *apiServer) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	finding, err := s.manager.RemoveFinding(r.Context(), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromFinding(finding))
}

func (s *apiServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req api.DepositRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	dep, err := s.manager.SetDeposit(r.Context(), req.Amount, req.Currency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dep)
}

func (s *apiServer) handleLease(w http.ResponseWriter, r *http.Request) {
	var req api.LeaseRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc := inspection.Image{Data: req.Document, MimeType: req.MimeType}
	if wantsFlag(r, "async") {
		if err := s.manager.ExtractLeaseAsync(doc); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, api.FromView(s.manager.View()))
		return
	}
	info, applied, err := s.manager.ExtractLease(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.LeaseResponse{Lease: api.FromLease(info), DepositApplied: applied})
}

func (s *apiServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	if wantsFlag(r, "async") {
		s.manager.RequestQuoteAsync()
		s.writeJSON(w, http.StatusAccepted, api.FromView(s.manager.View()))
		return
	}
	quote, err := s.manager.RequestQuote(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quote)
}

func (s *apiServer) handleSettlement(w http.ResponseWriter, r *http.Request) {
	s.settlement(w, r, false)
}

func (s *apiServer) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	s.settlement(w, r, true)
}

func (s *apiServer) settlement(w http.ResponseWriter, r *http.Request, force bool) {
	if wantsFlag(r, "async") {
		current := s.manager.SettlementAsync(force)
		s.writeJSON(w, http.StatusAccepted, api.FromSettlement(current))
		return
	}
	result, err := s.manager.Settlement(r.Context(), force)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSettlement(result))
}

func (s *apiServer) handleReport(w http.ResponseWriter, r *http.Request) {
	view := s.manager.View()
	now := time.Now()
	book, err := report.Workbook(view, now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer book.Close()
	name := textutil.ReportFileName(view.SessionID, now)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := book.WriteTo(w); err != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "report write failed", "report_write_failed",
			logging.Error(err),
			logging.Impact("the client received a truncated workbook"),
		)
	}
}

func (s *apiServer) handleReportText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, report.Text(s.manager.View()))
}

func (s *apiServer) writeRoom(w http.ResponseWriter, r *http.Request, room inspection.Room, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.RoomResponse{Room: api.FromRoom(room)})
}

func (s *apiServer) decodeImage(w http.ResponseWriter, r *http.Request) (inspection.Image, bool) {
	var req api.ImageRequest
	if err := api.Decode(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return inspection.Image{}, false
	}
	mime := strings.TrimSpace(req.MimeType)
	if mime == "" {
		mime = http.DetectContentType(req.Image)
	}
	return inspection.Image{Data: req.Image, MimeType: mime}, true
}

func (s *apiServer) pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "parse index", r.PathValue("index"), err))
		return 0, false
	}
	return index, true
}

func wantsFlag(r *http.Request, name string) bool {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	return value == "1" || strings.EqualFold(value, "true")
}
