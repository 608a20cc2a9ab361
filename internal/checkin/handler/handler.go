package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/checkin"
	"gatepass/internal/platform/middleware"
	"gatepass/internal/transport/http/shared"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// Service defines the check-in desk operations.
type Service interface {
	ResolveScan(ctx context.Context, rawToken string, dayID domain.EventDayID) (checkin.ScanResult, error)
	ResolveIdentifier(ctx context.Context, rawIdentifier string, dayID domain.EventDayID) (checkin.ScanResult, error)
	Record(ctx context.Context, req checkin.RecordRequest) (checkin.RecordResult, error)
	Amend(ctx context.Context, req checkin.AmendRequest) error
}

// Handler handles staff check-in endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterStaff mounts the desk routes on the staff router.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/checkins/scan", h.handleScan)
	r.Post("/checkins", h.handleRecord)
	r.Patch("/checkins", h.handleAmend)
}

type scanRequest struct {
	Token      string `json:"token"`
	Identifier string `json:"identifier"`
	EventDayID string `json:"eventDayId"`
}

type scanResponse struct {
	RegistrationID  string                      `json:"registrationId"`
	Identifier      string                      `json:"identifier"`
	EventID         string                      `json:"eventId"`
	EventDayID      string                      `json:"eventDayId"`
	PaymentMethod   string                      `json:"paymentMethod"`
	PaymentStatus   string                      `json:"paymentStatus"`
	PaymentAdvisory string                      `json:"paymentAdvisory,omitempty"`
	Participants    []participantStatusResponse `json:"participants"`
}

type participantStatusResponse struct {
	ID          string     `json:"id"`
	FullName    string     `json:"fullName"`
	IsPrincipal bool       `json:"isPrincipal"`
	CheckedIn   bool       `json:"checkedIn"`
	CheckedInAt *time.Time `json:"checkedInAt,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
}

// handleScan resolves either a scanned token or a typed identifier; exactly
// one of the two must be present.
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	dayID, err := domain.ParseEventDayID(req.EventDayID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var res checkin.ScanResult
	switch {
	case req.Token != "" && req.Identifier == "":
		res, err = h.service.ResolveScan(ctx, req.Token, dayID)
	case req.Identifier != "" && req.Token == "":
		res, err = h.service.ResolveIdentifier(ctx, req.Identifier, dayID)
	default:
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "provide exactly one of token or identifier"))
		return
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toScanResponse(res))
}

func toScanResponse(res checkin.ScanResult) scanResponse {
	out := scanResponse{
		RegistrationID:  res.RegistrationID.String(),
		Identifier:      res.Identifier.String(),
		EventID:         res.EventID.String(),
		EventDayID:      res.EventDayID.String(),
		PaymentMethod:   res.PaymentMethod.String(),
		PaymentStatus:   res.PaymentStatus.String(),
		PaymentAdvisory: res.PaymentAdvisory,
	}
	for _, p := range res.Participants {
		status := participantStatusResponse{
			ID:          p.Participant.ID.String(),
			FullName:    p.Participant.FullName(),
			IsPrincipal: p.Participant.IsPrincipal,
			CheckedIn:   p.CheckedIn,
			Remarks:     p.Remarks,
		}
		if p.CheckedIn {
			at := p.CheckedInAt
			status.CheckedInAt = &at
		}
		out.Participants = append(out.Participants, status)
	}
	return out
}

type recordRequest struct {
	EventDayID     string            `json:"eventDayId"`
	ParticipantIDs []string          `json:"participantIds"`
	Remarks        map[string]string `json:"remarks,omitempty"`
}

type recordResponse struct {
	NewlyCheckedIn int `json:"newlyCheckedIn"`
	AlreadyPresent int `json:"alreadyPresent"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	dayID, err := domain.ParseEventDayID(req.EventDayID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	participantIDs := make([]domain.ParticipantID, 0, len(req.ParticipantIDs))
	remarks := make(map[domain.ParticipantID]string, len(req.Remarks))
	for _, raw := range req.ParticipantIDs {
		pid, err := domain.ParseParticipantID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		participantIDs = append(participantIDs, pid)
		if r, ok := req.Remarks[raw]; ok {
			remarks[pid] = r
		}
	}

	res, err := h.service.Record(ctx, checkin.RecordRequest{
		EventDayID:     dayID,
		ParticipantIDs: participantIDs,
		StaffID:        middleware.GetStaffID(ctx),
		Remarks:        remarks,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, recordResponse{
		NewlyCheckedIn: res.NewlyCheckedIn,
		AlreadyPresent: res.AlreadyPresent,
	})
}

type amendRequest struct {
	EventDayID    string     `json:"eventDayId"`
	ParticipantID string     `json:"participantId"`
	CheckedInAt   *time.Time `json:"checkedInAt,omitempty"`
	Remarks       *string    `json:"remarks,omitempty"`
}

func (h *Handler) handleAmend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req amendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	dayID, err := domain.ParseEventDayID(req.EventDayID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pid, err := domain.ParseParticipantID(req.ParticipantID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.Amend(ctx, checkin.AmendRequest{
		ParticipantID: pid,
		EventDayID:    dayID,
		CheckedInAt:   req.CheckedInAt,
		Remarks:       req.Remarks,
		StaffID:       middleware.GetStaffID(ctx),
	}); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
