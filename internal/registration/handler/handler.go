package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/platform/middleware"
	"gatepass/internal/proof"
	"gatepass/internal/registration"
	"gatepass/internal/transport/http/shared"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// maxProofSize caps proof uploads at 5 MiB.
const maxProofSize = 5 << 20

// Service defines the registration operations the handler exposes.
type Service interface {
	Submit(ctx context.Context, req registration.SubmitRequest) (registration.Result, error)
	GetByIdentifier(ctx context.Context, raw string) (registration.Registration, error)
	Participants(ctx context.Context, id domain.RegistrationID) ([]registration.Participant, error)
}

// Handler handles attendee-facing registration endpoints.
type Handler struct {
	service Service
	proofs  proof.Store
	logger  *slog.Logger
}

func New(service Service, proofs proof.Store, logger *slog.Logger) *Handler {
	return &Handler{service: service, proofs: proofs, logger: logger}
}

// Register mounts the public registration routes. The proof upload takes a
// raw image body, so the JSON content-type gate applies to the submit route
// only.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.ContentTypeJSON).Post("/registrations", h.handleSubmit)
	r.Post("/registrations/proofs", h.handleUploadProof)
}

// RegisterStaff mounts the staff-side lookup routes.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Get("/registrations/{identifier}", h.handleLookup)
}

type submitResponse struct {
	RegistrationID string `json:"registrationId"`
	Identifier     string `json:"identifier"`
	Token          string `json:"token"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registration.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	res, err := h.service.Submit(ctx, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, submitResponse{
		RegistrationID: res.RegistrationID.String(),
		Identifier:     res.Identifier.String(),
		Token:          res.Token,
	})
}

type uploadProofResponse struct {
	Path string `json:"path"`
}

// handleUploadProof stores the proof blob ahead of submission; the returned
// path goes into the submit request's paymentProofPath field.
func (h *Handler) handleUploadProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contentType := r.Header.Get("Content-Type")
	body := http.MaxBytesReader(w, r.Body, maxProofSize)
	path, err := h.proofs.Save(ctx, contentType, body)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, uploadProofResponse{Path: path})
}

type registrationResponse struct {
	RegistrationID string                `json:"registrationId"`
	Identifier     string                `json:"identifier"`
	EventID        string                `json:"eventId"`
	PaymentMethod  string                `json:"paymentMethod"`
	PaymentStatus  string                `json:"paymentStatus"`
	MemberType     string                `json:"memberType"`
	NonMemberName  string                `json:"nonMemberName,omitempty"`
	Participants   []participantResponse `json:"participants"`
}

type participantResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	IsPrincipal bool   `json:"isPrincipal"`
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reg, err := h.service.GetByIdentifier(ctx, chi.URLParam(r, "identifier"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	participants, err := h.service.Participants(ctx, reg.ID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := registrationResponse{
		RegistrationID: reg.ID.String(),
		Identifier:     reg.Identifier.String(),
		EventID:        reg.EventID.String(),
		PaymentMethod:  reg.PaymentMethod.String(),
		PaymentStatus:  reg.PaymentStatus.String(),
		MemberType:     string(reg.MemberType),
		NonMemberName:  reg.NonMemberName,
	}
	for _, p := range participants {
		resp.Participants = append(resp.Participants, participantResponse{
			ID:          p.ID.String(),
			FullName:    p.FullName(),
			Email:       p.Email,
			IsPrincipal: p.IsPrincipal,
		})
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}
