package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/platform/middleware"
	"gatepass/internal/registration"
	"gatepass/internal/transport/http/shared"
	"gatepass/pkg/domain"
)

// Service defines the payment gate operations.
type Service interface {
	Verify(ctx context.Context, regID domain.RegistrationID, staffID string) (registration.Registration, error)
	Proof(ctx context.Context, regID domain.RegistrationID) (registration.ProofImage, io.ReadCloser, error)
}

// Handler handles staff payment verification endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterStaff mounts the payment routes on the staff router.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/registrations/{id}/payment/verify", h.handleVerify)
	r.Get("/registrations/{id}/payment/proof", h.handleProof)
}

type verifyResponse struct {
	RegistrationID string `json:"registrationId"`
	PaymentStatus  string `json:"paymentStatus"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regID, err := domain.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	reg, err := h.service.Verify(ctx, regID, middleware.GetStaffID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, verifyResponse{
		RegistrationID: reg.ID.String(),
		PaymentStatus:  reg.PaymentStatus.String(),
	})
}

func (h *Handler) handleProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regID, err := domain.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	img, rc, err := h.service.Proof(ctx, regID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", img.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("proof stream interrupted", "registration_id", regID, "error", err)
	}
}
