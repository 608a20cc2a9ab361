package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/event"
	"gatepass/internal/transport/http/shared"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// Service defines the event operations the handler exposes.
type Service interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	Get(ctx context.Context, id domain.EventID) (event.Event, error)
	Days(ctx context.Context, eventID domain.EventID) ([]event.Day, error)
	Publish(ctx context.Context, eventID domain.EventID) ([]event.Day, error)
}

// Handler handles staff event-management endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterStaff mounts the event routes on the staff router.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/events", h.handleCreate)
	r.Get("/events/{id}", h.handleGet)
	r.Get("/events/{id}/days", h.handleDays)
	r.Post("/events/{id}/publish", h.handlePublish)
}

type createEventRequest struct {
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	Venue      string    `json:"venue"`
	Visibility string    `json:"visibility"`
	FeeCents   int64     `json:"feeCents"`
}

type eventResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	Venue      string    `json:"venue,omitempty"`
	Visibility string    `json:"visibility"`
	FeeCents   int64     `json:"feeCents"`
}

type dayResponse struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	created, err := h.service.Create(ctx, event.Event{
		Title:      req.Title,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Venue:      req.Venue,
		Visibility: event.Visibility(req.Visibility),
		FeeCents:   req.FeeCents,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toEventResponse(created))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	e, err := h.service.Get(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toEventResponse(e))
}

func (h *Handler) handleDays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	days, err := h.service.Days(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDayResponses(days))
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	days, err := h.service.Publish(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toDayResponses(days))
}

func toEventResponse(e event.Event) eventResponse {
	return eventResponse{
		ID:         e.ID.String(),
		Title:      e.Title,
		StartsAt:   e.StartsAt,
		EndsAt:     e.EndsAt,
		Venue:      e.Venue,
		Visibility: string(e.Visibility),
		FeeCents:   e.FeeCents,
	}
}

func toDayResponses(days []event.Day) []dayResponse {
	out := make([]dayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dayResponse{ID: d.ID.String(), Date: d.Date, Label: d.Label})
	}
	return out
}
