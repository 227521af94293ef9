package handler

import (
	"encoding/json"
	"net/http"

	"dormwash/internal/bookings/service"
	apperrors "dormwash/pkg/errors"
	httputil "dormwash/pkg/http"
	"dormwash/pkg/logger"
	"dormwash/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var create model.BookingCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), &create)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *BookingHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetActive(r.Context())
	if err != nil {
		h.writeError(w, "GetActive", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetActive", "error", err)
	}
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Complete(r.Context(), id); err != nil {
		h.writeError(w, "Complete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Booking completed successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Complete", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
