package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dormwash/internal/machines/service"
	apperrors "dormwash/pkg/errors"
	httputil "dormwash/pkg/http"
	"dormwash/pkg/logger"
	"dormwash/pkg/model"
)

type MachineHandler struct {
	service service.MachineService
	log     *logger.Logger
}

func NewMachineHandler(service service.MachineService, log *logger.Logger) *MachineHandler {
	return &MachineHandler{
		service: service,
		log:     log,
	}
}

func (h *MachineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var create model.MachineCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	machine, err := h.service.Create(r.Context(), &create)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteSuccess(w, machine); err != nil {
		h.log.Error("failed to write success response", "handler", "Create", "error", err)
	}
}

func (h *MachineHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	machines, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, machines); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *MachineHandler) GetByID(w http.ResponseWriter, r *http.Request, id string) {
	machine, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, machine); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *MachineHandler) GetByFloor(w http.ResponseWriter, r *http.Request, floorStr string) {
	floor, err := strconv.Atoi(floorStr)
	if err != nil {
		h.writeError(w, "GetByFloor", apperrors.InvalidInput("invalid floor parameter: "+floorStr))
		return
	}

	machines, err := h.service.GetByFloor(r.Context(), floor)
	if err != nil {
		h.writeError(w, "GetByFloor", err)
		return
	}

	if err := httputil.WriteSuccess(w, machines); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByFloor", "error", err)
	}
}

func (h *MachineHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var updates model.MachineUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	machine, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, machine); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *MachineHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		h.writeError(w, "GetStats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "GetStats", "error", err)
	}
}

func (h *MachineHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
