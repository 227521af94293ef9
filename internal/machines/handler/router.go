package handler

import (
	"net/http"
	"strings"
)

// Routes are dispatched off a plain ServeMux because the machine paths mix
// a static segment (/machines/floor/{floor}) with a wildcard in the same
// position (/machines/{id}).
func (h *MachineHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/machines", h.handleMachinesRoot)
	mux.HandleFunc("/api/v1/machines/", h.handleMachinesSub)
	mux.HandleFunc("/api/v1/stats", h.handleStats)
}

func (h *MachineHandler) handleMachinesRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/machines" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.GetAll(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MachineHandler) handleMachinesSub(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/machines/")

	if floor, ok := strings.CutPrefix(rest, "floor/"); ok {
		if floor == "" || strings.Contains(floor, "/") {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.GetByFloor(w, r, floor)
		return
	}

	id := rest
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.GetByID(w, r, id)
	case http.MethodPut:
		h.Update(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MachineHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.GetStats(w, r)
}
