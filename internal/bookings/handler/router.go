package handler

import (
	"net/http"
	"strings"
)

// Dispatched off a plain ServeMux: /bookings/active and
// /bookings/{id}/complete put a static and a wildcard segment in the same
// position.
func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/bookings", h.handleBookingsRoot)
	mux.HandleFunc("/api/v1/bookings/", h.handleBookingsSub)
}

func (h *BookingHandler) handleBookingsRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/bookings" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.Create(w, r)
	case http.MethodGet:
		h.GetAll(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BookingHandler) handleBookingsSub(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")

	if rest == "active" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.GetActive(w, r)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/complete"); ok {
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Complete(w, r, id)
		return
	}

	http.NotFound(w, r)
}
