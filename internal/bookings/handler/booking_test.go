package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "dormwash/pkg/errors"
	"dormwash/pkg/logger"
	"dormwash/pkg/model"
)

type mockBookingService struct {
	createFunc    func(ctx context.Context, create *model.BookingCreate) (*model.Booking, error)
	completeFunc  func(ctx context.Context, id string) error
	getAllFunc    func(ctx context.Context) ([]*model.Booking, error)
	getActiveFunc func(ctx context.Context) ([]*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
	return m.createFunc(ctx, create)
}

func (m *mockBookingService) Complete(ctx context.Context, id string) error {
	return m.completeFunc(ctx, id)
}

func (m *mockBookingService) GetAll(ctx context.Context) ([]*model.Booking, error) {
	return m.getAllFunc(ctx)
}

func (m *mockBookingService) GetActive(ctx context.Context) ([]*model.Booking, error) {
	return m.getActiveFunc(ctx)
}

func newTestServer(svc *mockBookingService) *httptest.Server {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	mux := http.NewServeMux()
	NewBookingHandler(svc, log).RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestCreateBooking(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
			return &model.Booking{
				ID:          "booking-1",
				MachineID:   create.MachineID,
				StudentName: create.StudentName,
				StudentRoom: create.StudentRoom,
				Duration:    create.Duration,
				Status:      model.BookingActive,
			}, nil
		},
	}
	server := newTestServer(svc)
	defer server.Close()

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/bookings", map[string]any{
		"machine_id":   "machine-1",
		"student_name": "Dana",
		"student_room": "204",
		"duration":     45,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var booking model.Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if booking.Status != model.BookingActive {
		t.Errorf("expected status active, got %q", booking.Status)
	}
}

func TestCreateBookingInvalidBody(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
			t.Fatal("service must not be called for an unparseable body")
			return nil, nil
		},
	}
	server := newTestServer(svc)
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/bookings", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateBookingMachineUnavailable(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
			return nil, apperrors.InvalidState("Machine is not available")
		},
	}
	server := newTestServer(svc)
	defer server.Close()

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/bookings", map[string]any{
		"machine_id":   "machine-1",
		"student_name": "Dana",
		"student_room": "204",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != "Machine is not available" {
		t.Errorf("unexpected error message: %q", errResp.Error)
	}
}

func TestGetActiveBookings(t *testing.T) {
	svc := &mockBookingService{
		getActiveFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: "booking-1", Status: model.BookingActive},
			}, nil
		},
		getAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			t.Fatal("active route must not fall through to the full listing")
			return nil, nil
		},
	}
	server := newTestServer(svc)
	defer server.Close()

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/bookings/active", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var bookings []model.Booking
	if err := json.NewDecoder(resp.Body).Decode(&bookings); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(bookings) != 1 {
		t.Errorf("expected 1 booking, got %d", len(bookings))
	}
}

func TestCompleteBooking(t *testing.T) {
	var completedID string
	svc := &mockBookingService{
		completeFunc: func(ctx context.Context, id string) error {
			completedID = id
			return nil
		},
	}
	server := newTestServer(svc)
	defer server.Close()

	resp := doRequest(t, http.MethodPut, server.URL+"/api/v1/bookings/booking-1/complete", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if completedID != "booking-1" {
		t.Errorf("expected booking-1, got %q", completedID)
	}

	var msg struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg.Message != "Booking completed successfully" {
		t.Errorf("unexpected message: %q", msg.Message)
	}
}

func TestCompleteBookingConflict(t *testing.T) {
	svc := &mockBookingService{
		completeFunc: func(ctx context.Context, id string) error {
			return apperrors.Conflict("Booking is not active")
		},
	}
	server := newTestServer(svc)
	defer server.Close()

	resp := doRequest(t, http.MethodPut, server.URL+"/api/v1/bookings/booking-1/complete", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestBookingRouting(t *testing.T) {
	svc := &mockBookingService{
		getAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return nil, nil
		},
		getActiveFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return nil, nil
		},
		completeFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
	server := newTestServer(svc)
	defer server.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"list all", http.MethodGet, "/api/v1/bookings", http.StatusOK},
		{"active", http.MethodGet, "/api/v1/bookings/active", http.StatusOK},
		{"complete", http.MethodPut, "/api/v1/bookings/booking-1/complete", http.StatusOK},
		{"active rejects put", http.MethodPut, "/api/v1/bookings/active", http.StatusMethodNotAllowed},
		{"complete rejects get", http.MethodGet, "/api/v1/bookings/booking-1/complete", http.StatusMethodNotAllowed},
		{"bare id has no route", http.MethodGet, "/api/v1/bookings/booking-1", http.StatusNotFound},
		{"empty id before complete", http.MethodPut, "/api/v1/bookings//complete", http.StatusNotFound},
		{"delete not allowed on collection", http.MethodDelete, "/api/v1/bookings", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, tt.method, server.URL+tt.path, nil)
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.wantStatus, resp.StatusCode)
			}
		})
	}
}
