package service

import (
	"context"
	"errors"
	"io"
	"testing"

	bookingserrors "dormwash/internal/bookings/errors"
	"dormwash/internal/bookings/validator"
	machineserrors "dormwash/internal/machines/errors"
	"dormwash/pkg/config"
	mongotx "dormwash/pkg/db/mongo"
	apperrors "dormwash/pkg/errors"
	"dormwash/pkg/events"
	"dormwash/pkg/logger"
	"dormwash/pkg/model"
)

type mockBookingRepo struct {
	createFunc        func(ctx context.Context, booking *model.Booking) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc       func(ctx context.Context) ([]*model.Booking, error)
	findByStatusFunc  func(ctx context.Context, status string) ([]*model.Booking, error)
	markCompletedFunc func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFunc(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockBookingRepo) FindAll(ctx context.Context) ([]*model.Booking, error) {
	return m.findAllFunc(ctx)
}

func (m *mockBookingRepo) FindByStatus(ctx context.Context, status string) ([]*model.Booking, error) {
	return m.findByStatusFunc(ctx, status)
}

func (m *mockBookingRepo) MarkCompleted(ctx context.Context, id string) (*model.Booking, error) {
	return m.markCompletedFunc(ctx, id)
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockMachineRepo struct {
	claimFunc   func(ctx context.Context, id, studentName string, durationMin int) error
	releaseFunc func(ctx context.Context, id string) error
}

func (m *mockMachineRepo) Claim(ctx context.Context, id, studentName string, durationMin int) error {
	return m.claimFunc(ctx, id, studentName, durationMin)
}

func (m *mockMachineRepo) Release(ctx context.Context, id string) error {
	return m.releaseFunc(ctx, id)
}

func (m *mockMachineRepo) Create(ctx context.Context, machine *model.Machine) error { return nil }
func (m *mockMachineRepo) FindByID(ctx context.Context, id string) (*model.Machine, error) {
	return nil, nil
}
func (m *mockMachineRepo) FindAll(ctx context.Context) ([]*model.Machine, error) { return nil, nil }
func (m *mockMachineRepo) FindByFloor(ctx context.Context, floor int) ([]*model.Machine, error) {
	return nil, nil
}
func (m *mockMachineRepo) Update(ctx context.Context, id string, machine *model.Machine) error {
	return nil
}
func (m *mockMachineRepo) Count(ctx context.Context) (int64, error) { return 0, nil }
func (m *mockMachineRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}
func (m *mockMachineRepo) InsertMany(ctx context.Context, machines []*model.Machine) error {
	return nil
}
func (m *mockMachineRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockPublisher struct {
	published []events.Event
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func newTestConfig() *config.Config {
	return &config.Config{
		DefaultBookingDurationMin: 60,
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Format: logger.TEXT,
			Output: io.Discard,
		}),
	}
}

func newTestService(repo *mockBookingRepo, machines *mockMachineRepo, publisher events.Publisher) BookingService {
	cfg := newTestConfig()
	return NewBookingService(
		repo,
		machines,
		validator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
}

func validCreate() *model.BookingCreate {
	return &model.BookingCreate{
		MachineID:   "machine-1",
		StudentName: "Dana",
		StudentRoom: "204",
		Duration:    45,
	}
}

func TestCreateBooking(t *testing.T) {
	var claimed struct {
		id       string
		student  string
		duration int
	}
	var stored *model.Booking

	machines := &mockMachineRepo{
		claimFunc: func(ctx context.Context, id, studentName string, durationMin int) error {
			claimed.id = id
			claimed.student = studentName
			claimed.duration = durationMin
			return nil
		},
	}
	repo := &mockBookingRepo{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			stored = booking
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(repo, machines, publisher)

	booking, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if booking.ID == "" {
		t.Error("expected generated booking ID")
	}
	if booking.Status != model.BookingActive {
		t.Errorf("expected status active, got %q", booking.Status)
	}
	if booking.StartTime.IsZero() {
		t.Error("expected start_time to be set")
	}
	if claimed.id != "machine-1" || claimed.student != "Dana" || claimed.duration != 45 {
		t.Errorf("unexpected claim: %+v", claimed)
	}
	if stored == nil || stored.ID != booking.ID {
		t.Error("expected booking to be persisted")
	}
	if len(publisher.published) != 1 || publisher.published[0].Type != events.TypeBookingCreated {
		t.Errorf("expected a single %s event, got %+v", events.TypeBookingCreated, publisher.published)
	}
}

func TestCreateBookingDefaultsDuration(t *testing.T) {
	var claimedDuration int
	machines := &mockMachineRepo{
		claimFunc: func(ctx context.Context, id, studentName string, durationMin int) error {
			claimedDuration = durationMin
			return nil
		},
	}
	repo := &mockBookingRepo{
		createFunc: func(ctx context.Context, booking *model.Booking) error { return nil },
	}
	svc := newTestService(repo, machines, nil)

	create := validCreate()
	create.Duration = 0

	booking, err := svc.Create(context.Background(), create)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if booking.Duration != 60 {
		t.Errorf("expected default duration 60, got %d", booking.Duration)
	}
	if claimedDuration != 60 {
		t.Errorf("expected claim with default duration, got %d", claimedDuration)
	}
}

func TestCreateBookingMachineNotFound(t *testing.T) {
	machines := &mockMachineRepo{
		claimFunc: func(ctx context.Context, id, studentName string, durationMin int) error {
			return machineserrors.ErrNotFound
		},
	}
	repo := &mockBookingRepo{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("booking must not be created when the machine is absent")
			return nil
		},
	}
	svc := newTestService(repo, machines, nil)

	_, err := svc.Create(context.Background(), validCreate())
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != 404 {
		t.Errorf("expected status 404, got %d", appErr.HTTPStatus)
	}
}

func TestCreateBookingMachineNotAvailable(t *testing.T) {
	machines := &mockMachineRepo{
		claimFunc: func(ctx context.Context, id, studentName string, durationMin int) error {
			return machineserrors.ErrNotAvailable
		},
	}
	repo := &mockBookingRepo{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("booking must not be created for an unavailable machine")
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(repo, machines, publisher)

	_, err := svc.Create(context.Background(), validCreate())
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidState {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidState, appErr.Code)
	}
	if appErr.HTTPStatus != 400 {
		t.Errorf("expected status 400, got %d", appErr.HTTPStatus)
	}
	if appErr.Message != "Machine is not available" {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
	if len(publisher.published) != 0 {
		t.Error("no event must be published for a failed booking")
	}
}

func TestCreateBookingValidationFailure(t *testing.T) {
	svc := newTestService(&mockBookingRepo{}, &mockMachineRepo{}, nil)

	_, err := svc.Create(context.Background(), &model.BookingCreate{MachineID: "machine-1"})
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != 422 {
		t.Errorf("expected status 422, got %d", appErr.HTTPStatus)
	}
}

func TestCreateBookingPublishFailureDoesNotFailRequest(t *testing.T) {
	machines := &mockMachineRepo{
		claimFunc: func(ctx context.Context, id, studentName string, durationMin int) error {
			return nil
		},
	}
	repo := &mockBookingRepo{
		createFunc: func(ctx context.Context, booking *model.Booking) error { return nil },
	}
	publisher := &mockPublisher{err: errors.New("broker unreachable")}
	svc := newTestService(repo, machines, publisher)

	if _, err := svc.Create(context.Background(), validCreate()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestCompleteBooking(t *testing.T) {
	var released string
	completed := &model.Booking{
		ID:        "booking-1",
		MachineID: "machine-1",
		Status:    model.BookingCompleted,
	}

	repo := &mockBookingRepo{
		markCompletedFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return completed, nil
		},
	}
	machines := &mockMachineRepo{
		releaseFunc: func(ctx context.Context, id string) error {
			released = id
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(repo, machines, publisher)

	if err := svc.Complete(context.Background(), "booking-1"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if released != "machine-1" {
		t.Errorf("expected machine-1 to be released, got %q", released)
	}
	if len(publisher.published) != 1 || publisher.published[0].Type != events.TypeBookingCompleted {
		t.Errorf("expected a single %s event, got %+v", events.TypeBookingCompleted, publisher.published)
	}
}

func TestCompleteBookingNotFound(t *testing.T) {
	repo := &mockBookingRepo{
		markCompletedFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockMachineRepo{}, nil)

	err := svc.Complete(context.Background(), "missing-id")
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != 404 {
		t.Errorf("expected status 404, got %d", appErr.HTTPStatus)
	}
}

func TestCompleteBookingAlreadyCompleted(t *testing.T) {
	repo := &mockBookingRepo{
		markCompletedFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotActive
		},
	}
	machines := &mockMachineRepo{
		releaseFunc: func(ctx context.Context, id string) error {
			t.Fatal("machine must not be released for a non-active booking")
			return nil
		},
	}
	svc := newTestService(repo, machines, nil)

	err := svc.Complete(context.Background(), "booking-1")
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if appErr.HTTPStatus != 409 {
		t.Errorf("expected status 409, got %d", appErr.HTTPStatus)
	}
}

func TestCompleteBookingMissingMachineStillCompletes(t *testing.T) {
	repo := &mockBookingRepo{
		markCompletedFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, MachineID: "gone", Status: model.BookingCompleted}, nil
		},
	}
	machines := &mockMachineRepo{
		releaseFunc: func(ctx context.Context, id string) error {
			return machineserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, machines, nil)

	if err := svc.Complete(context.Background(), "booking-1"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestGetActiveFiltersByStatus(t *testing.T) {
	var requestedStatus string
	repo := &mockBookingRepo{
		findByStatusFunc: func(ctx context.Context, status string) ([]*model.Booking, error) {
			requestedStatus = status
			return nil, nil
		},
	}
	svc := newTestService(repo, &mockMachineRepo{}, nil)

	bookings, err := svc.GetActive(context.Background())
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if requestedStatus != model.BookingActive {
		t.Errorf("expected filter by %q, got %q", model.BookingActive, requestedStatus)
	}
	if bookings == nil {
		t.Error("expected empty slice, got nil")
	}
}
