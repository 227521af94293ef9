package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	bookingserrors "dormwash/internal/bookings/errors"
	"dormwash/internal/bookings/repository"
	"dormwash/internal/bookings/validator"
	machineserrors "dormwash/internal/machines/errors"
	machinesrepo "dormwash/internal/machines/repository"
	"dormwash/pkg/config"
	apperrors "dormwash/pkg/errors"
	"dormwash/pkg/events"
	"dormwash/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, create *model.BookingCreate) (*model.Booking, error)
	Complete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]*model.Booking, error)
	GetActive(ctx context.Context) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	machines  machinesrepo.MachineRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

// NewBookingService wires the booking vertical. publisher may be nil, in
// which case lifecycle events are not emitted.
func NewBookingService(
	repo repository.BookingRepository,
	machines machinesrepo.MachineRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		machines:  machines,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create reserves an available machine for a student. The machine flip and
// the booking insert commit together: the machine claim is a CAS on
// status=available inside a transaction, so concurrent requests for the
// same machine cannot both succeed.
func (s *bookingService) Create(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
	if create.Duration == 0 {
		create.Duration = s.cfg.DefaultBookingDurationMin
	}

	if err := s.validator.ValidateCreate(create); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking := &model.Booking{
		ID:          uuid.New().String(),
		MachineID:   create.MachineID,
		StudentName: create.StudentName,
		StudentRoom: create.StudentRoom,
		StartTime:   now,
		Duration:    create.Duration,
		Status:      model.BookingActive,
		CreatedAt:   now,
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.machines.Claim(txCtx, create.MachineID, create.StudentName, create.Duration); err != nil {
			switch {
			case errors.Is(err, machineserrors.ErrNotFound):
				return apperrors.NotFoundWithID("Machine", create.MachineID)
			case errors.Is(err, machineserrors.ErrNotAvailable):
				return apperrors.InvalidState("Machine is not available")
			default:
				return apperrors.Internal("Failed to claim machine", err)
			}
		}

		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "machine_id", create.MachineID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"machine_id", booking.MachineID,
		"duration_min", booking.Duration,
	)
	s.publishEvent(ctx, events.TypeBookingCreated, booking)

	return booking, nil
}

// Complete transitions an active booking to completed and frees its
// machine, both inside one transaction. A booking that exists but is not
// active yields a conflict rather than silently re-completing.
func (s *bookingService) Complete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		completed, err := s.repo.MarkCompleted(txCtx, id)
		if err != nil {
			switch {
			case errors.Is(err, bookingserrors.ErrNotFound):
				return apperrors.NotFoundWithID("Booking", id)
			case errors.Is(err, bookingserrors.ErrNotActive):
				return apperrors.Conflict("Booking is not active")
			default:
				return apperrors.Internal("Failed to complete booking", err)
			}
		}
		booking = completed

		if err := s.machines.Release(txCtx, completed.MachineID); err != nil {
			if errors.Is(err, machineserrors.ErrNotFound) {
				// Weak reference: the booking still completes.
				s.cfg.Log.Warn("Machine referenced by booking no longer exists",
					"booking_id", id,
					"machine_id", completed.MachineID,
				)
				return nil
			}
			return apperrors.Internal("Failed to release machine", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to complete booking", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking completed successfully", "id", id, "machine_id", booking.MachineID)
	s.publishEvent(ctx, events.TypeBookingCompleted, booking)

	return nil
}

func (s *bookingService) GetAll(ctx context.Context) ([]*model.Booking, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

func (s *bookingService) GetActive(ctx context.Context) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByStatus(ctx, model.BookingActive)
	if err != nil {
		s.cfg.Log.Error("Failed to list active bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

// publishEvent emits a lifecycle event best effort; a publish failure
// never fails the request that triggered it.
func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(eventType, booking.MachineID, booking)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
