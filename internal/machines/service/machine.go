package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	machineserrors "dormwash/internal/machines/errors"
	"dormwash/internal/machines/repository"
	"dormwash/internal/machines/validator"
	"dormwash/pkg/config"
	apperrors "dormwash/pkg/errors"
	"dormwash/pkg/model"
)

type MachineService interface {
	Create(ctx context.Context, create *model.MachineCreate) (*model.Machine, error)
	GetByID(ctx context.Context, id string) (*model.Machine, error)
	GetAll(ctx context.Context) ([]*model.Machine, error)
	GetByFloor(ctx context.Context, floor int) ([]*model.Machine, error)
	Update(ctx context.Context, id string, updates *model.MachineUpdate) (*model.Machine, error)
	GetStats(ctx context.Context) (*model.Stats, error)
	EnsureSeedData(ctx context.Context) error
}

type machineService struct {
	repo      repository.MachineRepository
	validator *validator.MachineValidator
	cfg       *config.Config
}

func NewMachineService(
	repo repository.MachineRepository,
	validator *validator.MachineValidator,
	cfg *config.Config,
) MachineService {
	return &machineService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *machineService) Create(ctx context.Context, create *model.MachineCreate) (*model.Machine, error) {
	if create.Status == "" {
		create.Status = model.MachineAvailable
	}

	if err := s.validator.ValidateCreate(create); err != nil {
		s.cfg.Log.Warn("Machine validation failed", "error", err)
		return nil, apperrors.Validation("Machine validation failed", map[string]any{"error": err.Error()})
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	machine := &model.Machine{
		ID:            uuid.New().String(),
		MachineNumber: create.MachineNumber,
		Status:        create.Status,
		Floor:         create.Floor,
		Location:      create.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, machine); err != nil {
		s.cfg.Log.Error("Failed to create machine", "error", err)
		return nil, apperrors.Internal("Failed to create machine", err)
	}

	s.cfg.Log.Info("Machine created successfully",
		"id", machine.ID,
		"machine_number", machine.MachineNumber,
		"floor", machine.Floor,
	)
	return machine, nil
}

func (s *machineService) GetByID(ctx context.Context, id string) (*model.Machine, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Machine ID cannot be empty")
	}

	machine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, machineserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Machine", id)
		}
		return nil, apperrors.Internal("Failed to retrieve machine", err)
	}

	return machine, nil
}

func (s *machineService) GetAll(ctx context.Context) ([]*model.Machine, error) {
	machines, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list machines", "error", err)
		return nil, apperrors.Internal("Failed to retrieve machines", err)
	}

	if machines == nil {
		machines = []*model.Machine{}
	}
	return machines, nil
}

func (s *machineService) GetByFloor(ctx context.Context, floor int) ([]*model.Machine, error) {
	machines, err := s.repo.FindByFloor(ctx, floor)
	if err != nil {
		s.cfg.Log.Error("Failed to list machines by floor", "floor", floor, "error", err)
		return nil, apperrors.Internal("Failed to retrieve machines", err)
	}

	if machines == nil {
		machines = []*model.Machine{}
	}
	return machines, nil
}

// Update applies a partial update through a load-merge-validate cycle so a
// written document always satisfies the usage pairing invariant.
func (s *machineService) Update(ctx context.Context, id string, updates *model.MachineUpdate) (*model.Machine, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Machine ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, machineserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Machine", id)
		}
		return nil, apperrors.Internal("Failed to check machine existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Machine update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeMachineUpdates(existing, updates)
	if err := s.validator.ValidateMachine(merged); err != nil {
		s.cfg.Log.Warn("Machine update violates usage pairing", "id", id, "error", err)
		return nil, apperrors.Validation("Machine validation failed", map[string]any{"error": err.Error()})
	}

	merged.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, machineserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Machine", id)
		}
		s.cfg.Log.Error("Failed to update machine", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update machine", err)
	}

	s.cfg.Log.Info("Machine updated successfully", "id", id, "status", merged.Status)
	return merged, nil
}

func (s *machineService) mergeMachineUpdates(existing *model.Machine, updates *model.MachineUpdate) *model.Machine {
	merged := *existing

	if updates.Status != nil {
		merged.Status = *updates.Status
	}
	if updates.CurrentUser != nil {
		merged.CurrentUser = updates.CurrentUser
	}
	if updates.TimeRemaining != nil {
		merged.TimeRemaining = updates.TimeRemaining
	}

	// A machine that is not in use never carries the usage pair.
	if !merged.InUse() {
		merged.CurrentUser = nil
		merged.TimeRemaining = nil
	}

	return &merged
}

func (s *machineService) GetStats(ctx context.Context) (*model.Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate machine stats", "error", err)
		return nil, apperrors.Internal("Failed to retrieve stats", err)
	}

	stats := &model.Stats{
		AvailableMachines:  counts[model.MachineAvailable],
		InUseMachines:      counts[model.MachineInUse],
		OutOfOrderMachines: counts[model.MachineOutOfOrder],
	}
	stats.TotalMachines = stats.AvailableMachines + stats.InUseMachines + stats.OutOfOrderMachines

	if stats.TotalMachines > 0 {
		rate := float64(stats.InUseMachines) / float64(stats.TotalMachines) * 100
		stats.UsageRate = math.Round(rate*10) / 10
	}

	return stats, nil
}

// EnsureSeedData inserts the sample machine inventory on first startup
// against an empty collection.
func (s *machineService) EnsureSeedData(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return apperrors.Internal("Failed to count machines", err)
	}
	if count > 0 {
		return nil
	}

	machines := sampleMachines()
	if err := s.repo.InsertMany(ctx, machines); err != nil {
		return apperrors.Internal("Failed to seed machines", err)
	}

	s.cfg.Log.Info("Seeded sample machines", "count", len(machines))
	return nil
}

func sampleMachines() []*model.Machine {
	now := time.Now().UTC().Truncate(time.Millisecond)

	newMachine := func(number int, status string, floor int, location string) *model.Machine {
		return &model.Machine{
			ID:            uuid.New().String(),
			MachineNumber: number,
			Status:        status,
			Floor:         floor,
			Location:      location,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	inUse := func(m *model.Machine, user string, remaining int) *model.Machine {
		m.CurrentUser = &user
		m.TimeRemaining = &remaining
		return m
	}

	return []*model.Machine{
		newMachine(1, model.MachineAvailable, 1, "Laundry Room A"),
		inUse(newMachine(2, model.MachineInUse, 1, "Laundry Room A"), "Student A", 25),
		newMachine(3, model.MachineAvailable, 1, "Laundry Room A"),
		newMachine(4, model.MachineOutOfOrder, 1, "Laundry Room A"),
		inUse(newMachine(5, model.MachineInUse, 2, "Laundry Room B"), "Student B", 45),
		newMachine(6, model.MachineAvailable, 2, "Laundry Room B"),
	}
}
