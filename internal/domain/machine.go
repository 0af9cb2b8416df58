package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultMaintenanceIntervalDays is applied when a machine is registered
// without an explicit maintenance schedule.
const DefaultMaintenanceIntervalDays = 30

// MachineService manages the equipment inventory.
type MachineService struct {
	machines MachineRepository
	sessions SessionRepository
	now      func() time.Time
}

// NewMachineService constructs a MachineService.
func NewMachineService(machines MachineRepository, sessions SessionRepository) *MachineService {
	return &MachineService{
		machines: machines,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock, used by tests.
func (s *MachineService) WithClock(now func() time.Time) *MachineService {
	s.now = now
	return s
}

// CreateMachineInput captures the payload for registering equipment.
type CreateMachineInput struct {
	Name                    string
	Type                    string
	Location                string
	MaintenanceIntervalDays int
}

// CreateMachine registers a new machine. Names are unique across the gym.
func (s *MachineService) CreateMachine(ctx context.Context, input CreateMachineInput) (*Machine, error) {
	existing, err := s.machines.GetByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMachineNameTaken
	}

	interval := input.MaintenanceIntervalDays
	if interval <= 0 {
		interval = DefaultMaintenanceIntervalDays
	}

	now := s.now()
	next := now.AddDate(0, 0, interval)
	machine := Machine{
		ID:                      uuid.NewString(),
		Name:                    input.Name,
		Type:                    input.Type,
		Status:                  MachineStatusActive,
		Location:                input.Location,
		MaintenanceIntervalDays: interval,
		NextMaintenance:         &next,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.machines.Create(ctx, machine); err != nil {
		return nil, err
	}
	return &machine, nil
}

// GetMachine fetches a machine by ID.
func (s *MachineService) GetMachine(ctx context.Context, machineID string) (*Machine, error) {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, ErrMachineNotFound
	}
	return machine, nil
}

// ListMachines returns the full inventory.
func (s *MachineService) ListMachines(ctx context.Context) ([]Machine, error) {
	return s.machines.List(ctx)
}

// UpdateStatus moves a machine between operational states. Entering
// MAINTENANCE stamps the maintenance timestamps.
func (s *MachineService) UpdateStatus(ctx context.Context, machineID string, status MachineStatus) (*Machine, error) {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, ErrMachineNotFound
	}

	now := s.now()
	machine.Status = status
	machine.UpdatedAt = now
	if status == MachineStatusMaintenance {
		machine.LastMaintenance = &now
		next := now.AddDate(0, 0, machine.MaintenanceIntervalDays)
		machine.NextMaintenance = &next
	}

	if err := s.machines.Update(ctx, *machine); err != nil {
		return nil, err
	}
	return machine, nil
}

// PerformMaintenance records completed maintenance and reactivates the
// machine.
func (s *MachineService) PerformMaintenance(ctx context.Context, machineID string) (*Machine, error) {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, ErrMachineNotFound
	}

	now := s.now()
	next := now.AddDate(0, 0, machine.MaintenanceIntervalDays)
	machine.LastMaintenance = &now
	machine.NextMaintenance = &next
	machine.Status = MachineStatusActive
	machine.UpdatedAt = now

	if err := s.machines.Update(ctx, *machine); err != nil {
		return nil, err
	}
	return machine, nil
}

// DeleteMachine removes a machine from the inventory. Machines with recorded
// sessions cannot be deleted; history would lose its reference.
func (s *MachineService) DeleteMachine(ctx context.Context, machineID string) error {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return err
	}
	if machine == nil {
		return ErrMachineNotFound
	}

	count, err := s.sessions.CountByMachine(ctx, machineID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrMachineInUse
	}

	return s.machines.Delete(ctx, machineID)
}
