package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateMachineAppliesDefaults(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	machines := newStubMachines()
	service := NewMachineService(machines, newStubSessions()).WithClock(testClock(now))

	machine, err := service.CreateMachine(context.Background(), CreateMachineInput{
		Name: "Treadmill A",
		Type: "treadmill",
	})
	require.NoError(t, err)
	require.NotEmpty(t, machine.ID)
	require.Equal(t, MachineStatusActive, machine.Status)
	require.Equal(t, DefaultMaintenanceIntervalDays, machine.MaintenanceIntervalDays)
	require.NotNil(t, machine.NextMaintenance)
	require.Equal(t, now.AddDate(0, 0, DefaultMaintenanceIntervalDays), *machine.NextMaintenance)
	require.Nil(t, machine.LastMaintenance)
}

func TestCreateMachineRejectsDuplicateName(t *testing.T) {
	machines := newStubMachines(Machine{ID: "machine-1", Name: "Treadmill A"})
	service := NewMachineService(machines, newStubSessions())

	_, err := service.CreateMachine(context.Background(), CreateMachineInput{Name: "Treadmill A", Type: "treadmill"})
	require.ErrorIs(t, err, ErrMachineNameTaken)
}

func TestUpdateStatusStampsMaintenanceTimestamps(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	machines := newStubMachines(Machine{
		ID:                      "machine-1",
		Name:                    "Bike",
		Status:                  MachineStatusActive,
		MaintenanceIntervalDays: 14,
	})
	service := NewMachineService(machines, newStubSessions()).WithClock(testClock(now))

	machine, err := service.UpdateStatus(context.Background(), "machine-1", MachineStatusMaintenance)
	require.NoError(t, err)
	require.Equal(t, MachineStatusMaintenance, machine.Status)
	require.NotNil(t, machine.LastMaintenance)
	require.Equal(t, now, *machine.LastMaintenance)
	require.NotNil(t, machine.NextMaintenance)
	require.Equal(t, now.AddDate(0, 0, 14), *machine.NextMaintenance)
}

func TestUpdateStatusToInactiveLeavesMaintenanceAlone(t *testing.T) {
	machines := newStubMachines(Machine{ID: "machine-1", Name: "Bike", Status: MachineStatusActive})
	service := NewMachineService(machines, newStubSessions())

	machine, err := service.UpdateStatus(context.Background(), "machine-1", MachineStatusInactive)
	require.NoError(t, err)
	require.Equal(t, MachineStatusInactive, machine.Status)
	require.Nil(t, machine.LastMaintenance)
}

func TestPerformMaintenanceReactivates(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	machines := newStubMachines(Machine{
		ID:                      "machine-1",
		Name:                    "Rower",
		Status:                  MachineStatusMaintenance,
		MaintenanceIntervalDays: 30,
	})
	service := NewMachineService(machines, newStubSessions()).WithClock(testClock(now))

	machine, err := service.PerformMaintenance(context.Background(), "machine-1")
	require.NoError(t, err)
	require.Equal(t, MachineStatusActive, machine.Status)
	require.Equal(t, now, *machine.LastMaintenance)
	require.Equal(t, now.AddDate(0, 0, 30), *machine.NextMaintenance)
}

func TestDeleteMachineBlocksWhenSessionsExist(t *testing.T) {
	sessions := newStubSessions()
	require.NoError(t, sessions.Create(context.Background(), WorkoutSession{ID: "session-1", MachineID: "machine-1"}))

	machines := newStubMachines(Machine{ID: "machine-1", Name: "Bike"})
	service := NewMachineService(machines, sessions)

	require.ErrorIs(t, service.DeleteMachine(context.Background(), "machine-1"), ErrMachineInUse)

	require.NoError(t, sessions.Delete(context.Background(), "session-1"))
	require.NoError(t, service.DeleteMachine(context.Background(), "machine-1"))

	require.ErrorIs(t, service.DeleteMachine(context.Background(), "machine-1"), ErrMachineNotFound)
}
