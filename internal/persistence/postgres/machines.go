package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gymtrack/internal/domain"
)

// MachineRepository provides Postgres-backed persistence for the equipment
// inventory.
type MachineRepository struct {
	pool *pgxpool.Pool
}

// NewMachineRepository constructs a MachineRepository.
func NewMachineRepository(pool *pgxpool.Pool) *MachineRepository {
	return &MachineRepository{pool: pool}
}

const machineColumns = `machine_id, name, type, status, location, maintenance_interval_days,
        last_maintenance, next_maintenance, created_at, updated_at`

func scanMachine(row rowScanner) (*domain.Machine, error) {
	var m domain.Machine
	err := row.Scan(
		&m.ID, &m.Name, &m.Type, &m.Status, &m.Location, &m.MaintenanceIntervalDays,
		&m.LastMaintenance, &m.NextMaintenance, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a machine row.
func (r *MachineRepository) Create(ctx context.Context, machine domain.Machine) error {
	const stmt = `INSERT INTO machines (` + machineColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.pool.Exec(ctx, stmt,
		machine.ID, machine.Name, machine.Type, machine.Status, machine.Location,
		machine.MaintenanceIntervalDays, machine.LastMaintenance, machine.NextMaintenance,
		machine.CreatedAt, machine.UpdatedAt,
	)
	return err
}

// Update rewrites a machine row.
func (r *MachineRepository) Update(ctx context.Context, machine domain.Machine) error {
	const stmt = `UPDATE machines SET name=$2, type=$3, status=$4, location=$5,
        maintenance_interval_days=$6, last_maintenance=$7, next_maintenance=$8, updated_at=$9
        WHERE machine_id=$1`
	tag, err := r.pool.Exec(ctx, stmt,
		machine.ID, machine.Name, machine.Type, machine.Status, machine.Location,
		machine.MaintenanceIntervalDays, machine.LastMaintenance, machine.NextMaintenance,
		machine.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMachineNotFound
	}
	return nil
}

// Delete removes a machine row.
func (r *MachineRepository) Delete(ctx context.Context, machineID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM machines WHERE machine_id=$1`, machineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMachineNotFound
	}
	return nil
}

// Get retrieves a machine by ID, nil when absent.
func (r *MachineRepository) Get(ctx context.Context, machineID string) (*domain.Machine, error) {
	const query = `SELECT ` + machineColumns + ` FROM machines WHERE machine_id=$1`
	machine, err := scanMachine(r.pool.QueryRow(ctx, query, machineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return machine, nil
}

// GetByName retrieves a machine by its unique name, nil when absent.
func (r *MachineRepository) GetByName(ctx context.Context, name string) (*domain.Machine, error) {
	const query = `SELECT ` + machineColumns + ` FROM machines WHERE name=$1`
	machine, err := scanMachine(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return machine, nil
}

// List returns the inventory ordered by name.
func (r *MachineRepository) List(ctx context.Context) ([]domain.Machine, error) {
	const query = `SELECT ` + machineColumns + ` FROM machines ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []domain.Machine
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, *machine)
	}
	return machines, rows.Err()
}

// Count returns the inventory size.
func (r *MachineRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM machines`).Scan(&count)
	return count, err
}
