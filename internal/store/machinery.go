package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

const machineryColumns = `id, name, category, model, brand, serial_no, purchase_date, notes`

// CreateMachinery inserts a machine.
func CreateMachinery(ctx context.Context, q sqlx.ExtContext, m model.Machinery) (*model.Machinery, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO machinery (name, category, model, brand, serial_no, purchase_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Category, m.Model, m.Brand, m.SerialNo, utcPtr(m.PurchaseDate), m.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating machinery: %w", err)
	}
	return GetMachinery(ctx, q, id)
}

// GetMachinery returns a machine by ID.
func GetMachinery(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Machinery, error) {
	m, err := getOne[model.Machinery](ctx, q,
		`SELECT `+machineryColumns+` FROM machinery WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting machinery: %w", err)
	}
	return m, nil
}

// ListMachinery returns all machines ordered by name.
func ListMachinery(ctx context.Context, q sqlx.ExtContext) ([]model.Machinery, error) {
	ms, err := selectAll[model.Machinery](ctx, q,
		`SELECT `+machineryColumns+` FROM machinery ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing machinery: %w", err)
	}
	return ms, nil
}

// UpdateMachinery overwrites an existing machine.
func UpdateMachinery(ctx context.Context, q sqlx.ExtContext, m model.Machinery) (*model.Machinery, error) {
	err := execAffected(ctx, q,
		`UPDATE machinery SET name = ?, category = ?, model = ?, brand = ?, serial_no = ?,
		     purchase_date = ?, notes = ?
		 WHERE id = ?`,
		m.Name, m.Category, m.Model, m.Brand, m.SerialNo, utcPtr(m.PurchaseDate), m.Notes, m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating machinery: %w", err)
	}
	return GetMachinery(ctx, q, m.ID)
}

// DeleteMachinery removes a machine and its service history.
func DeleteMachinery(ctx context.Context, q sqlx.ExtContext, id int64) error {
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM machinery_service WHERE machinery_id = ?`), id); err != nil {
		return fmt.Errorf("deleting machinery services: %w", err)
	}
	if err := execAffected(ctx, q, `DELETE FROM machinery WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting machinery: %w", err)
	}
	return nil
}

// CountMachinery returns the number of machines.
func CountMachinery(ctx context.Context, q sqlx.ExtContext) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM machinery`); err != nil {
		return 0, fmt.Errorf("counting machinery: %w", err)
	}
	return n, nil
}

// CreateMachineryService records a service visit.
func CreateMachineryService(ctx context.Context, q sqlx.ExtContext, s model.MachineryService) (*model.MachineryService, error) {
	id, err := insertID(ctx, q,
		`INSERT INTO machinery_service (machinery_id, service_date, service_type, cost, vendor, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.MachineryID, s.ServiceDate.UTC(), s.ServiceType, s.Cost, s.Vendor, s.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating machinery service: %w", err)
	}
	s.ID = id
	return &s, nil
}

// ListMachineryServices returns the service history of a machine, newest first.
func ListMachineryServices(ctx context.Context, q sqlx.ExtContext, machineryID int64) ([]model.MachineryService, error) {
	ss, err := selectAll[model.MachineryService](ctx, q,
		`SELECT id, machinery_id, service_date, service_type, cost, vendor, notes
		 FROM machinery_service WHERE machinery_id = ?
		 ORDER BY service_date DESC, id DESC`, machineryID)
	if err != nil {
		return nil, fmt.Errorf("listing machinery services: %w", err)
	}
	return ss, nil
}
