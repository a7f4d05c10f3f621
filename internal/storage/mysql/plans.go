package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/storage"
)

func (s *Storage) SavePlan(ctx context.Context, p *storage.Plan) error {
	const op = "storage.plans.SavePlan.sql"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans
			(id, dataset_id, created_at, target_date, num_vehicles, capacity_per_vehicle, total_capacity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.DatasetID, p.CreatedAt, p.TargetDate, p.NumVehicles, p.Capacity, p.TotalCapacity)
	if err != nil {
		return fmt.Errorf("%s: insert plan: %w", op, err)
	}

	loadStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plan_loads
			(plan_id, pos, vehicle_number, batch, material, leaf, conversion_factor, cartons_loaded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare loads: %w", op, err)
	}
	defer loadStmt.Close()

	for i, l := range p.Loads {
		_, err = loadStmt.ExecContext(ctx,
			p.ID, i, l.VehicleNumber, l.Batch, l.Material, l.Leaf, l.ConversionFactor, l.CartonsLoaded,
		)
		if err != nil {
			return fmt.Errorf("%s: insert load %d: %w", op, i, err)
		}
	}

	covStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plan_coverage (plan_id, pos, date, need_before, need_after)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare coverage: %w", op, err)
	}
	defer covStmt.Close()

	for i, c := range p.Coverage {
		_, err = covStmt.ExecContext(ctx, p.ID, i, c.Date, c.NeedBefore, c.NeedAfter)
		if err != nil {
			return fmt.Errorf("%s: insert coverage %d: %w", op, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) GetPlan(ctx context.Context, id string) (*storage.Plan, error) {
	const op = "storage.plans.GetPlan.sql"

	p := &storage.Plan{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, dataset_id, created_at, target_date, num_vehicles, capacity_per_vehicle, total_capacity
		FROM plans WHERE id = ?
	`, id).Scan(&p.ID, &p.DatasetID, &p.CreatedAt, &p.TargetDate, &p.NumVehicles, &p.Capacity, &p.TotalCapacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loads, err := s.db.QueryContext(ctx, `
		SELECT vehicle_number, batch, material, leaf, conversion_factor, cartons_loaded
		FROM plan_loads WHERE plan_id = ? ORDER BY pos
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: select loads: %w", op, err)
	}
	defer loads.Close()

	for loads.Next() {
		var l planner.LoadEntry
		err = loads.Scan(&l.VehicleNumber, &l.Batch, &l.Material, &l.Leaf, &l.ConversionFactor, &l.CartonsLoaded)
		if err != nil {
			return nil, fmt.Errorf("%s: scan load: %w", op, err)
		}
		p.Loads = append(p.Loads, l)
	}
	if err = loads.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	coverage, err := s.db.QueryContext(ctx, `
		SELECT date, need_before, need_after
		FROM plan_coverage WHERE plan_id = ? ORDER BY pos
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: select coverage: %w", op, err)
	}
	defer coverage.Close()

	for coverage.Next() {
		var c planner.CoveragePoint
		if err = coverage.Scan(&c.Date, &c.NeedBefore, &c.NeedAfter); err != nil {
			return nil, fmt.Errorf("%s: scan coverage: %w", op, err)
		}
		p.Coverage = append(p.Coverage, c)
	}
	if err = coverage.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Storage) ListPlans(ctx context.Context) ([]*storage.Plan, error) {
	const op = "storage.plans.ListPlans.sql"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dataset_id, created_at, target_date, num_vehicles, capacity_per_vehicle, total_capacity
		FROM plans ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*storage.Plan
	for rows.Next() {
		p := &storage.Plan{}
		err = rows.Scan(&p.ID, &p.DatasetID, &p.CreatedAt, &p.TargetDate, &p.NumVehicles, &p.Capacity, &p.TotalCapacity)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storage) DeletePlan(ctx context.Context, id string) error {
	const op = "storage.plans.DeletePlan.sql"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM plan_coverage WHERE plan_id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete coverage: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM plan_loads WHERE plan_id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete loads: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: delete plan: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}
