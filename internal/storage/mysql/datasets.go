package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/storage"
)

func (s *Storage) SaveDataset(ctx context.Context, ds *storage.Dataset) error {
	const op = "storage.datasets.SaveDataset.sql"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, created_at) VALUES (?, ?, ?)`,
		ds.ID, ds.Name, ds.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: insert dataset: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dataset_rows
			(dataset_id, pos, batch, material, leaf, requirement_date,
			 gross_demand_kg, in_transit_kg, net_need_kg, conversion_factor, cartons_needed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare rows: %w", op, err)
	}
	defer stmt.Close()

	for i, r := range ds.Rows {
		_, err = stmt.ExecContext(ctx,
			ds.ID, i, r.Batch, r.Material, r.Leaf, r.RequirementDate,
			r.GrossDemandKg, r.InTransitKg, r.NetNeedKg, r.ConversionFactor, r.CartonsNeeded,
		)
		if err != nil {
			return fmt.Errorf("%s: insert row %d: %w", op, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) GetDataset(ctx context.Context, id string) (*storage.Dataset, error) {
	const op = "storage.datasets.GetDataset.sql"

	ds := &storage.Dataset{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM datasets WHERE id = ?`, id,
	).Scan(&ds.ID, &ds.Name, &ds.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT batch, material, leaf, requirement_date,
		       gross_demand_kg, in_transit_kg, net_need_kg, conversion_factor, cartons_needed
		FROM dataset_rows
		WHERE dataset_id = ?
		ORDER BY pos
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: select rows: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r planner.DemandRow
		err = rows.Scan(
			&r.Batch, &r.Material, &r.Leaf, &r.RequirementDate,
			&r.GrossDemandKg, &r.InTransitKg, &r.NetNeedKg, &r.ConversionFactor, &r.CartonsNeeded,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		ds.Rows = append(ds.Rows, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ds, nil
}

func (s *Storage) ListDatasets(ctx context.Context) ([]*storage.Dataset, error) {
	const op = "storage.datasets.ListDatasets.sql"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM datasets ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*storage.Dataset
	for rows.Next() {
		ds := &storage.Dataset{}
		if err = rows.Scan(&ds.ID, &ds.Name, &ds.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, ds)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// DeleteDataset removes the dataset, its rows, and every plan computed
// from it.
func (s *Storage) DeleteDataset(ctx context.Context, id string) error {
	const op = "storage.datasets.DeleteDataset.sql"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM plan_coverage WHERE plan_id IN (SELECT id FROM plans WHERE dataset_id = ?)`, id)
	if err != nil {
		return fmt.Errorf("%s: delete coverage: %w", op, err)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM plan_loads WHERE plan_id IN (SELECT id FROM plans WHERE dataset_id = ?)`, id)
	if err != nil {
		return fmt.Errorf("%s: delete loads: %w", op, err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM plans WHERE dataset_id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: delete plans: %w", op, err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM dataset_rows WHERE dataset_id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: delete rows: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: delete dataset: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}
