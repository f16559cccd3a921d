package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SupplierService owns supplier master data. Suppliers are soft-deleted so
// historical purchases keep a valid reference.
type SupplierService interface {
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	ListSuppliers(ctx context.Context, includeInactive bool) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, id string, input SupplierInput) (*Supplier, error)
	// DeactivateSupplier marks a supplier inactive. New purchases can no
	// longer reference it; existing purchases are untouched.
	DeactivateSupplier(ctx context.Context, id string) error
}

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

const supplierColumns = `id, name, contact, phone, address, is_active, created_at, updated_at`

func scanSupplier(row pgx.Row) (*Supplier, error) {
	sp := &Supplier{}
	err := row.Scan(&sp.ID, &sp.Name, &sp.Contact, &sp.Phone, &sp.Address,
		&sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *supplierService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("supplier name is required")
	}

	sp, err := scanSupplier(s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact, phone, address)
		VALUES ($1, $2, $3, $4)
		RETURNING `+supplierColumns,
		input.Name, optional(input.Contact), optional(input.Phone), optional(input.Address),
	))
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.Name, err)
	}
	return sp, nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	sp, err := scanSupplier(s.pool.QueryRow(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get supplier %s: %w", id, err)
	}
	return sp, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, includeInactive bool) ([]Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers`
	if !includeInactive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sp Supplier
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Contact, &sp.Phone, &sp.Address,
			&sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, input SupplierInput) (*Supplier, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("supplier name is required")
	}

	sp, err := scanSupplier(s.pool.QueryRow(ctx, `
		UPDATE suppliers
		SET name = $1, contact = $2, phone = $3, address = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+supplierColumns,
		input.Name, optional(input.Contact), optional(input.Phone), optional(input.Address), id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update supplier %s: %w", id, err)
	}
	return sp, nil
}

func (s *supplierService) DeactivateSupplier(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE suppliers SET is_active = false, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deactivate supplier %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %s: %w", id, ErrNotFound)
	}
	return nil
}
