package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/staff"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type staffRepository struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, name, is_active, base_commission_rate, created_at, updated_at`

type staffScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row staffScanner) (staff.Staff, error) {
	var (
		s    staff.Staff
		rate decimal.NullDecimal
	)
	if err := row.Scan(&s.ID, &s.Name, &s.IsActive, &rate, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return staff.Staff{}, err
	}
	if rate.Valid {
		s.BaseCommissionRate = &rate.Decimal
	}
	return s, nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	// ids are UUID columns; anything else cannot match a row
	if !validator.IsValidUUID(id) {
		return staff.Staff{}, staff.ErrStaffNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	s, err := scanStaff(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff by id: %w", err)
	}

	return s, nil
}

func (r *staffRepository) GetActive(ctx context.Context) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + ` FROM staff WHERE is_active = true ORDER BY id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active staff: %w", err)
	}
	defer rows.Close()

	var result []staff.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staff: %w", err)
	}

	return result, nil
}
