package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type bonusRepository struct {
	db *database.DB
}

func NewBonusRepository(db *database.DB) payroll.BonusRepository {
	return &bonusRepository{db: db}
}

const bonusColumns = `id, staff_id, bonus_type, amount, description, awarded_date,
	period_month, period_year, created_by, notes, created_at`

func (r *bonusRepository) SumForPeriod(ctx context.Context, staffID string, month, year int) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM staff_bonuses
		WHERE staff_id = $1 AND period_month = $2 AND period_year = $3
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, staffID, month, year).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum staff bonuses: %w", err)
	}

	return total, nil
}

func (r *bonusRepository) ListForPeriod(ctx context.Context, staffID string, month, year int) ([]payroll.StaffBonus, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + bonusColumns + `
		FROM staff_bonuses
		WHERE staff_id = $1 AND period_month = $2 AND period_year = $3
		ORDER BY awarded_date, created_at`

	rows, err := q.Query(ctx, query, staffID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff bonuses: %w", err)
	}
	defer rows.Close()

	var bonuses []payroll.StaffBonus
	for rows.Next() {
		var b payroll.StaffBonus
		if err := rows.Scan(
			&b.ID, &b.StaffID, &b.Type, &b.Amount, &b.Description, &b.AwardedDate,
			&b.PeriodMonth, &b.PeriodYear, &b.CreatedBy, &b.Notes, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan staff bonus: %w", err)
		}
		bonuses = append(bonuses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staff bonuses: %w", err)
	}

	return bonuses, nil
}

// Create locks the period's payroll record, if any, so an approval cannot
// slip in between the status check and the insert.
func (r *bonusRepository) Create(ctx context.Context, bonus payroll.StaffBonus) (payroll.StaffBonus, error) {
	var created payroll.StaffBonus

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var status payroll.PayrollStatus
		err := q.QueryRow(ctx, `
			SELECT status FROM payroll_records
			WHERE staff_id = $1 AND period_month = $2 AND period_year = $3
			FOR UPDATE
		`, bonus.StaffID, bonus.PeriodMonth, bonus.PeriodYear).Scan(&status)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to check payroll record status: %w", err)
		case !status.IsMutable():
			return payroll.ErrImmutableRecord
		}

		query := `
			INSERT INTO staff_bonuses (
				staff_id, bonus_type, amount, description, awarded_date,
				period_month, period_year, created_by, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING ` + bonusColumns

		err = q.QueryRow(ctx, query,
			bonus.StaffID, string(bonus.Type), bonus.Amount, bonus.Description, bonus.AwardedDate,
			bonus.PeriodMonth, bonus.PeriodYear, bonus.CreatedBy, bonus.Notes,
		).Scan(
			&created.ID, &created.StaffID, &created.Type, &created.Amount, &created.Description, &created.AwardedDate,
			&created.PeriodMonth, &created.PeriodYear, &created.CreatedBy, &created.Notes, &created.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create staff bonus: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.StaffBonus{}, err
	}

	return created, nil
}
