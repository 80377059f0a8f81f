package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/database"
)

type tierRepository struct {
	db *database.DB
}

func NewTierRepository(db *database.DB) payroll.TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) GetActiveTiers(ctx context.Context) ([]payroll.PerformanceTier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, min_appointments, max_appointments, commission_multiplier,
			   monthly_bonus, is_active, created_at, updated_at
		FROM performance_tiers
		WHERE is_active = true
		ORDER BY min_appointments, id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance tiers: %w", err)
	}
	defer rows.Close()

	var tiers []payroll.PerformanceTier
	for rows.Next() {
		var t payroll.PerformanceTier
		if err := rows.Scan(
			&t.ID, &t.Name, &t.MinAppointments, &t.MaxAppointments, &t.CommissionMultiplier,
			&t.MonthlyBonus, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate performance tiers: %w", err)
	}

	return tiers, nil
}
