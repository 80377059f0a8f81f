package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/database"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) payroll.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetAll(ctx context.Context) ([]payroll.PayrollSetting, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT key, value, updated_at, updated_by FROM payroll_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	defer rows.Close()

	var settings []payroll.PayrollSetting
	for rows.Next() {
		var s payroll.PayrollSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt, &s.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan payroll setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll settings: %w", err)
	}

	return settings, nil
}
