package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// LoadSettings reads the key/value settings store once and returns the
// snapshot used for a whole calculation run. Absent keys default to zero.
func LoadSettings(ctx context.Context, settingsRepo payroll.SettingsRepository) (payroll.Settings, error) {
	rows, err := settingsRepo.GetAll(ctx)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("%w: payroll settings: %w", payroll.ErrDataUnavailable, err)
	}

	settings := payroll.Settings{
		Deductions:            decimal.Zero,
		DefaultCommissionRate: decimal.Zero,
	}

	for _, row := range rows {
		var target *decimal.Decimal
		switch row.Key {
		case payroll.SettingMonthlyDeduction:
			target = &settings.Deductions
		case payroll.SettingDefaultCommissionRate:
			target = &settings.DefaultCommissionRate
		default:
			continue
		}

		value, err := decimal.NewFromString(row.Value)
		if err != nil {
			return payroll.Settings{}, fmt.Errorf("%w: %s=%q", payroll.ErrInvalidSetting, row.Key, row.Value)
		}
		*target = value
	}

	return settings, nil
}
