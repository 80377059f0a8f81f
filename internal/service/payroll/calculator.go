package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/staff"
)

// CalculationInput holds the data shared by every staff member in one run,
// read once so a batch sees a consistent tier set and deduction policy.
type CalculationInput struct {
	Tiers    []payroll.PerformanceTier
	Settings payroll.Settings
}

// Calculator computes one staff member's payroll for one period.
type Calculator struct {
	staffRepo    staff.StaffRepository
	tierRepo     payroll.TierRepository
	settingsRepo payroll.SettingsRepository
	revenue      *RevenueAggregator
	bonuses      *BonusAggregator
}

func NewCalculator(
	staffRepo staff.StaffRepository,
	tierRepo payroll.TierRepository,
	settingsRepo payroll.SettingsRepository,
	revenue *RevenueAggregator,
	bonuses *BonusAggregator,
) *Calculator {
	return &Calculator{
		staffRepo:    staffRepo,
		tierRepo:     tierRepo,
		settingsRepo: settingsRepo,
		revenue:      revenue,
		bonuses:      bonuses,
	}
}

// LoadInput fetches active tiers and the settings snapshot.
func (c *Calculator) LoadInput(ctx context.Context) (CalculationInput, error) {
	tiers, err := c.tierRepo.GetActiveTiers(ctx)
	if err != nil {
		return CalculationInput{}, fmt.Errorf("%w: performance tiers: %w", payroll.ErrDataUnavailable, err)
	}

	settings, err := LoadSettings(ctx, c.settingsRepo)
	if err != nil {
		return CalculationInput{}, err
	}

	return CalculationInput{Tiers: tiers, Settings: settings}, nil
}

// CalculateByID resolves the staff member, loads the run input and calculates.
func (c *Calculator) CalculateByID(ctx context.Context, staffID string, period payroll.Period) (payroll.PayrollRecord, error) {
	if err := period.Validate(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	member, err := c.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, staff.ErrStaffNotFound) {
			return payroll.PayrollRecord{}, fmt.Errorf("%w: %s", payroll.ErrInvalidStaff, staffID)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("%w: staff %s: %w", payroll.ErrDataUnavailable, staffID, err)
	}

	input, err := c.LoadInput(ctx)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	return c.Calculate(ctx, member, period, input)
}

// Calculate produces a record in calculated status; it does not persist it.
//
//	commission = grossRevenue * rate * multiplier
//	netPay     = commission + tierMonthlyBonus + bonusTotal - deductions
//
// Net pay is not floored at zero.
func (c *Calculator) Calculate(ctx context.Context, member staff.Staff, period payroll.Period, input CalculationInput) (payroll.PayrollRecord, error) {
	if err := period.Validate(); err != nil {
		return payroll.PayrollRecord{}, err
	}
	if !member.IsActive {
		return payroll.PayrollRecord{}, fmt.Errorf("%w: %s", payroll.ErrInvalidStaff, member.ID)
	}

	revenue, err := c.revenue.Aggregate(ctx, member.ID, period.Start(), period.End())
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	tier := ResolveTier(revenue.AppointmentCount, input.Tiers)

	rate := input.Settings.DefaultCommissionRate
	if member.BaseCommissionRate != nil {
		rate = *member.BaseCommissionRate
	}
	commission := revenue.GrossRevenue.Mul(rate).Mul(tier.Multiplier).Round(2)

	bonusTotal, err := c.bonuses.Total(ctx, member.ID, period)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	deductions := input.Settings.Deductions
	netPay := commission.Add(tier.MonthlyBonus).Add(bonusTotal).Sub(deductions)

	name := member.Name
	record := payroll.PayrollRecord{
		StaffID:          member.ID,
		PeriodMonth:      period.Month,
		PeriodYear:       period.Year,
		AppointmentCount: revenue.AppointmentCount,
		GrossRevenue:     revenue.GrossRevenue,
		TierID:           tier.TierID,
		CommissionRate:   rate,
		TierMultiplier:   tier.Multiplier,
		CommissionAmount: commission,
		TierMonthlyBonus: tier.MonthlyBonus,
		BonusTotal:       bonusTotal,
		Deductions:       deductions,
		NetPay:           netPay,
		Status:           payroll.PayrollStatusCalculated,
		StaffName:        &name,
	}
	if tier.TierID != nil {
		tierName := tier.TierName
		record.TierName = &tierName
	}

	return record, nil
}
