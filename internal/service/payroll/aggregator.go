package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// RevenueAggregator sums completed-appointment revenue for a staff member.
type RevenueAggregator struct {
	appointmentRepo payroll.AppointmentRepository
	timeout         time.Duration
}

func NewRevenueAggregator(appointmentRepo payroll.AppointmentRepository, timeout time.Duration) *RevenueAggregator {
	return &RevenueAggregator{appointmentRepo: appointmentRepo, timeout: timeout}
}

// Aggregate returns the count and gross revenue of qualifying appointments
// dated within [start, end]. Store failures and timeouts surface as
// ErrDataUnavailable.
func (a *RevenueAggregator) Aggregate(ctx context.Context, staffID string, start, end time.Time) (payroll.RevenueSummary, error) {
	if end.Before(start) {
		return payroll.RevenueSummary{}, payroll.ErrInvalidPeriod
	}

	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	summary, err := a.appointmentRepo.SummarizeCompleted(ctx, staffID, start, end)
	if err != nil {
		return payroll.RevenueSummary{}, fmt.Errorf("%w: appointments for staff %s: %w", payroll.ErrDataUnavailable, staffID, err)
	}
	return summary, nil
}

// BonusAggregator sums discretionary bonuses awarded for a period.
type BonusAggregator struct {
	bonusRepo payroll.BonusRepository
	timeout   time.Duration
}

func NewBonusAggregator(bonusRepo payroll.BonusRepository, timeout time.Duration) *BonusAggregator {
	return &BonusAggregator{bonusRepo: bonusRepo, timeout: timeout}
}

// Total returns the sum of all bonus amounts for the staff member and period
// regardless of bonus type. No bonuses yields zero.
func (a *BonusAggregator) Total(ctx context.Context, staffID string, period payroll.Period) (decimal.Decimal, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	total, err := a.bonusRepo.SumForPeriod(ctx, staffID, period.Month, period.Year)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bonuses for staff %s: %w", payroll.ErrDataUnavailable, staffID, err)
	}
	return total, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
