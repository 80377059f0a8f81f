package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/staff"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BatchOrchestrator calculates and stores payroll for every active staff
// member in a period. One staff member's failure is recorded in the summary
// and does not stop the others.
type BatchOrchestrator struct {
	staffRepo   staff.StaffRepository
	calculator  *Calculator
	lifecycle   *LifecycleManager
	concurrency int
}

func NewBatchOrchestrator(
	staffRepo staff.StaffRepository,
	calculator *Calculator,
	lifecycle *LifecycleManager,
	concurrency int,
) *BatchOrchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchOrchestrator{
		staffRepo:   staffRepo,
		calculator:  calculator,
		lifecycle:   lifecycle,
		concurrency: concurrency,
	}
}

// Run processes the period. staffIDs narrows the run to a subset of active
// staff; ids that are unknown or inactive are reported as failures.
func (b *BatchOrchestrator) Run(ctx context.Context, period payroll.Period, staffIDs []string) (payroll.PeriodSummary, error) {
	if err := period.Validate(); err != nil {
		return payroll.PeriodSummary{}, err
	}

	start := time.Now()

	active, err := b.staffRepo.GetActive(ctx)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("%w: active staff: %w", payroll.ErrDataUnavailable, err)
	}

	input, err := b.calculator.LoadInput(ctx)
	if err != nil {
		return payroll.PeriodSummary{}, err
	}

	members, failures := selectStaff(active, staffIDs)

	slog.Info("Payroll batch starting",
		"period_month", period.Month,
		"period_year", period.Year,
		"staff_count", len(members),
	)

	var (
		mu      sync.Mutex
		records []payroll.PayrollRecord
		g       errgroup.Group
	)
	g.SetLimit(b.concurrency)

	for _, member := range members {
		g.Go(func() error {
			record, err := b.processStaff(ctx, member, period, input)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Payroll calculation failed",
					"staff_id", member.ID,
					"period_month", period.Month,
					"period_year", period.Year,
					"error", err,
				)
				failures = append(failures, payroll.StaffFailure{StaffID: member.ID, StaffName: member.Name, Err: err})
				return nil
			}
			records = append(records, record)
			return nil
		})
	}
	_ = g.Wait()

	summary := Summarize(period, records, failures)

	slog.Info("Payroll batch completed",
		"period_month", period.Month,
		"period_year", period.Year,
		"processed", summary.StaffProcessed,
		"failed", len(summary.Failures),
		"total_net_pay", summary.TotalNetPay.String(),
		"duration", time.Since(start),
	)

	return summary, nil
}

// processStaff finishes the whole calculation before writing anything.
func (b *BatchOrchestrator) processStaff(ctx context.Context, member staff.Staff, period payroll.Period, input CalculationInput) (payroll.PayrollRecord, error) {
	record, err := b.calculator.Calculate(ctx, member, period, input)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	return b.lifecycle.Upsert(ctx, record)
}

func selectStaff(active []staff.Staff, staffIDs []string) ([]staff.Staff, []payroll.StaffFailure) {
	if len(staffIDs) == 0 {
		return active, nil
	}

	byID := make(map[string]staff.Staff, len(active))
	for _, s := range active {
		byID[s.ID] = s
	}

	var (
		selected []staff.Staff
		failures []payroll.StaffFailure
		seen     = make(map[string]bool, len(staffIDs))
	)
	for _, id := range staffIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		s, ok := byID[id]
		if !ok {
			failures = append(failures, payroll.StaffFailure{StaffID: id, Err: fmt.Errorf("%w: %s", payroll.ErrInvalidStaff, id)})
			continue
		}
		selected = append(selected, s)
	}
	return selected, failures
}

// Summarize totals a set of records. Records and failures are ordered by
// staff ID.
func Summarize(period payroll.Period, records []payroll.PayrollRecord, failures []payroll.StaffFailure) payroll.PeriodSummary {
	sort.Slice(records, func(i, j int) bool { return records[i].StaffID < records[j].StaffID })
	sort.Slice(failures, func(i, j int) bool { return failures[i].StaffID < failures[j].StaffID })

	summary := payroll.PeriodSummary{
		Period:          period,
		TotalGross:      decimal.Zero,
		TotalCommission: decimal.Zero,
		TotalTierBonus:  decimal.Zero,
		TotalBonuses:    decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNetPay:     decimal.Zero,
		StaffProcessed:  len(records),
		Records:         records,
		Failures:        failures,
	}

	for _, r := range records {
		summary.TotalGross = summary.TotalGross.Add(r.GrossRevenue)
		summary.TotalCommission = summary.TotalCommission.Add(r.CommissionAmount)
		summary.TotalTierBonus = summary.TotalTierBonus.Add(r.TierMonthlyBonus)
		summary.TotalBonuses = summary.TotalBonuses.Add(r.BonusTotal)
		summary.TotalDeductions = summary.TotalDeductions.Add(r.Deductions)
		summary.TotalNetPay = summary.TotalNetPay.Add(r.NetPay)

		switch r.Status {
		case payroll.PayrollStatusApproved:
			summary.ApprovedCount++
		case payroll.PayrollStatusPaid:
			summary.PaidCount++
		default:
			summary.CalculatedCount++
		}
	}

	return summary
}
