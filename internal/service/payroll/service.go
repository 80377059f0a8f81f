package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/staff"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/cache"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/validator"
)

type Options struct {
	QueryTimeout     time.Duration
	BatchConcurrency int
	// SummaryCache is optional; nil disables caching of period summaries.
	SummaryCache cache.SummaryCache
}

type PayrollServiceImpl struct {
	staffRepo  staff.StaffRepository
	tierRepo   payroll.TierRepository
	bonusRepo  payroll.BonusRepository
	recordRepo payroll.RecordRepository
	calculator *Calculator
	batch      *BatchOrchestrator
	lifecycle  *LifecycleManager
	cache      cache.SummaryCache
}

func NewPayrollService(
	staffRepo staff.StaffRepository,
	tierRepo payroll.TierRepository,
	bonusRepo payroll.BonusRepository,
	settingsRepo payroll.SettingsRepository,
	appointmentRepo payroll.AppointmentRepository,
	recordRepo payroll.RecordRepository,
	opts Options,
) payroll.PayrollService {
	calculator := NewCalculator(
		staffRepo,
		tierRepo,
		settingsRepo,
		NewRevenueAggregator(appointmentRepo, opts.QueryTimeout),
		NewBonusAggregator(bonusRepo, opts.QueryTimeout),
	)
	lifecycle := NewLifecycleManager(recordRepo)

	return &PayrollServiceImpl{
		staffRepo:  staffRepo,
		tierRepo:   tierRepo,
		bonusRepo:  bonusRepo,
		recordRepo: recordRepo,
		calculator: calculator,
		batch:      NewBatchOrchestrator(staffRepo, calculator, lifecycle, opts.BatchConcurrency),
		lifecycle:  lifecycle,
		cache:      opts.SummaryCache,
	}
}

// ========== CALCULATION ==========

func (s *PayrollServiceImpl) CalculateStaffPayroll(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Period().Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, err := s.calculator.CalculateByID(ctx, req.StaffID, req.Period())
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	saved, err := s.lifecycle.Upsert(ctx, record)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	s.invalidateSummary(ctx, req.Period())

	return mapToRecordResponse(saved), nil
}

func (s *PayrollServiceImpl) CalculateAllStaffPayroll(ctx context.Context, req payroll.CalculateAllPayrollRequest) (payroll.PeriodSummaryResponse, error) {
	if err := req.Period().Validate(); err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	summary, err := s.batch.Run(ctx, req.Period(), req.StaffIDs)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}
	if summary.StaffProcessed > 0 {
		s.invalidateSummary(ctx, req.Period())
	}

	return mapToSummaryResponse(summary), nil
}

// GetPayrollSummary aggregates already-persisted records; it never calculates.
func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, month, year int) (payroll.PeriodSummaryResponse, error) {
	period := payroll.Period{Month: month, Year: year}
	if err := period.Validate(); err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	// Set is skipped when the generation moves during the records read.
	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, month, year)
		switch {
		case err != nil:
			slog.Warn("Payroll summary cache read failed", "error", err)
		case ok:
			return cached, nil
		default:
			generation, err = s.cache.Generation(ctx, month, year)
			if err != nil {
				slog.Warn("Payroll summary cache read failed", "error", err)
			}
			cacheable = err == nil
		}
	}

	summary, err := s.recordRepo.Summarize(ctx, month, year)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, fmt.Errorf("%w: payroll summary: %w", payroll.ErrDataUnavailable, err)
	}
	summary.Period = period

	resp := mapToSummaryResponse(summary)
	if cacheable {
		stored, err := s.cache.Set(ctx, month, year, generation, resp)
		if err != nil {
			slog.Warn("Payroll summary cache write failed", "error", err)
		} else if !stored {
			slog.Debug("Payroll summary changed during read, not cached",
				"period_month", month,
				"period_year", year,
			)
		}
	}
	return resp, nil
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) ApprovePayroll(ctx context.Context, payrollID string, approverID string) error {
	record, err := s.lifecycle.Approve(ctx, payrollID, approverID)
	if err != nil {
		return err
	}
	s.invalidateSummary(ctx, record.Period())
	return nil
}

func (s *PayrollServiceImpl) MarkAsPaid(ctx context.Context, payrollID string) error {
	record, err := s.lifecycle.MarkPaid(ctx, payrollID)
	if err != nil {
		return err
	}
	s.invalidateSummary(ctx, record.Period())
	return nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return payroll.PayrollRecordResponse{}, err
		}
		return payroll.PayrollRecordResponse{}, fmt.Errorf("%w: payroll record %s: %w", payroll.ErrDataUnavailable, id, err)
	}
	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	records, totalCount, err := s.recordRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("%w: payroll records: %w", payroll.ErrDataUnavailable, err)
	}

	return payroll.ListPayrollRecordResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== TIERS & BONUSES ==========

func (s *PayrollServiceImpl) ListTiers(ctx context.Context) ([]payroll.TierResponse, error) {
	tiers, err := s.tierRepo.GetActiveTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: performance tiers: %w", payroll.ErrDataUnavailable, err)
	}

	result := make([]payroll.TierResponse, 0, len(tiers))
	for _, t := range tiers {
		result = append(result, payroll.TierResponse{
			ID:                   t.ID,
			Name:                 t.Name,
			MinAppointments:      t.MinAppointments,
			MaxAppointments:      t.MaxAppointments,
			CommissionMultiplier: t.CommissionMultiplier,
			MonthlyBonus:         t.MonthlyBonus,
		})
	}
	return result, nil
}

func (s *PayrollServiceImpl) AwardBonus(ctx context.Context, req payroll.CreateBonusRequest) (payroll.BonusResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BonusResponse{}, err
	}

	member, err := s.staffRepo.GetByID(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, staff.ErrStaffNotFound) {
			return payroll.BonusResponse{}, payroll.ErrInvalidStaff
		}
		return payroll.BonusResponse{}, fmt.Errorf("%w: staff %s: %w", payroll.ErrDataUnavailable, req.StaffID, err)
	}
	if !member.IsActive {
		return payroll.BonusResponse{}, payroll.ErrInvalidStaff
	}

	awardedDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.AwardedDate != nil {
		if parsed, ok := validator.IsValidDate(*req.AwardedDate); ok {
			awardedDate = parsed
		}
	}

	bonus := payroll.StaffBonus{
		StaffID:     req.StaffID,
		Type:        payroll.BonusType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		AwardedDate: awardedDate,
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		CreatedBy:   req.CreatedBy,
		Notes:       req.Notes,
	}

	created, err := s.bonusRepo.Create(ctx, bonus)
	if err != nil {
		if errors.Is(err, payroll.ErrImmutableRecord) {
			return payroll.BonusResponse{}, err
		}
		return payroll.BonusResponse{}, fmt.Errorf("%w: create bonus: %w", payroll.ErrDataUnavailable, err)
	}

	return mapToBonusResponse(created), nil
}

func (s *PayrollServiceImpl) ListBonuses(ctx context.Context, staffID string, month, year int) ([]payroll.BonusResponse, error) {
	if err := (payroll.Period{Month: month, Year: year}).Validate(); err != nil {
		return nil, err
	}

	bonuses, err := s.bonusRepo.ListForPeriod(ctx, staffID, month, year)
	if err != nil {
		return nil, fmt.Errorf("%w: bonuses for staff %s: %w", payroll.ErrDataUnavailable, staffID, err)
	}

	result := make([]payroll.BonusResponse, 0, len(bonuses))
	for _, b := range bonuses {
		result = append(result, mapToBonusResponse(b))
	}
	return result, nil
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) invalidateSummary(ctx context.Context, period payroll.Period) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, period.Month, period.Year); err != nil {
		slog.Warn("Payroll summary cache invalidation failed",
			"period_month", period.Month,
			"period_year", period.Year,
			"error", err,
		)
	}
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	var approvedAtStr, paidAtStr *string
	if r.ApprovedAt != nil {
		str := r.ApprovedAt.Format(time.RFC3339)
		approvedAtStr = &str
	}
	if r.PaidAt != nil {
		str := r.PaidAt.Format(time.RFC3339)
		paidAtStr = &str
	}

	staffName := ""
	if r.StaffName != nil {
		staffName = *r.StaffName
	}

	return payroll.PayrollRecordResponse{
		ID:               r.ID,
		StaffID:          r.StaffID,
		StaffName:        staffName,
		PeriodMonth:      r.PeriodMonth,
		PeriodYear:       r.PeriodYear,
		AppointmentCount: r.AppointmentCount,
		GrossRevenue:     r.GrossRevenue,
		TierID:           r.TierID,
		TierName:         r.TierName,
		CommissionRate:   r.CommissionRate,
		TierMultiplier:   r.TierMultiplier,
		CommissionAmount: r.CommissionAmount,
		TierMonthlyBonus: r.TierMonthlyBonus,
		BonusTotal:       r.BonusTotal,
		Deductions:       r.Deductions,
		NetPay:           r.NetPay,
		Status:           string(r.Status),
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       approvedAtStr,
		PaidAt:           paidAtStr,
	}
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}

func mapToSummaryResponse(s payroll.PeriodSummary) payroll.PeriodSummaryResponse {
	resp := payroll.PeriodSummaryResponse{
		PeriodMonth:     s.Period.Month,
		PeriodYear:      s.Period.Year,
		TotalGross:      s.TotalGross,
		TotalCommission: s.TotalCommission,
		TotalTierBonus:  s.TotalTierBonus,
		TotalBonuses:    s.TotalBonuses,
		TotalDeductions: s.TotalDeductions,
		TotalNetPay:     s.TotalNetPay,
		StaffProcessed:  s.StaffProcessed,
		CalculatedCount: s.CalculatedCount,
		ApprovedCount:   s.ApprovedCount,
		PaidCount:       s.PaidCount,
	}
	if len(s.Records) > 0 {
		resp.Records = mapToRecordResponses(s.Records)
	}
	for _, f := range s.Failures {
		resp.Failures = append(resp.Failures, payroll.StaffFailureResponse{
			StaffID:   f.StaffID,
			StaffName: f.StaffName,
			Error:     f.Err.Error(),
		})
	}
	return resp
}

func mapToBonusResponse(b payroll.StaffBonus) payroll.BonusResponse {
	return payroll.BonusResponse{
		ID:          b.ID,
		StaffID:     b.StaffID,
		Type:        string(b.Type),
		Amount:      b.Amount,
		Description: b.Description,
		AwardedDate: b.AwardedDate.Format("2006-01-02"),
		PeriodMonth: b.PeriodMonth,
		PeriodYear:  b.PeriodYear,
		CreatedBy:   b.CreatedBy,
		Notes:       b.Notes,
	}
}
