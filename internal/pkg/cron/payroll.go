package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
)

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	payrollService payroll.PayrollService
	now            func() time.Time
}

// NewPayrollJobs creates payroll cron jobs
func NewPayrollJobs(payrollService payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{
		payrollService: payrollService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RegisterJobs registers the monthly batch on spec
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	return scheduler.AddJob("calculate_previous_month_payroll", spec, j.CalculatePreviousMonth)
}

// CalculatePreviousMonth runs the batch for the calendar month before now.
// Records already approved or paid come back as per-staff failures and are
// left untouched.
func (j *PayrollJobs) CalculatePreviousMonth(ctx context.Context) error {
	period := payroll.PeriodOf(j.now()).Previous()

	summary, err := j.payrollService.CalculateAllStaffPayroll(ctx, payroll.CalculateAllPayrollRequest{
		PeriodMonth: period.Month,
		PeriodYear:  period.Year,
	})
	if err != nil {
		return fmt.Errorf("calculate payroll %04d-%02d: %w", period.Year, period.Month, err)
	}

	slog.Info("Scheduled payroll calculated",
		"period_month", period.Month,
		"period_year", period.Year,
		"processed", summary.StaffProcessed,
		"failed", len(summary.Failures),
	)
	return nil
}
