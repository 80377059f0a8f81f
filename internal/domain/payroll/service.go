package payroll

import "context"

type PayrollService interface {
	// Calculation
	CalculateStaffPayroll(ctx context.Context, req CalculatePayrollRequest) (PayrollRecordResponse, error)
	CalculateAllStaffPayroll(ctx context.Context, req CalculateAllPayrollRequest) (PeriodSummaryResponse, error)
	GetPayrollSummary(ctx context.Context, month, year int) (PeriodSummaryResponse, error)

	// Lifecycle
	ApprovePayroll(ctx context.Context, payrollID string, approverID string) error
	MarkAsPaid(ctx context.Context, payrollID string) error

	// Records
	GetPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)

	// Tiers and bonuses
	ListTiers(ctx context.Context) ([]TierResponse, error)
	AwardBonus(ctx context.Context, req CreateBonusRequest) (BonusResponse, error)
	ListBonuses(ctx context.Context, staffID string, month, year int) ([]BonusResponse, error)
}
