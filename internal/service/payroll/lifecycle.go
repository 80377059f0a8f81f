package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/validator"
)

// LifecycleManager owns persistence of payroll records and their one-way
// transitions: calculated -> approved -> paid.
type LifecycleManager struct {
	recordRepo payroll.RecordRepository
	now        func() time.Time
}

func NewLifecycleManager(recordRepo payroll.RecordRepository) *LifecycleManager {
	return &LifecycleManager{
		recordRepo: recordRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Upsert stores a freshly calculated record, overwriting a draft/calculated
// record for the same staff and period. Approved and paid records are
// rejected with ErrImmutableRecord by the repository's conditional write.
func (m *LifecycleManager) Upsert(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	if err := record.Period().Validate(); err != nil {
		return payroll.PayrollRecord{}, err
	}
	record.Status = payroll.PayrollStatusCalculated
	record.ApprovedBy = nil
	record.ApprovedAt = nil
	record.PaidAt = nil

	saved, err := m.recordRepo.Upsert(ctx, record)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	// keep joined fields from the calculation
	if saved.StaffName == nil {
		saved.StaffName = record.StaffName
	}
	if saved.TierName == nil {
		saved.TierName = record.TierName
	}
	return saved, nil
}

func (m *LifecycleManager) Approve(ctx context.Context, payrollID string, approverID string) (payroll.PayrollRecord, error) {
	if validator.IsEmpty(approverID) {
		return payroll.PayrollRecord{}, validator.ValidationErrors{
			{Field: "approver_id", Message: "is required"},
		}
	}

	record, err := m.recordRepo.Approve(ctx, payrollID, approverID, m.now())
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("approve payroll %s: %w", payrollID, err)
	}

	slog.Info("Payroll approved",
		"payroll_id", record.ID,
		"staff_id", record.StaffID,
		"period_month", record.PeriodMonth,
		"period_year", record.PeriodYear,
		"approved_by", approverID,
	)
	return record, nil
}

func (m *LifecycleManager) MarkPaid(ctx context.Context, payrollID string) (payroll.PayrollRecord, error) {
	record, err := m.recordRepo.MarkPaid(ctx, payrollID, m.now())
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("mark payroll %s paid: %w", payrollID, err)
	}

	slog.Info("Payroll marked as paid",
		"payroll_id", record.ID,
		"staff_id", record.StaffID,
		"net_pay", record.NetPay.String(),
	)
	return record, nil
}
