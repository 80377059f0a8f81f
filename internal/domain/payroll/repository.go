package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// The engine depends on the store through these narrow capabilities so each
// component can be exercised against an in-memory implementation.

type TierRepository interface {
	GetActiveTiers(ctx context.Context) ([]PerformanceTier, error)
}

type BonusRepository interface {
	SumForPeriod(ctx context.Context, staffID string, month, year int) (decimal.Decimal, error)
	ListForPeriod(ctx context.Context, staffID string, month, year int) ([]StaffBonus, error)
	// Create inserts the bonus unless the staff member's record for that
	// period is already approved or paid (ErrImmutableRecord).
	Create(ctx context.Context, bonus StaffBonus) (StaffBonus, error)
}

type SettingsRepository interface {
	GetAll(ctx context.Context) ([]PayrollSetting, error)
}

type AppointmentRepository interface {
	// SummarizeCompleted counts confirmed/completed appointments dated within
	// [start, end] and sums their prices; a missing price counts as zero.
	SummarizeCompleted(ctx context.Context, staffID string, start, end time.Time) (RevenueSummary, error)
}

type RecordRepository interface {
	// Upsert writes the record keyed by (staff, period) in one conditional
	// statement. It fails with ErrImmutableRecord when the stored record is
	// approved or paid, leaving it untouched.
	Upsert(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	GetByStaffPeriod(ctx context.Context, staffID string, month, year int) (PayrollRecord, error)
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	// Approve moves a draft/calculated record to approved.
	Approve(ctx context.Context, id string, approverID string, at time.Time) (PayrollRecord, error)
	// MarkPaid moves an approved record to paid.
	MarkPaid(ctx context.Context, id string, at time.Time) (PayrollRecord, error)
	Summarize(ctx context.Context, month, year int) (PeriodSummary, error)
}
