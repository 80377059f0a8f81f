package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period - Calendar month a payroll is computed over
type Period struct {
	Month int
	Year  int
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	if p.Year < 1000 || p.Year > 9999 {
		return ErrInvalidPeriod
	}
	return nil
}

// Start returns the first calendar day of the period (UTC).
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last calendar day of the period (UTC).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Previous returns the calendar month before p.
func (p Period) Previous() Period {
	prev := p.Start().AddDate(0, -1, 0)
	return Period{Month: int(prev.Month()), Year: prev.Year()}
}

func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// PerformanceTier - Appointment-count bracket granting a commission multiplier and flat bonus
type PerformanceTier struct {
	ID                   string
	Name                 string
	MinAppointments      int
	MaxAppointments      *int // nil = unbounded
	CommissionMultiplier decimal.Decimal
	MonthlyBonus         decimal.Decimal
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Contains reports whether count falls inside the tier's inclusive range.
func (t PerformanceTier) Contains(count int) bool {
	if count < t.MinAppointments {
		return false
	}
	return t.MaxAppointments == nil || count <= *t.MaxAppointments
}

// TierResult - Outcome of tier resolution; TierID is nil for the default tier
type TierResult struct {
	TierID       *string
	TierName     string
	Multiplier   decimal.Decimal
	MonthlyBonus decimal.Decimal
}

// BonusType enum
type BonusType string

const (
	BonusTypeIndividual BonusType = "individual"
	BonusTypeTeam       BonusType = "team"
	BonusTypeCustom     BonusType = "custom"
)

func (t BonusType) IsValid() bool {
	switch t {
	case BonusTypeIndividual, BonusTypeTeam, BonusTypeCustom:
		return true
	}
	return false
}

// StaffBonus - Discretionary bonus awarded to a staff member for a period
type StaffBonus struct {
	ID          string
	StaffID     string
	Type        BonusType
	Amount      decimal.Decimal
	Description string
	AwardedDate time.Time
	PeriodMonth int
	PeriodYear  int
	CreatedBy   string
	Notes       *string
	CreatedAt   time.Time
}

// Setting keys read from the payroll_settings key/value store
const (
	SettingMonthlyDeduction      = "monthly_deduction"
	SettingDefaultCommissionRate = "default_commission_rate"
)

// PayrollSetting - One key/value row of the payroll settings store
type PayrollSetting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
	UpdatedBy *string
}

// Settings - Snapshot of the settings store taken once per calculation run
type Settings struct {
	Deductions            decimal.Decimal
	DefaultCommissionRate decimal.Decimal
}

// CompletedAppointment - Finalized billable visit, consumed read-only
type CompletedAppointment struct {
	ID         string
	StaffID    string
	Date       time.Time
	Status     string
	TotalPrice *decimal.Decimal
}

// RevenueSummary - Aggregate of qualifying appointments for one staff member
type RevenueSummary struct {
	AppointmentCount int
	GrossRevenue     decimal.Decimal
}

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "draft"
	PayrollStatusCalculated PayrollStatus = "calculated"
	PayrollStatusApproved   PayrollStatus = "approved"
	PayrollStatusPaid       PayrollStatus = "paid"
)

// IsMutable reports whether a record in this status may still be recalculated.
func (s PayrollStatus) IsMutable() bool {
	return s == PayrollStatusDraft || s == PayrollStatusCalculated
}

// PayrollRecord - Calculated payroll for one staff member and period
type PayrollRecord struct {
	ID               string
	StaffID          string
	PeriodMonth      int
	PeriodYear       int
	AppointmentCount int
	GrossRevenue     decimal.Decimal
	TierID           *string
	CommissionRate   decimal.Decimal
	TierMultiplier   decimal.Decimal
	CommissionAmount decimal.Decimal
	TierMonthlyBonus decimal.Decimal
	BonusTotal       decimal.Decimal
	Deductions       decimal.Decimal
	NetPay           decimal.Decimal
	Status           PayrollStatus
	ApprovedBy       *string
	ApprovedAt       *time.Time
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	StaffName *string
	TierName  *string
}

func (r PayrollRecord) Period() Period {
	return Period{Month: r.PeriodMonth, Year: r.PeriodYear}
}

// StaffFailure - One staff member whose calculation failed during a batch
type StaffFailure struct {
	StaffID   string
	StaffName string
	Err       error
}

// PeriodSummary - Totals over a period's payroll records
type PeriodSummary struct {
	Period          Period
	TotalGross      decimal.Decimal
	TotalCommission decimal.Decimal
	TotalTierBonus  decimal.Decimal
	TotalBonuses    decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNetPay     decimal.Decimal
	StaffProcessed  int
	CalculatedCount int
	ApprovedCount   int
	PaidCount       int
	Records         []PayrollRecord
	Failures        []StaffFailure
}
