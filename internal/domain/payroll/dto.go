package payroll

import (
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type CalculatePayrollRequest struct {
	StaffID     string `json:"staff_id"`
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
}

func (r *CalculatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "must be a valid UUID"})
	}
	errs = append(errs, validatePeriod(r.PeriodMonth, r.PeriodYear)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CalculatePayrollRequest) Period() Period {
	return Period{Month: r.PeriodMonth, Year: r.PeriodYear}
}

type CalculateAllPayrollRequest struct {
	PeriodMonth int      `json:"period_month"`
	PeriodYear  int      `json:"period_year"`
	StaffIDs    []string `json:"staff_ids,omitempty"` // Empty = all active staff
}

func (r *CalculateAllPayrollRequest) Validate() error {
	errs := validatePeriod(r.PeriodMonth, r.PeriodYear)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CalculateAllPayrollRequest) Period() Period {
	return Period{Month: r.PeriodMonth, Year: r.PeriodYear}
}

func validatePeriod(month, year int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if year < 1000 || year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be a four-digit year"})
	}
	return errs
}

// ========== PAYROLL RECORD DTOs ==========

type PayrollRecordResponse struct {
	ID               string          `json:"id"`
	StaffID          string          `json:"staff_id"`
	StaffName        string          `json:"staff_name,omitempty"`
	PeriodMonth      int             `json:"period_month"`
	PeriodYear       int             `json:"period_year"`
	AppointmentCount int             `json:"appointment_count"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	TierID           *string         `json:"tier_id,omitempty"`
	TierName         *string         `json:"tier_name,omitempty"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	TierMultiplier   decimal.Decimal `json:"tier_multiplier"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	TierMonthlyBonus decimal.Decimal `json:"tier_monthly_bonus"`
	BonusTotal       decimal.Decimal `json:"bonus_total"`
	Deductions       decimal.Decimal `json:"deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`
	Status           string          `json:"status"`
	ApprovedBy       *string         `json:"approved_by,omitempty"`
	ApprovedAt       *string         `json:"approved_at,omitempty"`
	PaidAt           *string         `json:"paid_at,omitempty"`
}

type PayrollFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	StaffID     *string `json:"staff_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

// ========== SUMMARY DTOs ==========

type StaffFailureResponse struct {
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name,omitempty"`
	Error     string `json:"error"`
}

type PeriodSummaryResponse struct {
	PeriodMonth     int                     `json:"period_month"`
	PeriodYear      int                     `json:"period_year"`
	TotalGross      decimal.Decimal         `json:"total_gross_revenue"`
	TotalCommission decimal.Decimal         `json:"total_commission"`
	TotalTierBonus  decimal.Decimal         `json:"total_tier_bonus"`
	TotalBonuses    decimal.Decimal         `json:"total_bonuses"`
	TotalDeductions decimal.Decimal         `json:"total_deductions"`
	TotalNetPay     decimal.Decimal         `json:"total_net_pay"`
	StaffProcessed  int                     `json:"staff_processed"`
	CalculatedCount int                     `json:"calculated_count"`
	ApprovedCount   int                     `json:"approved_count"`
	PaidCount       int                     `json:"paid_count"`
	Records         []PayrollRecordResponse `json:"records,omitempty"`
	Failures        []StaffFailureResponse  `json:"failures,omitempty"`
}

// ========== TIER DTOs ==========

type TierResponse struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	MinAppointments      int             `json:"min_appointments"`
	MaxAppointments      *int            `json:"max_appointments,omitempty"`
	CommissionMultiplier decimal.Decimal `json:"commission_multiplier"`
	MonthlyBonus         decimal.Decimal `json:"monthly_bonus"`
}

// ========== BONUS DTOs ==========

type CreateBonusRequest struct {
	StaffID     string          `json:"staff_id"`
	Type        string          `json:"bonus_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	AwardedDate *string         `json:"awarded_date,omitempty"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
	CreatedBy   string          `json:"-"`
	Notes       *string         `json:"notes,omitempty"`
}

func (r *CreateBonusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "must be a valid UUID"})
	}
	if !BonusType(r.Type).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "bonus_type", Message: "must be 'individual', 'team' or 'custom'"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than zero"})
	}
	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{Field: "description", Message: "is required"})
	}
	if r.AwardedDate != nil {
		if _, ok := validator.IsValidDate(*r.AwardedDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "awarded_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	errs = append(errs, validatePeriod(r.PeriodMonth, r.PeriodYear)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BonusResponse struct {
	ID          string          `json:"id"`
	StaffID     string          `json:"staff_id"`
	Type        string          `json:"bonus_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	AwardedDate string          `json:"awarded_date"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
	CreatedBy   string          `json:"created_by"`
	Notes       *string         `json:"notes,omitempty"`
}
