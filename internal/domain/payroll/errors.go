package payroll

import "errors"

var (
	ErrInvalidStaff          = errors.New("staff not found or inactive")
	ErrInvalidPeriod         = errors.New("invalid payroll period")
	ErrDataUnavailable       = errors.New("payroll data unavailable")
	ErrAlreadyApproved       = errors.New("payroll record already approved")
	ErrNotApproved           = errors.New("payroll record is not approved")
	ErrAlreadyPaid           = errors.New("payroll record already paid")
	ErrImmutableRecord       = errors.New("payroll record is approved or paid, cannot recalculate")
	ErrPayrollRecordNotFound = errors.New("payroll record not found")
	ErrInvalidSetting        = errors.New("invalid payroll setting value")
)
