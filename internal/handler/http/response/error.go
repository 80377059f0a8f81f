package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrInvalidStaff):
		NotFound(w, "Staff not found or inactive")
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrAlreadyApproved):
		Conflict(w, "Payroll record already approved")
	case errors.Is(err, payroll.ErrNotApproved):
		Conflict(w, "Payroll record must be approved before payment")
	case errors.Is(err, payroll.ErrAlreadyPaid):
		Conflict(w, "Payroll record already paid")
	case errors.Is(err, payroll.ErrImmutableRecord):
		Conflict(w, "Payroll record is approved or paid and cannot be changed")
	case errors.Is(err, payroll.ErrDataUnavailable):
		slog.Error("Payroll data unavailable", "error", err)
		ServiceUnavailable(w, "Payroll data is temporarily unavailable")
	case errors.Is(err, payroll.ErrInvalidSetting):
		slog.Error("Invalid payroll setting", "error", err)
		InternalServerError(w, "Payroll settings are misconfigured")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
