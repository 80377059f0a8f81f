package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/database"
)

type appointmentRepository struct {
	db *database.DB
}

// NewAppointmentRepository reads the booking system's appointments table.
// Payroll never writes to it.
func NewAppointmentRepository(db *database.DB) payroll.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) SummarizeCompleted(ctx context.Context, staffID string, start, end time.Time) (payroll.RevenueSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COALESCE(SUM(COALESCE(total_price, 0)), 0)
		FROM appointments
		WHERE staff_id = $1
		  AND status IN ('confirmed', 'completed')
		  AND appointment_date >= $2
		  AND appointment_date < $3
	`

	var s payroll.RevenueSummary
	// end is a calendar day, so the upper bound is the following midnight
	err := q.QueryRow(ctx, query, staffID, start, end.AddDate(0, 0, 1)).Scan(&s.AppointmentCount, &s.GrossRevenue)
	if err != nil {
		return payroll.RevenueSummary{}, fmt.Errorf("failed to summarize appointments: %w", err)
	}

	return s, nil
}
