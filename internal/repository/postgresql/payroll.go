package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRecordRepository struct {
	db *database.DB
}

func NewPayrollRecordRepository(db *database.DB) payroll.RecordRepository {
	return &payrollRecordRepository{db: db}
}

const recordColumns = `id, staff_id, period_month, period_year, appointment_count, gross_revenue,
	tier_id, commission_rate, tier_multiplier, commission_amount, tier_monthly_bonus,
	bonus_total, deductions, net_pay, status, approved_by, approved_at, paid_at,
	created_at, updated_at`

// joinedRecordColumns is recordColumns qualified with pr plus the staff and tier names.
const joinedRecordColumns = `pr.id, pr.staff_id, pr.period_month, pr.period_year, pr.appointment_count, pr.gross_revenue,
	pr.tier_id, pr.commission_rate, pr.tier_multiplier, pr.commission_amount, pr.tier_monthly_bonus,
	pr.bonus_total, pr.deductions, pr.net_pay, pr.status, pr.approved_by, pr.approved_at, pr.paid_at,
	pr.created_at, pr.updated_at, s.name, pt.name`

const joinedRecordFrom = `
	FROM payroll_records pr
	LEFT JOIN staff s ON s.id = pr.staff_id
	LEFT JOIN performance_tiers pt ON pt.id = pr.tier_id`

type recordScanner interface {
	Scan(dest ...any) error
}

func recordFields(rec *payroll.PayrollRecord) []any {
	return []any{
		&rec.ID, &rec.StaffID, &rec.PeriodMonth, &rec.PeriodYear, &rec.AppointmentCount, &rec.GrossRevenue,
		&rec.TierID, &rec.CommissionRate, &rec.TierMultiplier, &rec.CommissionAmount, &rec.TierMonthlyBonus,
		&rec.BonusTotal, &rec.Deductions, &rec.NetPay, &rec.Status, &rec.ApprovedBy, &rec.ApprovedAt, &rec.PaidAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
}

func scanRecord(row recordScanner) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	err := row.Scan(recordFields(&rec)...)
	return rec, err
}

func scanJoinedRecord(row recordScanner) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	err := row.Scan(append(recordFields(&rec), &rec.StaffName, &rec.TierName)...)
	return rec, err
}

// Upsert is a single conditional statement: the DO UPDATE only fires while the
// stored record is still draft or calculated, so no row comes back when it is
// approved or paid.
func (r *payrollRecordRepository) Upsert(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			staff_id, period_month, period_year, appointment_count, gross_revenue,
			tier_id, commission_rate, tier_multiplier, commission_amount, tier_monthly_bonus,
			bonus_total, deductions, net_pay, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (staff_id, period_month, period_year) DO UPDATE SET
			appointment_count = EXCLUDED.appointment_count,
			gross_revenue = EXCLUDED.gross_revenue,
			tier_id = EXCLUDED.tier_id,
			commission_rate = EXCLUDED.commission_rate,
			tier_multiplier = EXCLUDED.tier_multiplier,
			commission_amount = EXCLUDED.commission_amount,
			tier_monthly_bonus = EXCLUDED.tier_monthly_bonus,
			bonus_total = EXCLUDED.bonus_total,
			deductions = EXCLUDED.deductions,
			net_pay = EXCLUDED.net_pay,
			status = EXCLUDED.status,
			approved_by = NULL,
			approved_at = NULL,
			paid_at = NULL,
			updated_at = NOW()
		WHERE payroll_records.status IN ('draft', 'calculated')
		RETURNING ` + recordColumns

	saved, err := scanRecord(q.QueryRow(ctx, query,
		record.StaffID, record.PeriodMonth, record.PeriodYear, record.AppointmentCount, record.GrossRevenue,
		record.TierID, record.CommissionRate, record.TierMultiplier, record.CommissionAmount, record.TierMonthlyBonus,
		record.BonusTotal, record.Deductions, record.NetPay, string(record.Status),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrImmutableRecord
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to upsert payroll record: %w", err)
	}

	return saved, nil
}

func (r *payrollRecordRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + joinedRecordColumns + joinedRecordFrom + ` WHERE pr.id = $1`

	rec, err := scanJoinedRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRecordRepository) GetByStaffPeriod(ctx context.Context, staffID string, month, year int) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + joinedRecordColumns + joinedRecordFrom + `
		WHERE pr.staff_id = $1 AND pr.period_month = $2 AND pr.period_year = $3`

	rec, err := scanJoinedRecord(q.QueryRow(ctx, query, staffID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record by period: %w", err)
	}

	return rec, nil
}

func (r *payrollRecordRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereParts := []string{"1 = 1"}
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		whereParts = append(whereParts, fmt.Sprintf("pr.period_month = $%d", argIdx))
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		whereParts = append(whereParts, fmt.Sprintf("pr.period_year = $%d", argIdx))
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		whereParts = append(whereParts, fmt.Sprintf("pr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StaffID != nil {
		whereParts = append(whereParts, fmt.Sprintf("pr.staff_id = $%d", argIdx))
		args = append(args, *filter.StaffID)
		argIdx++
	}

	whereClause := strings.Join(whereParts, " AND ")

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM payroll_records pr WHERE ` + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s %s WHERE %s
		ORDER BY pr.period_year DESC, pr.period_month DESC, s.name, pr.staff_id
		LIMIT $%d OFFSET $%d`, joinedRecordColumns, joinedRecordFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanJoinedRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, totalCount, nil
}

func (r *payrollRecordRepository) Approve(ctx context.Context, id string, approverID string, at time.Time) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET status = 'approved', approved_by = $2, approved_at = $3, updated_at = NOW()
		WHERE id = $1 AND status IN ('draft', 'calculated')
		RETURNING ` + recordColumns

	rec, err := scanRecord(q.QueryRow(ctx, query, id, approverID, at))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to approve payroll record: %w", err)
	}

	// an existing record was skipped only because it is approved or paid
	if _, err := r.currentStatus(ctx, id); err != nil {
		return payroll.PayrollRecord{}, err
	}
	return payroll.PayrollRecord{}, payroll.ErrAlreadyApproved
}

func (r *payrollRecordRepository) MarkPaid(ctx context.Context, id string, at time.Time) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET status = 'paid', paid_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'approved'
		RETURNING ` + recordColumns

	rec, err := scanRecord(q.QueryRow(ctx, query, id, at))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to mark payroll record paid: %w", err)
	}

	status, err := r.currentStatus(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if status == payroll.PayrollStatusPaid {
		return payroll.PayrollRecord{}, payroll.ErrAlreadyPaid
	}
	return payroll.PayrollRecord{}, payroll.ErrNotApproved
}

func (r *payrollRecordRepository) currentStatus(ctx context.Context, id string) (payroll.PayrollStatus, error) {
	q := GetQuerier(ctx, r.db)

	var status payroll.PayrollStatus
	err := q.QueryRow(ctx, `SELECT status FROM payroll_records WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", payroll.ErrPayrollRecordNotFound
		}
		return "", fmt.Errorf("failed to get payroll record status: %w", err)
	}
	return status, nil
}

func (r *payrollRecordRepository) Summarize(ctx context.Context, month, year int) (payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(gross_revenue), 0),
			COALESCE(SUM(commission_amount), 0),
			COALESCE(SUM(tier_monthly_bonus), 0),
			COALESCE(SUM(bonus_total), 0),
			COALESCE(SUM(deductions), 0),
			COALESCE(SUM(net_pay), 0),
			COUNT(*) FILTER (WHERE status IN ('draft', 'calculated')),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'paid')
		FROM payroll_records
		WHERE period_month = $1 AND period_year = $2
	`

	s := payroll.PeriodSummary{Period: payroll.Period{Month: month, Year: year}}
	err := q.QueryRow(ctx, query, month, year).Scan(
		&s.StaffProcessed,
		&s.TotalGross, &s.TotalCommission, &s.TotalTierBonus,
		&s.TotalBonuses, &s.TotalDeductions, &s.TotalNetPay,
		&s.CalculatedCount, &s.ApprovedCount, &s.PaidCount,
	)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to summarize payroll records: %w", err)
	}

	return s, nil
}
