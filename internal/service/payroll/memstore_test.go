package payroll

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/staff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixture staff ids sort in numeric order; ghostStaff sorts before all of them.
const (
	staff1     = "5a1f0000-0000-4000-8000-000000000001"
	staff2     = "5a1f0000-0000-4000-8000-000000000002"
	staff3     = "5a1f0000-0000-4000-8000-000000000003"
	staff4     = "5a1f0000-0000-4000-8000-000000000004"
	staff5     = "5a1f0000-0000-4000-8000-000000000005"
	ghostStaff = "0c0c0000-0000-4000-8000-000000000000"
	goneStaff  = "90e00000-0000-4000-8000-000000000000"
)

// memStore implements every repository capability the engine needs.
type memStore struct {
	mu           sync.Mutex
	staff        map[string]staff.Staff
	tiers        []payroll.PerformanceTier
	bonuses      []payroll.StaffBonus
	settings     []payroll.PayrollSetting
	appointments []payroll.CompletedAppointment
	records      map[string]payroll.PayrollRecord

	appointmentErr   map[string]error
	appointmentDelay time.Duration
	bonusErr         error
	staffErr         error
	queryErr         error // fails tier, bonus list and record queries
	upserts          int
}

func newMemStore() *memStore {
	return &memStore{
		staff:          make(map[string]staff.Staff),
		records:        make(map[string]payroll.PayrollRecord),
		appointmentErr: make(map[string]error),
	}
}

// ---- seeding helpers ----

func (m *memStore) addStaff(id, name string, rate string) staff.Staff {
	s := staff.Staff{ID: id, Name: name, IsActive: true}
	if rate != "" {
		r := decimal.RequireFromString(rate)
		s.BaseCommissionRate = &r
	}
	m.staff[id] = s
	return s
}

func (m *memStore) addTier(id string, min int, max *int, multiplier, bonus string) {
	m.tiers = append(m.tiers, payroll.PerformanceTier{
		ID:                   id,
		Name:                 "tier-" + id,
		MinAppointments:      min,
		MaxAppointments:      max,
		CommissionMultiplier: decimal.RequireFromString(multiplier),
		MonthlyBonus:         decimal.RequireFromString(bonus),
		IsActive:             true,
	})
}

func (m *memStore) addAppointments(staffID string, date time.Time, status string, price string, n int) {
	for i := 0; i < n; i++ {
		a := payroll.CompletedAppointment{
			ID:      uuid.NewString(),
			StaffID: staffID,
			Date:    date,
			Status:  status,
		}
		if price != "" {
			p := decimal.RequireFromString(price)
			a.TotalPrice = &p
		}
		m.appointments = append(m.appointments, a)
	}
}

func (m *memStore) addBonus(staffID string, bonusType payroll.BonusType, amount string, period payroll.Period) {
	m.bonuses = append(m.bonuses, payroll.StaffBonus{
		ID:          uuid.NewString(),
		StaffID:     staffID,
		Type:        bonusType,
		Amount:      decimal.RequireFromString(amount),
		Description: string(bonusType) + " bonus",
		PeriodMonth: period.Month,
		PeriodYear:  period.Year,
	})
}

func (m *memStore) setSetting(key, value string) {
	m.settings = append(m.settings, payroll.PayrollSetting{Key: key, Value: value})
}

func (m *memStore) recordFor(staffID string, period payroll.Period) (payroll.PayrollRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.StaffID == staffID && r.PeriodMonth == period.Month && r.PeriodYear == period.Year {
			return r, true
		}
	}
	return payroll.PayrollRecord{}, false
}

func (m *memStore) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ---- staff.StaffRepository ----

func (m *memStore) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staffErr != nil {
		return staff.Staff{}, m.staffErr
	}
	s, ok := m.staff[id]
	if !ok {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	return s, nil
}

func (m *memStore) GetActive(ctx context.Context) ([]staff.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staffErr != nil {
		return nil, m.staffErr
	}
	var result []staff.Staff
	for _, s := range m.staff {
		if s.IsActive {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ---- payroll.TierRepository ----

func (m *memStore) GetActiveTiers(ctx context.Context) ([]payroll.PerformanceTier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var result []payroll.PerformanceTier
	for _, t := range m.tiers {
		if t.IsActive {
			result = append(result, t)
		}
	}
	return result, nil
}

// ---- payroll.SettingsRepository ----

func (m *memStore) GetAll(ctx context.Context) ([]payroll.PayrollSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payroll.PayrollSetting(nil), m.settings...), nil
}

// ---- payroll.AppointmentRepository ----

func (m *memStore) SummarizeCompleted(ctx context.Context, staffID string, start, end time.Time) (payroll.RevenueSummary, error) {
	if m.appointmentDelay > 0 {
		select {
		case <-ctx.Done():
			return payroll.RevenueSummary{}, ctx.Err()
		case <-time.After(m.appointmentDelay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.appointmentErr[staffID]; err != nil {
		return payroll.RevenueSummary{}, err
	}

	summary := payroll.RevenueSummary{GrossRevenue: decimal.Zero}
	for _, a := range m.appointments {
		if a.StaffID != staffID {
			continue
		}
		if a.Status != "confirmed" && a.Status != "completed" {
			continue
		}
		if a.Date.Before(start) || !a.Date.Before(end.AddDate(0, 0, 1)) {
			continue
		}
		summary.AppointmentCount++
		if a.TotalPrice != nil {
			summary.GrossRevenue = summary.GrossRevenue.Add(*a.TotalPrice)
		}
	}
	return summary, nil
}

// ---- payroll.BonusRepository ----

func (m *memStore) SumForPeriod(ctx context.Context, staffID string, month, year int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bonusErr != nil {
		return decimal.Zero, m.bonusErr
	}
	total := decimal.Zero
	for _, b := range m.bonuses {
		if b.StaffID == staffID && b.PeriodMonth == month && b.PeriodYear == year {
			total = total.Add(b.Amount)
		}
	}
	return total, nil
}

func (m *memStore) ListForPeriod(ctx context.Context, staffID string, month, year int) ([]payroll.StaffBonus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var result []payroll.StaffBonus
	for _, b := range m.bonuses {
		if b.StaffID == staffID && b.PeriodMonth == month && b.PeriodYear == year {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *memStore) Create(ctx context.Context, bonus payroll.StaffBonus) (payroll.StaffBonus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.StaffID == bonus.StaffID && r.PeriodMonth == bonus.PeriodMonth && r.PeriodYear == bonus.PeriodYear && !r.Status.IsMutable() {
			return payroll.StaffBonus{}, payroll.ErrImmutableRecord
		}
	}
	bonus.ID = uuid.NewString()
	bonus.CreatedAt = time.Now().UTC()
	m.bonuses = append(m.bonuses, bonus)
	return bonus, nil
}

// ---- payroll.RecordRepository ----

func (m *memStore) Upsert(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++

	now := time.Now().UTC()
	for id, existing := range m.records {
		if existing.StaffID != record.StaffID || existing.PeriodMonth != record.PeriodMonth || existing.PeriodYear != record.PeriodYear {
			continue
		}
		if !existing.Status.IsMutable() {
			return payroll.PayrollRecord{}, payroll.ErrImmutableRecord
		}
		record.ID = id
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = now
		m.records[id] = record
		return record, nil
	}

	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	m.records[record.ID] = record
	return record, nil
}

func (m *memStore) GetByStaffPeriod(ctx context.Context, staffID string, month, year int) (payroll.PayrollRecord, error) {
	r, ok := m.recordFor(staffID, payroll.Period{Month: month, Year: year})
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r, nil
}

func (m *memStore) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, 0, m.queryErr
	}

	var matched []payroll.PayrollRecord
	for _, r := range m.records {
		if filter.PeriodMonth != nil && r.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && r.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.Status != nil && string(r.Status) != *filter.Status {
			continue
		}
		if filter.StaffID != nil && r.StaffID != *filter.StaffID {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StaffID < matched[j].StaffID })

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *memStore) Approve(ctx context.Context, id string, approverID string, at time.Time) (payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if !r.Status.IsMutable() {
		return payroll.PayrollRecord{}, payroll.ErrAlreadyApproved
	}
	r.Status = payroll.PayrollStatusApproved
	r.ApprovedBy = &approverID
	r.ApprovedAt = &at
	m.records[id] = r
	return r, nil
}

func (m *memStore) MarkPaid(ctx context.Context, id string, at time.Time) (payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	switch r.Status {
	case payroll.PayrollStatusApproved:
	case payroll.PayrollStatusPaid:
		return payroll.PayrollRecord{}, payroll.ErrAlreadyPaid
	default:
		return payroll.PayrollRecord{}, payroll.ErrNotApproved
	}
	r.Status = payroll.PayrollStatusPaid
	r.PaidAt = &at
	m.records[id] = r
	return r, nil
}

func (m *memStore) Summarize(ctx context.Context, month, year int) (payroll.PeriodSummary, error) {
	m.mu.Lock()
	var records []payroll.PayrollRecord
	for _, r := range m.records {
		if r.PeriodMonth == month && r.PeriodYear == year {
			records = append(records, r)
		}
	}
	m.mu.Unlock()

	summary := Summarize(payroll.Period{Month: month, Year: year}, records, nil)
	summary.Records = nil
	return summary, nil
}

// getRecord is the RecordRepository GetByID; the name clashes with the staff
// repository method so records are exposed through recordView.
func (m *memStore) getRecord(id string) (payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return payroll.PayrollRecord{}, m.queryErr
	}
	r, ok := m.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r, nil
}

// recordView adapts memStore to payroll.RecordRepository.
type recordView struct{ *memStore }

func (v recordView) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	return v.getRecord(id)
}

// summarizeHook runs afterRead once, between the summary read and its return.
type summarizeHook struct {
	recordView
	afterRead func()
}

func (h *summarizeHook) Summarize(ctx context.Context, month, year int) (payroll.PeriodSummary, error) {
	summary, err := h.recordView.Summarize(ctx, month, year)
	if h.afterRead != nil {
		fn := h.afterRead
		h.afterRead = nil
		fn()
	}
	return summary, err
}

// ---- wiring ----

type engine struct {
	store      *memStore
	calculator *Calculator
	lifecycle  *LifecycleManager
	batch      *BatchOrchestrator
}

func newEngine(store *memStore, timeout time.Duration, concurrency int) engine {
	calculator := NewCalculator(
		store,
		store,
		store,
		NewRevenueAggregator(store, timeout),
		NewBonusAggregator(store, timeout),
	)
	lifecycle := NewLifecycleManager(recordView{store})
	return engine{
		store:      store,
		calculator: calculator,
		lifecycle:  lifecycle,
		batch:      NewBatchOrchestrator(store, calculator, lifecycle, concurrency),
	}
}

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(year, month, d int) time.Time {
	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

var errStoreDown = fmt.Errorf("connection refused")
