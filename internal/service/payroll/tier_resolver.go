package payroll

import (
	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const defaultTierName = "default"

// DefaultTier is applied when no active tier contains the appointment count.
func DefaultTier() payroll.TierResult {
	return payroll.TierResult{
		TierName:     defaultTierName,
		Multiplier:   decimal.NewFromInt(1),
		MonthlyBonus: decimal.Zero,
	}
}

// ResolveTier maps an appointment count to the active tier whose inclusive
// [min, max] range contains it. When ranges overlap the tier with the highest
// minimum wins; equal minimums fall back to the narrower range, then to the
// smaller ID, so the result never depends on input order.
func ResolveTier(count int, tiers []payroll.PerformanceTier) payroll.TierResult {
	var best *payroll.PerformanceTier
	for i := range tiers {
		t := &tiers[i]
		if !t.IsActive || !t.Contains(count) {
			continue
		}
		if best == nil || moreSpecific(t, best) {
			best = t
		}
	}

	if best == nil {
		return DefaultTier()
	}

	id := best.ID
	return payroll.TierResult{
		TierID:       &id,
		TierName:     best.Name,
		Multiplier:   best.CommissionMultiplier,
		MonthlyBonus: best.MonthlyBonus,
	}
}

func moreSpecific(a, b *payroll.PerformanceTier) bool {
	if a.MinAppointments != b.MinAppointments {
		return a.MinAppointments > b.MinAppointments
	}
	switch {
	case a.MaxAppointments != nil && b.MaxAppointments == nil:
		return true
	case a.MaxAppointments == nil && b.MaxAppointments != nil:
		return false
	case a.MaxAppointments != nil && b.MaxAppointments != nil && *a.MaxAppointments != *b.MaxAppointments:
		return *a.MaxAppointments < *b.MaxAppointments
	}
	return a.ID < b.ID
}
