package staff

import (
	"time"

	"github.com/shopspring/decimal"
)

// Staff - Salon staff member whose completed appointments earn commission
type Staff struct {
	ID       string
	Name     string
	IsActive bool
	// BaseCommissionRate is a fraction of revenue (0.10 = 10%).
	// Nil falls back to the company default commission rate setting.
	BaseCommissionRate *decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
