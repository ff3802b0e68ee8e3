package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats are the headline figures of the back office. TotalVolume
// sums FinalAmount over every operation, deleted ones included.
type DashboardStats struct {
	TotalCustomers   int64           `json:"total_customers"`
	TotalOperations  int64           `json:"total_operations"`
	ActiveOperations int64           `json:"active_operations"`
	TotalVolume      decimal.Decimal `json:"total_volume"`
	GeneratedAt      time.Time       `json:"generated_at"`
}
