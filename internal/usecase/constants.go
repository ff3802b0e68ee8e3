package usecase

import "time"

// DefaultTransactionTimeout caps one limit-touching transaction, including
// the time spent waiting for the FOR UPDATE lock on the customer's limit.
const DefaultTransactionTimeout = 10 * time.Second

// Dashboard cache.
const (
	DashboardStatsCacheKey = "cambio:dashboard:stats"
	DefaultStatsCacheTTL   = 30 * time.Second
)

// maxEventPage caps OperationEvents.
const maxEventPage = 200
