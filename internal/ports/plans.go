package ports

import "github.com/Dayzcorp/seep-global/internal/domain"

// PlanResolver maps a merchant's plan name to its quota
type PlanResolver interface {
	Resolve(planName string) domain.Plan
}

// Metrics records service-level counters and timings
type Metrics interface {
	ChatCompleted(outcome string)
	FastPathHit(kind string)
	SyncFinished(storeType, status string, seconds float64)
}
