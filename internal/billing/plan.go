package billing

import "time"

// Plan is a subscription tier. Plans are never deleted once referenced by a
// subscription, only deactivated.
type Plan struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Price           Money     `json:"price"`
	Quality         Quality   `json:"quality"`
	MaxScreens      int       `json:"max_screens"`
	AllowsDownloads bool      `json:"allows_downloads"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// billingCycle is the length of one billing period. The catalog only has
// monthly plans, modeled as 30 days like the original schema.
const billingCycle = 30 * 24 * time.Hour

// PeriodEndFrom returns the end of the billing period starting at start.
func (p Plan) PeriodEndFrom(start time.Time) time.Time {
	return start.Add(billingCycle)
}
