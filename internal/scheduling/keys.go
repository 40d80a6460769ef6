package scheduling

import (
	"fmt"
	"time"
)

// Cache keys are structured as availability:<provider>:<year>-<month>:...
// so invalidating a provider's period is one prefix delete covering both
// the month entry and every day entry inside it.

func monthKey(providerID string, year int, month time.Month) string {
	return fmt.Sprintf("availability:%s:%04d-%02d:month", providerID, year, int(month))
}

func dayKey(providerID string, year int, month time.Month, day int) string {
	return fmt.Sprintf("availability:%s:%04d-%02d:day:%02d", providerID, year, int(month), day)
}

func periodPrefix(providerID string, year int, month time.Month) string {
	return fmt.Sprintf("availability:%s:%04d-%02d:", providerID, year, int(month))
}
