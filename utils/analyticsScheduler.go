package utils

import (
	"context"
	"log"

	"quizcore/services/analytics"

	"github.com/robfig/cron/v3"
)

// InitializeAnalyticsScheduler refreshes the analytics snapshot of every
// published quiz on spec, a standard five field cron expression.
func InitializeAnalyticsScheduler(agg *analytics.Aggregator, spec string) (*cron.Cron, error) {
	log.Println("[ANALYTICS-SCHEDULER] Initializing analytics scheduler...")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		RefreshAnalyticsSnapshots(context.Background(), agg)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[ANALYTICS-SCHEDULER] Analytics scheduler started - runs on %q", spec)
	return c, nil
}

// RefreshAnalyticsSnapshots recomputes all snapshots once
func RefreshAnalyticsSnapshots(ctx context.Context, agg *analytics.Aggregator) {
	log.Println("[ANALYTICS-SCHEDULER] Refreshing quiz analytics snapshots...")

	refreshed, err := agg.RefreshAll(ctx)
	if err != nil {
		log.Printf("[ANALYTICS-SCHEDULER] Error refreshing snapshots: %v", err)
		return
	}
	log.Printf("[ANALYTICS-SCHEDULER] Refreshed %d quiz snapshots", refreshed)
}
