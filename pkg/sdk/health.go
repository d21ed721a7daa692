package railsearch

import (
	"context"
	"fmt"

	healthuc "github.com/openrailwaymap/railsearch/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component: "ok" or "error"
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	sp := c.obs.begin("health")
	report := c.healthSvc.Check(ctx)

	var err error
	if report.Status != healthuc.Healthy {
		err = fmt.Errorf("health: %s", report.Status)
	}
	sp.finish(err)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
