package cron

import (
	"context"

	"github.com/paygrid-hq/paygrid-backend-go/internal/config"
)

type retrySweeper interface {
	RunRetrySweep(ctx context.Context) error
}

type healthSweeper interface {
	RunHealthSweep(ctx context.Context) error
}

// IntegrationJobs wires the integration background sweeps into the scheduler.
type IntegrationJobs struct {
	orchestrator retrySweeper
	health       healthSweeper
	cfg          config.IntegrationConfig
}

func NewIntegrationJobs(orchestrator retrySweeper, health healthSweeper, cfg config.IntegrationConfig) *IntegrationJobs {
	return &IntegrationJobs{
		orchestrator: orchestrator,
		health:       health,
		cfg:          cfg,
	}
}

// RegisterJobs registers the retry and health sweeps with the scheduler.
func (j *IntegrationJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("retry_failed_attempts", j.cfg.RetrySweepInterval, j.orchestrator.RunRetrySweep)
	scheduler.AddJob("integration_health_check", j.cfg.HealthSweepInterval, j.health.RunHealthSweep)
}
