// Package reconcile runs the periodic registry<->store convergence job.
package reconcile

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/webforge-labs/webforge-backend/internal/routes/registry"
)

type Scheduler struct {
	reg  *registry.Registry
	cron *cron.Cron
}

func NewScheduler(reg *registry.Registry) *Scheduler {
	return &Scheduler{reg: reg}
}

// Start schedules the reconcile job. The first run happens after one
// interval; initial hydration is the dispatcher's EnsureInitialized.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = "@every 5m"
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx := context.Background()
		if err := s.reg.EnsureInitialized(ctx); err != nil {
			log.Printf("reconcile: initialize registry: %v", err)
			return
		}
		if err := s.reg.Reconcile(ctx); err != nil {
			log.Printf("reconcile: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	log.Printf("reconcile: scheduler started (%s)", spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
