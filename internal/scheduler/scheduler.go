package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/rylanturner02/weather-microservice/internal/forecast"
)

// Scheduler periodically probes the NWS points endpoint so an upstream
// outage shows up in the logs before a user request trips over it. The probe
// feeds no lookup state; cache-miss requests still fetch on their own.
type Scheduler struct {
	scheduler *gocron.Scheduler
	client    *forecast.Client
	interval  time.Duration
}

// New creates a new Scheduler. An interval of zero disables the probe.
func New(client *forecast.Client, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		interval:  interval,
	}
}

// Start schedules the periodic probe and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: upstream probe disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.client.CheckGridPoint(ctx); err != nil {
			log.Printf("scheduler: grid point probe failed: %v", err)
			return
		}
		log.Println("scheduler: grid point probe ok")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future probes.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
