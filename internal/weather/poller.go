package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller fetches weather on a fixed schedule and hands each successful
// snapshot to the sink. Failures keep the previous snapshot (the sink is
// simply not called), per the stale-retention rule.
type Poller struct {
	provider Provider
	sink     func(Snapshot)
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger
	cron     *cron.Cron
}

// NewPoller creates a poller that pushes snapshots into sink.
func NewPoller(provider Provider, sink func(Snapshot), interval time.Duration, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		provider: provider,
		sink:     sink,
		interval: interval,
		timeout:  30 * time.Second,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start polls once immediately, then on the configured interval.
func (p *Poller) Start() error {
	spec := fmt.Sprintf("@every %s", p.interval)
	if _, err := p.cron.AddFunc(spec, p.poll); err != nil {
		return fmt.Errorf("schedule weather poll: %w", err)
	}
	go p.poll()
	p.cron.Start()
	p.logger.Printf("Weather poller started (%s)", spec)
	return nil
}

// Stop halts the schedule; an in-flight poll is allowed to finish.
func (p *Poller) Stop() {
	p.cron.Stop()
	p.logger.Printf("Weather poller stopped")
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	snapshot, err := p.provider.Current(ctx)
	if err != nil {
		p.logger.Printf("Weather poll failed, keeping last snapshot: %v", err)
		return
	}
	p.sink(snapshot)
}
