package network

import (
	"context"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

// Pinger checks reachability of the remote.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober is a Monitor fed by periodic pings. It starts offline and becomes
// online after the first successful ping.
type Prober struct {
	broadcaster

	pinger   Pinger
	interval time.Duration
	logger   *logger.Logger
}

// NewProber creates a Prober pinging every interval. Each ping is bounded by
// the same interval so a hanging remote reads as offline.
func NewProber(pinger Pinger, interval time.Duration, logger *logger.Logger) *Prober {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Prober{pinger: pinger, interval: interval, logger: logger}
}

// Run probes immediately and then on every tick until ctx is cancelled.
func (p *Prober) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Probe(ctx)
		}
	}
}

// Probe performs a single ping and updates the state.
func (p *Prober) Probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	err := p.pinger.Ping(pingCtx)
	if ctx.Err() != nil {
		return
	}

	online := err == nil
	if p.set(online) {
		event := p.logger.Info().Str("func", "Prober.Probe").Bool("online", online)
		if err != nil {
			event = event.Err(err)
		}
		event.Msg("connectivity changed")
	}
}
