package light

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dlight-protocol/dlight-go/pkg/connection"
	"github.com/dlight-protocol/dlight-go/pkg/log"
)

// DefaultPollInterval is the refresh period of an available light.
const DefaultPollInterval = 30 * time.Second

// errNotSuccess stands in for a reply with a non-SUCCESS status.
var errNotSuccess = errors.New("device reported non-success status")

// ChangeFunc receives state transitions of a polled light.
type ChangeFunc func(l *Light, oldState, newState State)

// PollerConfig configures a Poller.
type PollerConfig struct {
	// Interval between polls of an available light.
	Interval time.Duration

	// Backoff paces polls of an unavailable light.
	Backoff connection.BackoffConfig

	// OnChange is called from the polling goroutine when a light's state changes.
	OnChange ChangeFunc

	// Logger is the operational logger.
	Logger *slog.Logger

	// ProtocolLogger receives light state-change events.
	ProtocolLogger log.Logger
}

// Poller refreshes lights periodically.
type Poller struct {
	config   PollerConfig
	lights   []*Light
	trackers map[*Light]*connection.Tracker
}

// NewPoller creates a poller for lights.
func NewPoller(config PollerConfig, lights ...*Light) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.ProtocolLogger = log.OrNoop(config.ProtocolLogger)

	p := &Poller{
		config:   config,
		lights:   lights,
		trackers: make(map[*Light]*connection.Tracker, len(lights)),
	}
	for _, l := range lights {
		tr := connection.NewTracker(connection.NewBackoffWithConfig(config.Backoff))
		tr.OnChange(p.availabilityLogger(l))
		p.trackers[l] = tr
	}
	return p
}

// Availability returns the tracked availability of l.
func (p *Poller) Availability(l *Light) connection.State {
	if tr, ok := p.trackers[l]; ok {
		return tr.State()
	}
	return connection.StateUnknown
}

// Run polls every light until ctx is done. Each light is polled right away,
// then every Interval while available and on a backoff while not.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, l := range p.lights {
		l := l
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.loop(ctx, l)
		}()
	}
	wg.Wait()
}

func (p *Poller) loop(ctx context.Context, l *Light) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		timer.Reset(p.Poll(ctx, l))
	}
}

// Poll refreshes l once and returns the delay before its next poll.
func (p *Poller) Poll(ctx context.Context, l *Light) time.Duration {
	before := l.State()
	err := l.Update(ctx)
	after := l.State()

	if !before.Equal(after) {
		p.config.ProtocolLogger.Log(log.Event{
			Timestamp: time.Now(),
			Layer:     log.LayerClient,
			Category:  log.CategoryState,
			DeviceID:  l.UniqueID(),
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityLight,
				OldState: before.String(),
				NewState: after.String(),
			},
		})
		if p.config.OnChange != nil {
			p.config.OnChange(l, before, after)
		}
	}

	tr := p.trackers[l]
	if tr == nil {
		return p.config.Interval
	}
	if after.Available {
		tr.Success()
		return p.config.Interval
	}
	if err == nil {
		err = errNotSuccess
	}
	return tr.Failure(err)
}

func (p *Poller) availabilityLogger(l *Light) connection.ChangeFunc {
	return func(oldState, newState connection.State, err error) {
		attrs := []any{
			slog.String("device_id", l.UniqueID()),
			slog.String("from", oldState.String()),
			slog.String("to", newState.String()),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
			p.config.Logger.Warn("light unavailable", attrs...)
			return
		}
		p.config.Logger.Info("light available", attrs...)
	}
}
