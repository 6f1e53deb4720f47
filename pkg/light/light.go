package light

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dlight-protocol/dlight-go/pkg/convert"
	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

// Fixed identity of the product line.
const (
	Manufacturer = "Google"
	ProductName  = "dLight"
)

// Client is the subset of the device client a Light needs.
type Client interface {
	QueryDeviceInfo(ctx context.Context, host, deviceID string) (*wire.DeviceInfo, error)
	QueryDeviceStates(ctx context.Context, host, deviceID string) (*wire.DeviceStates, error)
	TurnOn(ctx context.Context, host, deviceID string, brightness, colorTempMireds *int) (wire.Response, error)
	TurnOff(ctx context.Context, host, deviceID string) (wire.Response, error)
}

// State is a snapshot of a light. Nil fields are unknown.
type State struct {
	Available  bool
	On         *bool
	Brightness *int // 0-255
	ColorTemp  *int // mireds
}

// Equal reports whether two snapshots carry the same values.
func (s State) Equal(o State) bool {
	return s.Available == o.Available &&
		ptrEqual(s.On, o.On) &&
		ptrEqual(s.Brightness, o.Brightness) &&
		ptrEqual(s.ColorTemp, o.ColorTemp)
}

// String renders the state for logs and the CLI.
func (s State) String() string {
	if !s.Available {
		return "unavailable"
	}
	return fmt.Sprintf("on=%s brightness=%s color_temp=%s",
		fmtPtr(s.On), fmtPtr(s.Brightness), fmtPtr(s.ColorTemp))
}

// Light is one dLight device.
type Light struct {
	client   Client
	host     string
	deviceID string
	info     wire.DeviceInfo
	logger   *slog.Logger

	mu    sync.RWMutex
	state State
}

// Setup identifies the device at host and returns its Light. The error is
// the client's, so callers can report dlight.Kind(err).
func Setup(ctx context.Context, client Client, host, deviceID string, logger *slog.Logger) (*Light, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := client.QueryDeviceInfo(ctx, host, deviceID)
	if err != nil {
		logger.Error("failed to connect to light",
			slog.String("host", host),
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		return nil, err
	}
	return &Light{
		client:   client,
		host:     host,
		deviceID: deviceID,
		info:     *info,
		logger:   logger.With(slog.String("device_id", deviceID)),
	}, nil
}

// UniqueID returns the device id, which also serves as the entity name.
func (l *Light) UniqueID() string { return l.deviceID }

// Host returns the device address.
func (l *Light) Host() string { return l.host }

// Info returns the identity reported at setup.
func (l *Light) Info() wire.DeviceInfo { return l.info }

// MinMireds is the coolest supported color temperature.
func (l *Light) MinMireds() int { return convert.MinMireds }

// MaxMireds is the warmest supported color temperature.
func (l *Light) MaxMireds() int { return convert.MaxMireds }

// State returns the cached state.
func (l *Light) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Update refreshes the cached state from the device. Transport failures and
// non-SUCCESS replies mark the light unavailable; the error is returned in
// the first case only.
func (l *Light) Update(ctx context.Context) error {
	reply, err := l.client.QueryDeviceStates(ctx, l.host, l.deviceID)
	if err != nil {
		l.logger.Error("failed to update state", slog.Any("error", err))
		l.setAvailable(false)
		return err
	}

	if !reply.Status.IsSuccess() {
		l.logger.Warn("unknown status in state reply", slog.String("status", string(reply.Status)))
		l.setAvailable(false)
		return nil
	}

	next := State{Available: true}
	if s := reply.States; s != nil {
		next.On = s.On
		next.Brightness = convert.BrightnessToHost(s.Brightness)
		if k, ok := s.Temperature(); ok && k > 0 {
			m := convert.KelvinToMireds(k)
			next.ColorTemp = &m
		}
	}
	l.logger.Debug("state updated", slog.String("state", next.String()))

	l.mu.Lock()
	l.state = next
	l.mu.Unlock()
	return nil
}

// TurnOn switches the light on. brightness is 0-255 and colorTempMireds is
// clamped to the supported range; nil leaves either unchanged.
func (l *Light) TurnOn(ctx context.Context, brightness, colorTempMireds *int) error {
	if colorTempMireds != nil {
		m := convert.ClampMireds(*colorTempMireds)
		colorTempMireds = &m
	}
	resp, err := l.client.TurnOn(ctx, l.host, l.deviceID, brightness, colorTempMireds)
	if err != nil {
		return err
	}
	l.fold(resp)
	return nil
}

// TurnOff switches the light off.
func (l *Light) TurnOff(ctx context.Context) error {
	resp, err := l.client.TurnOff(ctx, l.host, l.deviceID)
	if err != nil {
		return err
	}
	l.fold(resp)
	return nil
}

// fold applies the on and brightness fields of an EXECUTE reply.
func (l *Light) fold(resp wire.Response) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on, ok := resp.Bool("on"); ok {
		l.state.On = &on
	}
	if b, ok := resp.Int("brightness"); ok {
		l.state.Brightness = convert.BrightnessToHost(&b)
	}
}

func (l *Light) setAvailable(available bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Available = available
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}
