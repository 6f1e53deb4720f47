package dlight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dlight-protocol/dlight-go/pkg/convert"
	"github.com/dlight-protocol/dlight-go/pkg/log"
	"github.com/dlight-protocol/dlight-go/pkg/transport"
	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

// Client sends commands to dLight devices. It keeps no connections open and
// is safe for concurrent use; the only shared state is the command counter.
type Client struct {
	exchanger transport.Exchanger
	ids       wire.IDGenerator
	logger    *slog.Logger
	protocol  log.Logger
}

// NewClient creates a client.
func NewClient(opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	exchanger := o.exchanger
	if exchanger == nil {
		exchanger = transport.NewClient(o.transport)
	}
	ids := o.ids
	if ids == nil {
		ids = wire.NewSequenceGenerator(o.idPrefix)
	}

	return &Client{
		exchanger: exchanger,
		ids:       ids,
		logger:    o.logger,
		protocol:  log.OrNoop(o.transport.Logger),
	}
}

// Brightness returns a pointer to a host-scale brightness (0-255).
func Brightness(v int) *int { return &v }

// Mireds returns a pointer to a color temperature in mireds.
func Mireds(v int) *int { return &v }

// QueryDeviceInfo asks the device for its firmware, hardware and model.
func (c *Client) QueryDeviceInfo(ctx context.Context, host, deviceID string) (*wire.DeviceInfo, error) {
	cmd := &wire.Command{DeviceID: deviceID, CommandType: wire.CommandQueryDeviceInfo}
	body, err := c.send(ctx, host, cmd)
	if err != nil {
		return nil, err
	}
	info, err := wire.DecodeDeviceInfo(body)
	if err != nil {
		return nil, c.malformed(cmd, err)
	}
	return info, nil
}

// QueryDeviceStates asks the device for its current light state.
func (c *Client) QueryDeviceStates(ctx context.Context, host, deviceID string) (*wire.DeviceStates, error) {
	cmd := &wire.Command{DeviceID: deviceID, CommandType: wire.CommandQueryDeviceStates}
	body, err := c.send(ctx, host, cmd)
	if err != nil {
		return nil, err
	}
	states, err := wire.DecodeDeviceStates(body)
	if err != nil {
		return nil, c.malformed(cmd, err)
	}
	return states, nil
}

// TurnOn switches the light on. brightness is on the 0-255 host scale and
// colorTempMireds in mireds; nil leaves the attribute unchanged.
func (c *Client) TurnOn(ctx context.Context, host, deviceID string, brightness, colorTempMireds *int) (wire.Response, error) {
	return c.Execute(ctx, host, deviceID, switchActions(true, brightness, colorTempMireds)...)
}

// TurnOff switches the light off.
func (c *Client) TurnOff(ctx context.Context, host, deviceID string) (wire.Response, error) {
	return c.Execute(ctx, host, deviceID, switchActions(false, nil, nil)...)
}

// Execute sends an EXECUTE command with the given actions in order.
func (c *Client) Execute(ctx context.Context, host, deviceID string, actions ...wire.Action) (wire.Response, error) {
	cmd := &wire.Command{DeviceID: deviceID, CommandType: wire.CommandExecute, Commands: actions}
	body, err := c.send(ctx, host, cmd)
	if err != nil {
		return nil, err
	}
	resp, err := wire.DecodeResponse(body)
	if err != nil {
		return nil, c.malformed(cmd, err)
	}
	return resp, nil
}

// switchActions builds the EXECUTE sequence: ON first, then brightness and
// color temperature when supplied, converted to device scales.
func switchActions(on bool, brightness, colorTempMireds *int) []wire.Action {
	actions := []wire.Action{wire.OnAction(on)}
	if b := convert.BrightnessToDevice(brightness); b != nil {
		actions = append(actions, wire.BrightnessAction(*b))
	}
	if colorTempMireds != nil {
		actions = append(actions, wire.TemperatureAction(deviceKelvin(*colorTempMireds)))
	}
	return actions
}

// deviceKelvin converts mireds to Kelvin. Inside the advertised mired range
// the result is clamped, since the rounded limits land a few Kelvin outside
// the device range (385 mireds is 2597 K). Values outside it are left for
// validation to reject.
func deviceKelvin(mireds int) int {
	k := convert.MiredsToKelvin(mireds)
	if mireds >= convert.MinMireds && mireds <= convert.MaxMireds {
		k = convert.ClampKelvin(k)
	}
	return k
}

// send assigns a command id, encodes the command and performs the exchange.
func (c *Client) send(ctx context.Context, host string, cmd *wire.Command) ([]byte, error) {
	// The id is taken before any I/O so concurrent calls never share one.
	cmd.CommandID = c.ids.NextID()

	payload, err := wire.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("sending command",
		slog.String("host", host),
		slog.String("device_id", cmd.DeviceID),
		slog.String("command_id", cmd.CommandID),
		slog.String("command_type", cmd.CommandType.String()))
	c.protocol.Log(c.commandEvent(cmd, log.MessageTypeRequest, nil, ""))

	start := time.Now()
	body, err := c.exchanger.Exchange(ctx, host, payload, transport.ExchangeInfo{
		DeviceID:  cmd.DeviceID,
		CommandID: cmd.CommandID,
	})
	if err != nil {
		err = classify(err)
		c.logger.Warn("command failed",
			slog.String("host", host),
			slog.String("command_id", cmd.CommandID),
			slog.String("kind", Kind(err)),
			slog.Any("error", err))
		c.protocol.Log(c.errorEvent(cmd, err))
		return nil, err
	}

	elapsed := time.Since(start)
	c.logger.Debug("received response",
		slog.String("command_id", cmd.CommandID),
		slog.Int("size", len(body)),
		slog.Duration("elapsed", elapsed))
	c.protocol.Log(c.commandEvent(cmd, log.MessageTypeResponse, &elapsed, statusOf(body)))

	return body, nil
}

func (c *Client) malformed(cmd *wire.Command, err error) error {
	err = fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	c.logger.Warn("undecodable response",
		slog.String("command_id", cmd.CommandID),
		slog.Any("error", err))
	c.protocol.Log(c.errorEvent(cmd, err))
	return err
}

func (c *Client) commandEvent(cmd *wire.Command, typ log.MessageType, elapsed *time.Duration, status string) log.Event {
	direction := log.DirectionOut
	if typ == log.MessageTypeResponse {
		direction = log.DirectionIn
	}

	ev := &log.CommandEvent{
		Type:        typ,
		CommandType: cmd.CommandType.String(),
		Status:      status,
		Duration:    elapsed,
	}
	if typ == log.MessageTypeRequest {
		for _, a := range cmd.Commands {
			ev.Actions = append(ev.Actions, a.String())
		}
	}

	return log.Event{
		Timestamp: time.Now(),
		Direction: direction,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		DeviceID:  cmd.DeviceID,
		CommandID: cmd.CommandID,
		Command:   ev,
	}
}

func (c *Client) errorEvent(cmd *wire.Command, err error) log.Event {
	return log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerClient,
		Category:  log.CategoryError,
		DeviceID:  cmd.DeviceID,
		CommandID: cmd.CommandID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerClient,
			Message: err.Error(),
			Kind:    Kind(err),
			Context: cmd.CommandType.String(),
		},
	}
}

// statusOf extracts a top-level "status" string for logging, if present.
func statusOf(body []byte) string {
	resp, err := wire.DecodeResponse(body)
	if err != nil {
		return ""
	}
	s, _ := resp.String("status")
	return s
}
