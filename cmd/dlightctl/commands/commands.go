// Package commands implements the dlightctl subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dlight-protocol/dlight-go/pkg/config"
	"github.com/dlight-protocol/dlight-go/pkg/connection"
	"github.com/dlight-protocol/dlight-go/pkg/convert"
	"github.com/dlight-protocol/dlight-go/pkg/dlight"
	"github.com/dlight-protocol/dlight-go/pkg/light"
	"github.com/dlight-protocol/dlight-go/pkg/log"
)

// Runner executes commands against configured devices.
type Runner struct {
	Client         *dlight.Client
	Config         *config.Config
	Out            io.Writer
	Logger         *slog.Logger
	ProtocolLogger log.Logger
}

// Resolve finds a device by configured name or id. With host set, ref is
// taken as a device id on that host.
func (r *Runner) Resolve(ref, host string) (config.Device, error) {
	if host != "" {
		if ref == "" {
			return config.Device{}, config.ErrNoDeviceID
		}
		return config.Device{Host: host, DeviceID: ref}, nil
	}
	if ref == "" {
		if len(r.Config.Devices) == 1 {
			return r.Config.Devices[0], nil
		}
		return config.Device{}, errors.New("device name or id required")
	}
	return r.Config.Lookup(ref)
}

// Info prints the device identity.
func (r *Runner) Info(ctx context.Context, d config.Device) error {
	info, err := r.Client.QueryDeviceInfo(ctx, d.Host, d.DeviceID)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s (%s @ %s)\n", d.Title(), d.DeviceID, d.Host)
	fmt.Fprintf(r.Out, "  Manufacturer: %s\n", light.Manufacturer)
	fmt.Fprintf(r.Out, "  Model:        %s\n", info.DeviceModel)
	fmt.Fprintf(r.Out, "  Firmware:     %s\n", info.SWVersion)
	fmt.Fprintf(r.Out, "  Hardware:     %s\n", info.HWVersion)
	return nil
}

// State prints the light state on device scales.
func (r *Runner) State(ctx context.Context, d config.Device) error {
	reply, err := r.Client.QueryDeviceStates(ctx, d.Host, d.DeviceID)
	if err != nil {
		return err
	}
	if !reply.Status.IsSuccess() {
		return fmt.Errorf("device reported status %q", reply.Status)
	}
	s := reply.States
	if s == nil {
		fmt.Fprintf(r.Out, "%s: no state reported\n", d.Title())
		return nil
	}
	fmt.Fprintf(r.Out, "%s:", d.Title())
	if s.On != nil {
		fmt.Fprintf(r.Out, " on=%t", *s.On)
	}
	if s.Brightness != nil {
		fmt.Fprintf(r.Out, " brightness=%d%%", *s.Brightness)
	}
	if k, ok := s.Temperature(); ok {
		fmt.Fprintf(r.Out, " temperature=%dK (%d mireds)", k, convert.KelvinToMireds(k))
	}
	fmt.Fprintln(r.Out)
	return nil
}

// On switches the light on. brightness is 0-255, mireds a color temperature.
func (r *Runner) On(ctx context.Context, d config.Device, brightness, mireds *int) error {
	resp, err := r.Client.TurnOn(ctx, d.Host, d.DeviceID, brightness, mireds)
	if err != nil {
		return err
	}
	status, _ := resp.String("status")
	fmt.Fprintf(r.Out, "%s: on (%s)\n", d.Title(), status)
	return nil
}

// Off switches the light off.
func (r *Runner) Off(ctx context.Context, d config.Device) error {
	resp, err := r.Client.TurnOff(ctx, d.Host, d.DeviceID)
	if err != nil {
		return err
	}
	status, _ := resp.String("status")
	fmt.Fprintf(r.Out, "%s: off (%s)\n", d.Title(), status)
	return nil
}

// Probe checks that a device answers and adds it to the configuration.
// Failures are reported by kind: cannot_connect, wrong_id or unknown.
func (r *Runner) Probe(ctx context.Context, d config.Device) error {
	info, err := r.Client.QueryDeviceInfo(ctx, d.Host, d.DeviceID)
	if err != nil {
		return fmt.Errorf("%s: %w", dlight.Kind(err), err)
	}
	if err := r.Config.Add(d); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "added %s (%s, firmware %s)\n", d.Title(), info.DeviceModel, info.SWVersion)
	return nil
}

// Watch polls devices until ctx is done, printing every state change.
func (r *Runner) Watch(ctx context.Context, devices []config.Device, interval time.Duration) error {
	var lights []*light.Light
	for _, d := range devices {
		l, err := light.Setup(ctx, r.Client, d.Host, d.DeviceID, r.Logger)
		if err != nil {
			fmt.Fprintf(r.Out, "%s: skipped (%s)\n", d.Title(), dlight.Kind(err))
			continue
		}
		lights = append(lights, l)
	}
	if len(lights) == 0 {
		return errors.New("no device could be set up")
	}

	var mu sync.Mutex
	poller := light.NewPoller(light.PollerConfig{
		Interval:       interval,
		Backoff:        connection.BackoffConfig{Initial: interval / 2},
		Logger:         r.Logger,
		ProtocolLogger: r.ProtocolLogger,
		OnChange: func(l *light.Light, _, newState light.State) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(r.Out, "%s %s: %s\n", time.Now().Format(time.TimeOnly), l.UniqueID(), newState)
		},
	}, lights...)
	poller.Run(ctx)
	return nil
}
