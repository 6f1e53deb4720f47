// Command dlight-sim runs a simulated dLight device.
//
// The simulator listens for controller connections, answers QUERY_DEVICE_INFO,
// QUERY_DEVICE_STATES and EXECUTE commands and keeps the light state in
// memory. Misbehaving device modes help exercise controller error paths.
//
// Usage:
//
//	dlight-sim [flags]
//
// Flags:
//
//	-device-id string     Device id to answer to (required)
//	-listen string        Listen address (default ":3333")
//	-mode string          normal, silent, bad-length, garbage, short-body, stall, failure
//	-raw-length uint      Length prefix sent in bad-length mode (default 0)
//	-protocol-log string  Capture protocol events to a .dlog file
//	-log-level string     debug, info, warn, error (default "info")
//	-interactive          Start an interactive shell
//
// Examples:
//
//	# Answer as dl-0001 on the standard port
//	dlight-sim -device-id dl-0001
//
//	# Reply with an oversized length prefix
//	dlight-sim -device-id dl-0001 -mode bad-length -raw-length 8192
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dlight-protocol/dlight-go/internal/devicesim"
	"github.com/dlight-protocol/dlight-go/pkg/log"
)

type options struct {
	DeviceID    string
	Listen      string
	Mode        string
	RawLength   uint
	ProtocolLog string
	LogLevel    string
	Interactive bool
	SWVersion   string
	HWVersion   string
	Model       string
}

var opts options

func init() {
	flag.StringVar(&opts.DeviceID, "device-id", "", "Device id to answer to (required)")
	flag.StringVar(&opts.Listen, "listen", ":3333", "Listen address")
	flag.StringVar(&opts.Mode, "mode", "normal", "Reply mode: normal, silent, bad-length, garbage, short-body, stall, failure")
	flag.UintVar(&opts.RawLength, "raw-length", 0, "Length prefix sent in bad-length mode")
	flag.StringVar(&opts.ProtocolLog, "protocol-log", "", "Capture protocol events to a .dlog file")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start an interactive shell")
	flag.StringVar(&opts.SWVersion, "sw-version", devicesim.DefaultInfo.SWVersion, "Reported firmware version")
	flag.StringVar(&opts.HWVersion, "hw-version", devicesim.DefaultInfo.HWVersion, "Reported hardware version")
	flag.StringVar(&opts.Model, "model", devicesim.DefaultInfo.DeviceModel, "Reported device model")
}

func main() {
	flag.Parse()

	logger := newLogger(opts.LogLevel)
	if err := run(logger); err != nil {
		logger.Error("dlight-sim failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if opts.DeviceID == "" {
		return fmt.Errorf("-device-id is required")
	}
	mode, err := devicesim.ParseMode(opts.Mode)
	if err != nil {
		return err
	}

	var protocol log.Logger
	if opts.ProtocolLog != "" {
		fl, err := log.NewFileLogger(opts.ProtocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer fl.Close()
		protocol = fl
		logger.Info("capturing protocol events", slog.String("path", fl.Path()))
	}

	dev, err := devicesim.New(devicesim.Config{
		Address:        opts.Listen,
		DeviceID:       opts.DeviceID,
		Info:           devicesim.Info(opts.SWVersion, opts.HWVersion, opts.Model),
		ProtocolLogger: protocol,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	dev.SetMode(mode)
	dev.SetRawLength(uint32(opts.RawLength))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := dev.Start(ctx); err != nil {
		return err
	}
	defer dev.Stop()

	logger.Info("simulator listening",
		slog.String("addr", dev.Addr()),
		slog.String("device_id", opts.DeviceID),
		slog.String("mode", mode.String()))

	if opts.Interactive {
		sh, err := newShell(dev)
		if err != nil {
			return err
		}
		sh.Run(ctx, cancel)
	}

	<-ctx.Done()
	logger.Info("shutting down", slog.Uint64("served", dev.Served()))
	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
