// Command dlightctl queries and controls dLight smart lights.
//
// Devices are read from a YAML file (see pkg/config) or addressed directly
// with -host and a device id.
//
// Usage:
//
//	dlightctl [global flags] <command> [args]
//
// Commands:
//
//	info  [device]                  Show model and firmware
//	state [device]                  Show the light state
//	on    [device] [-b n] [-m n]    Switch on (brightness 0-255, mireds)
//	off   [device]                  Switch off
//	watch [device...]               Poll devices and print state changes
//	probe -name n <device-id>       Check a device on -host and add it to the config
//	shell                           Interactive shell
//	init                            Write an example config file
//
// Examples:
//
//	dlightctl -host 192.168.1.40 info dl-0001
//	dlightctl on desk -b 128 -m 250
//	dlightctl -protocol-log /tmp/s.dlog watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dlight-protocol/dlight-go/cmd/dlightctl/commands"
	"github.com/dlight-protocol/dlight-go/cmd/dlightctl/interactive"
	"github.com/dlight-protocol/dlight-go/pkg/config"
	"github.com/dlight-protocol/dlight-go/pkg/dlight"
	"github.com/dlight-protocol/dlight-go/pkg/log"
)

const usage = `dlightctl - dLight controller

Usage:
  dlightctl [global flags] <command> [args]

Commands:
  info  [device]                 Show model and firmware
  state [device]                 Show the light state
  on    [device] [-b n] [-m n]   Switch on (brightness 0-255, color temperature in mireds)
  off   [device]                 Switch off
  watch [device...]              Poll devices and print state changes
  probe [-name n] <device-id>    Check a device on -host and add it to the config
  shell                          Interactive shell
  init                           Write an example config file

Global flags:
`

// globals holds the flags shared by all commands.
type globals struct {
	ConfigPath  string
	Host        string
	LogLevel    string
	ProtocolLog string
	Timeout     time.Duration
}

func main() {
	var g globals
	flag.StringVar(&g.ConfigPath, "config", config.DefaultPath(), "Device configuration file")
	flag.StringVar(&g.Host, "host", "", "Device host; the device argument is then a device id")
	flag.StringVar(&g.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flag.StringVar(&g.ProtocolLog, "protocol-log", "", "Capture protocol events to a .dlog file")
	flag.DurationVar(&g.Timeout, "timeout", 0, "Overall timeout per command (0: none)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(g, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if kind := dlight.Kind(err); kind != "unknown" {
			fmt.Fprintf(os.Stderr, "Kind:  %s\n", kind)
		}
		os.Exit(1)
	}
}

func run(g globals, cmd string, args []string) error {
	if cmd == "init" {
		return writeExample(g.ConfigPath)
	}

	logger := newLogger(g.LogLevel)

	cfg, err := loadConfig(g.ConfigPath)
	if err != nil {
		return err
	}
	if g.ProtocolLog == "" {
		g.ProtocolLog = cfg.ProtocolLog
	}

	var protocol log.Logger
	if g.ProtocolLog != "" {
		fl, err := log.NewFileLogger(g.ProtocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer fl.Close()
		protocol = log.NewMultiLogger(fl, log.NewSlogAdapter(logger))
	}

	opts := append(cfg.ClientOptions(),
		dlight.WithLogger(logger),
		dlight.WithProtocolLogger(protocol))

	r := &commands.Runner{
		Client:         dlight.NewClient(opts...),
		Config:         cfg,
		Out:            os.Stdout,
		Logger:         logger,
		ProtocolLogger: protocol,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if g.Timeout > 0 && cmd != "watch" && cmd != "shell" {
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	switch cmd {
	case "info", "state", "off":
		d, err := r.Resolve(firstArg(args), g.Host)
		if err != nil {
			return err
		}
		switch cmd {
		case "info":
			return r.Info(ctx, d)
		case "state":
			return r.State(ctx, d)
		default:
			return r.Off(ctx, d)
		}

	case "on":
		return runOn(ctx, r, g, args)

	case "watch":
		devices := cfg.Devices
		if len(args) > 0 {
			devices = nil
			for _, ref := range args {
				d, err := r.Resolve(ref, g.Host)
				if err != nil {
					return err
				}
				devices = append(devices, d)
			}
		}
		return r.Watch(ctx, devices, cfg.PollInterval)

	case "probe":
		return runProbe(ctx, r, g, args)

	case "shell":
		sh, err := interactive.New(r)
		if err != nil {
			return err
		}
		sh.Run(ctx)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func runOn(ctx context.Context, r *commands.Runner, g globals, args []string) error {
	flags := flag.NewFlagSet("on", flag.ContinueOnError)
	brightness := flags.Int("b", -1, "Brightness 0-255")
	mireds := flags.Int("m", 0, "Color temperature in mireds")

	ref := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		ref, args = args[0], args[1:]
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	d, err := r.Resolve(ref, g.Host)
	if err != nil {
		return err
	}

	var b, m *int
	if *brightness >= 0 {
		b = brightness
	}
	if *mireds > 0 {
		m = mireds
	}
	return r.On(ctx, d, b, m)
}

func runProbe(ctx context.Context, r *commands.Runner, g globals, args []string) error {
	flags := flag.NewFlagSet("probe", flag.ContinueOnError)
	name := flags.String("name", "", "Display name for the device")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if g.Host == "" || flags.NArg() != 1 {
		return errors.New("usage: dlightctl -host <host> probe [-name n] <device-id>")
	}

	d := config.Device{Name: *name, Host: g.Host, DeviceID: flags.Arg(0)}
	if err := r.Probe(ctx, d); err != nil {
		return err
	}
	return r.Config.Save(g.ConfigPath)
}

// loadConfig reads the config file. A missing file yields defaults so
// devices can be addressed with -host alone.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return config.Default(), nil
	case err != nil:
		return nil, err
	}
	return cfg, nil
}

func writeExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg, err := config.Parse(config.Example())
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
