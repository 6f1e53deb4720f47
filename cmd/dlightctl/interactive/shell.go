// Package interactive provides the dlightctl shell.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dlight-protocol/dlight-go/cmd/dlightctl/commands"
	"github.com/dlight-protocol/dlight-go/pkg/config"
	"github.com/dlight-protocol/dlight-go/pkg/dlight"
)

// Shell is an interactive controller session. The selected device is used
// when a command names none.
type Shell struct {
	runner  *commands.Runner
	rl      *readline.Instance
	current string
}

// New creates a shell. The runner's output is redirected through readline.
func New(runner *commands.Runner) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dlight> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(runner.Config),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	runner.Out = rl.Stdout()
	return &Shell{runner: runner, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

func completer(cfg *config.Config) readline.AutoCompleter {
	var devices []readline.PrefixCompleterInterface
	for _, d := range cfg.Devices {
		name := d.Name
		if name == "" {
			name = d.DeviceID
		}
		devices = append(devices, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("use", devices...),
		readline.PcItem("info", devices...),
		readline.PcItem("state", devices...),
		readline.PcItem("on", devices...),
		readline.PcItem("off", devices...),
		readline.PcItem("devices"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if quit := s.Exec(ctx, parts[0], parts[1:]); quit {
			return
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, cmd string, args []string) bool {
	out := s.rl.Stdout()

	var err error
	switch strings.ToLower(cmd) {
	case "help", "?":
		s.printHelp()
	case "devices", "ls":
		for _, d := range s.runner.Config.Devices {
			fmt.Fprintf(out, "  %-16s %-16s %s\n", d.Title(), d.DeviceID, d.Host)
		}
	case "use":
		err = s.cmdUse(args)
	case "info", "i":
		err = s.withDevice(args, func(d config.Device, _ []string) error { return s.runner.Info(ctx, d) })
	case "state", "s":
		err = s.withDevice(args, func(d config.Device, _ []string) error { return s.runner.State(ctx, d) })
	case "on":
		err = s.withDevice(args, func(d config.Device, rest []string) error {
			brightness, mireds, err := ParseOnArgs(rest)
			if err != nil {
				return err
			}
			return s.runner.On(ctx, d, brightness, mireds)
		})
	case "off":
		err = s.withDevice(args, func(d config.Device, _ []string) error { return s.runner.Off(ctx, d) })
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Exiting...")
		return true
	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(out, "error [%s]: %v\n", dlight.Kind(err), err)
	}
	return false
}

func (s *Shell) cmdUse(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: use <device>")
	}
	d, err := s.runner.Resolve(args[0], "")
	if err != nil {
		return err
	}
	s.current = d.DeviceID
	s.rl.SetPrompt(fmt.Sprintf("dlight[%s]> ", d.Title()))
	return nil
}

// withDevice resolves the device from the first argument, falling back to
// the selected device when the first argument is not a known device.
func (s *Shell) withDevice(args []string, fn func(config.Device, []string) error) error {
	if len(args) > 0 {
		if d, err := s.runner.Resolve(args[0], ""); err == nil {
			return fn(d, args[1:])
		}
	}
	d, err := s.runner.Resolve(s.current, "")
	if err != nil {
		return err
	}
	return fn(d, args)
}

// ParseOnArgs parses "[brightness <0-255>] [mireds <n>]" style arguments.
// A bare number is taken as brightness.
func ParseOnArgs(args []string) (brightness, mireds *int, err error) {
	for i := 0; i < len(args); i++ {
		key := strings.ToLower(args[i])
		if n, convErr := strconv.Atoi(key); convErr == nil {
			brightness = &n
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("missing value for %s", key)
		}
		n, convErr := strconv.Atoi(args[i+1])
		if convErr != nil {
			return nil, nil, fmt.Errorf("invalid value for %s: %q", key, args[i+1])
		}
		i++
		switch key {
		case "brightness", "b":
			brightness = &n
		case "mireds", "m":
			mireds = &n
		default:
			return nil, nil, fmt.Errorf("unknown argument %q", key)
		}
	}
	return brightness, mireds, nil
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
dLight Commands:
  devices                          - List configured devices
  use <device>                     - Select the default device
  info [device]                    - Show model and firmware
  state [device]                   - Show on/brightness/temperature
  on [device] [b <0-255>] [m <n>]  - Switch on, optionally with brightness and mireds
  off [device]                     - Switch off
  help                             - Show this help
  quit                             - Exit`)
}
