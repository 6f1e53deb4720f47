package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dlight-protocol/dlight-go/internal/devicesim"
	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

// shell lets an operator poke the simulated light while it serves.
type shell struct {
	dev *devicesim.Device
	rl  *readline.Instance
}

func newShell(dev *devicesim.Device) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sim> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &shell{dev: dev, rl: rl}, nil
}

// Run reads commands until quit, EOF or ctx is done.
func (s *shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	out := s.rl.Stdout()

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
			cancel()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		args := parts[1:]

		switch strings.ToLower(parts[0]) {
		case "help", "?":
			s.printHelp()
		case "state", "s":
			st := s.dev.State()
			fmt.Fprintf(out, "on=%t brightness=%d temperature=%dK\n", st.On, st.Brightness, st.Temperature)
		case "on":
			s.update(func(st *devicesim.State) { st.On = true })
		case "off":
			s.update(func(st *devicesim.State) { st.On = false })
		case "brightness", "b":
			s.setInt(args, wire.MinBrightness, wire.MaxBrightness, func(st *devicesim.State, v int) { st.Brightness = v })
		case "temp", "t":
			s.setInt(args, wire.MinTemperature, wire.MaxTemperature, func(st *devicesim.State, v int) { st.Temperature = v })
		case "mode", "m":
			s.cmdMode(args)
		case "log", "l":
			for _, c := range s.dev.Commands() {
				fmt.Fprintf(out, "%s %s %s %v\n", c.CommandID, c.DeviceID, c.CommandType, c.Commands)
			}
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Exiting...")
			cancel()
			return
		default:
			fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", parts[0])
		}
	}
}

func (s *shell) update(fn func(*devicesim.State)) {
	st := s.dev.State()
	fn(&st)
	s.dev.SetState(st)
}

func (s *shell) setInt(args []string, lo, hi int, fn func(*devicesim.State, int)) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "expected one value")
		return
	}
	v, err := strconv.Atoi(args[0])
	if err != nil || v < lo || v > hi {
		fmt.Fprintf(s.rl.Stdout(), "value must be %d-%d\n", lo, hi)
		return
	}
	s.update(func(st *devicesim.State) { fn(st, v) })
}

func (s *shell) cmdMode(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "usage: mode <name> [raw-length]")
		return
	}
	m, err := devicesim.ParseMode(args[0])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}
	if len(args) > 1 {
		n, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			fmt.Fprintln(s.rl.Stdout(), "raw length must be a uint32")
			return
		}
		s.dev.SetRawLength(uint32(n))
	}
	s.dev.SetMode(m)
	fmt.Fprintf(s.rl.Stdout(), "mode %s\n", m)
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Simulator Commands:
  state              - Show the light state
  on | off           - Switch the light
  brightness <0-100> - Set brightness
  temp <2600-6000>   - Set color temperature (K)
  mode <name> [len]  - normal, silent, bad-length, garbage, short-body, stall, failure
  log                - List received commands
  help               - Show this help
  quit               - Stop the simulator`)
}
