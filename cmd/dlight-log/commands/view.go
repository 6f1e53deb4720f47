// Package commands implements the dlight-log subcommands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dlight-protocol/dlight-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// RunView prints matching events in human-readable form.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// eventType labels the payload an event carries.
func eventType(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Command != nil:
		return event.Command.Type.String()
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes one event followed by a blank line.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timestampLayout)
	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s", ts, shortenID(event.ConnectionID),
		event.Direction.String(), event.Layer.String(), eventType(event))
	if event.CommandID != "" {
		fmt.Fprintf(w, " %s", event.CommandID)
	}
	fmt.Fprintln(w)

	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s", event.DeviceID)
		if event.RemoteAddr != "" {
			fmt.Fprintf(w, " @ %s", event.RemoteAddr)
		}
		fmt.Fprintln(w)
	}

	switch {
	case event.Frame != nil:
		formatFrame(w, event.Frame)
	case event.Command != nil:
		formatCommand(w, event.Command)
	case event.StateChange != nil:
		formatStateChange(w, event.StateChange)
	case event.Error != nil:
		formatError(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a connection id.
func shortenID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrame prints frame data as text, since payloads are JSON.
func formatFrame(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) == 0 {
		return
	}
	fmt.Fprintf(w, "  Data: %s", strings.ToValidUTF8(string(frame.Data), "\uFFFD"))
	if frame.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
}

func formatCommand(w io.Writer, cmd *log.CommandEvent) {
	fmt.Fprintf(w, "  Command: %s\n", cmd.CommandType)
	if len(cmd.Actions) > 0 {
		fmt.Fprintf(w, "  Actions: %s\n", strings.Join(cmd.Actions, ", "))
	}
	if cmd.Status != "" {
		fmt.Fprintf(w, "  Status: %s\n", cmd.Status)
	}
	if cmd.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*cmd.Duration))
	}
}

func formatStateChange(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatError(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", e.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Kind != "" {
		fmt.Fprintf(w, "  Kind: %s\n", e.Kind)
	}
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
