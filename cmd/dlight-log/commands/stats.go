package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dlight-protocol/dlight-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Commands          map[string]*CommandStats
	Devices           map[string]int
	ErrorsByKind      map[string]int
	Connections       map[string]bool
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// CommandStats aggregates replies for one command type.
type CommandStats struct {
	Sent      int
	Replies   int
	TotalTime time.Duration
	MaxTime   time.Duration
}

// Average returns the mean reply latency.
func (c *CommandStats) Average() time.Duration {
	if c.Replies == 0 {
		return 0
	}
	return c.TotalTime / time.Duration(c.Replies)
}

// Collect reads matching events and aggregates them.
func Collect(path string, filter log.Filter) (*Stats, error) {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Commands:          make(map[string]*CommandStats),
		Devices:           make(map[string]int),
		ErrorsByKind:      make(map[string]int),
		Connections:       make(map[string]bool),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}
	if event.ConnectionID != "" {
		s.Connections[event.ConnectionID] = true
	}

	if cmd := event.Command; cmd != nil {
		cs, ok := s.Commands[cmd.CommandType]
		if !ok {
			cs = &CommandStats{}
			s.Commands[cmd.CommandType] = cs
		}
		switch cmd.Type {
		case log.MessageTypeRequest:
			cs.Sent++
			if event.DeviceID != "" {
				s.Devices[event.DeviceID]++
			}
		case log.MessageTypeResponse:
			cs.Replies++
			if cmd.Duration != nil {
				cs.TotalTime += *cmd.Duration
				cs.MaxTime = max(cs.MaxTime, *cmd.Duration)
			}
		}
	}

	if event.Error != nil && event.Error.Kind != "" {
		s.ErrorsByKind[event.Error.Kind]++
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	stats, err := Collect(path, filter)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== dLight Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Connections:  %d\n", len(stats.Connections))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerClient} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Commands) > 0 {
		fmt.Fprintln(w, "Commands:")
		for _, name := range sortedKeys(stats.Commands) {
			cs := stats.Commands[name]
			fmt.Fprintf(w, "  %-20s sent %d, replies %d", name, cs.Sent, cs.Replies)
			if cs.Replies > 0 {
				fmt.Fprintf(w, ", avg %s, max %s", formatDuration(cs.Average()), formatDuration(cs.MaxTime))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if len(stats.Devices) > 0 {
		fmt.Fprintln(w, "Devices:")
		for _, id := range sortedKeys(stats.Devices) {
			fmt.Fprintf(w, "  %-20s %d commands\n", id, stats.Devices[id])
		}
		fmt.Fprintln(w)
	}

	if len(stats.ErrorsByKind) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, kind := range sortedKeys(stats.ErrorsByKind) {
			fmt.Fprintf(w, "  %-20s %d\n", kind+":", stats.ErrorsByKind[kind])
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
