package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/roomkit/codec-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	FeedbackChanges  map[string]int
	Devices          map[string]*DeviceStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// DeviceStats holds usage statistics for a single device.
type DeviceStats struct {
	Events    int
	Calls     int
	InCall    time.Duration
	OpenSince time.Time
	Sessions  []string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		FeedbackChanges:  make(map[string]int),
		Devices:          make(map[string]*DeviceStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		dev, ok := stats.Devices[event.DeviceKey]
		if !ok {
			dev = &DeviceStats{}
			stats.Devices[event.DeviceKey] = dev
		}
		dev.Events++

		switch {
		case event.Feedback != nil:
			stats.FeedbackChanges[event.Feedback.Key]++
		case event.Usage != nil:
			switch event.Usage.Action {
			case log.UsageStart:
				dev.OpenSince = event.Timestamp
				if event.SessionID != "" {
					dev.Sessions = append(dev.Sessions, event.SessionID)
				}
			case log.UsageEnd:
				dev.Calls++
				d := event.Usage.Duration
				if d == 0 && !dev.OpenSince.IsZero() {
					d = event.Timestamp.Sub(dev.OpenSince)
				}
				dev.InCall += d
				dev.OpenSince = time.Time{}
			}
		case event.Error != nil:
			stats.Errors++
		}
	}

	return stats, nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Codec Event Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryFeedback, log.CategoryUsage, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.FeedbackChanges) > 0 {
		fmt.Fprintln(w, "Feedback Changes:")
		keys := make([]string, 0, len(stats.FeedbackChanges))
		for k := range stats.FeedbackChanges {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-24s %d\n", k+":", stats.FeedbackChanges[k])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Devices: %d\n", len(stats.Devices))
	keys := make([]string, 0, len(stats.Devices))
	for k := range stats.Devices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d := stats.Devices[k]
		fmt.Fprintf(w, "  [%s] %d events, %d call(s), %s in call\n",
			k, d.Events, d.Calls, d.InCall.Round(time.Second))
		if !d.OpenSince.IsZero() {
			fmt.Fprintf(w, "           Open session since %s\n", d.OpenSince.Format(time.RFC3339))
		}
		if len(d.Sessions) > 0 {
			fmt.Fprintf(w, "           Sessions: %d\n", len(d.Sessions))
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
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
