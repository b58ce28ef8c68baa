package commands

import (
	"fmt"
	"io"

	"github.com/roomkit/codec-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timestampLayout)

	var label string
	switch {
	case event.Feedback != nil:
		label = event.Feedback.Key
	case event.Usage != nil:
		label = event.Usage.Action.String()
	case event.Error != nil:
		label = event.Error.Source.String()
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [%s] %-8s %s\n", ts, event.DeviceKey, event.Category.String(), label)

	switch {
	case event.Feedback != nil:
		fmt.Fprintf(w, "  Value: %v\n", event.Feedback.Value)
	case event.Usage != nil:
		if event.Usage.Duration > 0 {
			fmt.Fprintf(w, "  Duration: %s\n", formatDuration(event.Usage.Duration))
		}
	case event.Error != nil:
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}
	if event.SessionID != "" {
		fmt.Fprintf(w, "  Session: %s\n", event.SessionID)
	}

	fmt.Fprintln(w)
}

// RunView prints every event of path matching filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
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
		formatEvent(output, event)
	}
}
