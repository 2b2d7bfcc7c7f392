package pipeline

import (
	"fmt"
	"time"
)

// ProgressSink receives progress events. Percentages never decrease within
// a run.
type ProgressSink interface {
	Progress(percent float64, label string)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(percent float64, label string)

// Progress calls f.
func (f ProgressFunc) Progress(percent float64, label string) { f(percent, label) }

type nopProgress struct{}

func (nopProgress) Progress(float64, string) {}

// monotonic wraps a sink and drops events that would move backwards.
type monotonic struct {
	sink ProgressSink
	last float64
}

func (m *monotonic) Progress(percent float64, label string) {
	if percent < m.last {
		percent = m.last
	}
	m.last = percent
	m.sink.Progress(percent, label)
}

// ETA estimates the remaining time from the average time per completed item,
// floored to whole seconds.
func ETA(elapsed time.Duration, completed, total int) time.Duration {
	if completed <= 0 {
		return 0
	}
	remaining := total - completed
	eta := elapsed / time.Duration(completed) * time.Duration(remaining)
	return eta.Truncate(time.Second)
}

// FormatETA renders an ETA as "<n>s", or "<1s" when it is not positive.
func FormatETA(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return "<1s"
	}
	return fmt.Sprintf("%ds", secs)
}

// blockPercent maps completed/total onto the per-block band.
func blockPercent(completed, total int) float64 {
	if total <= 0 {
		return ProgressBlocksEnd
	}
	return ProgressBlocksStart + progressBlocksBandLen*float64(completed)/float64(total)
}

// flatPercent maps the i-th of total textures onto the flat band.
func flatPercent(i, total int) float64 {
	if total <= 0 {
		total = 1
	}
	return ProgressFlatStart + float64(int(ProgressFlatSpan*float64(i)/float64(total)))
}

func blockLabel(completed, total int, eta time.Duration, key string) string {
	return fmt.Sprintf("Processing full blocks %d/%d • ETA %s • Working on %s",
		completed, total, FormatETA(eta), key)
}

func foundLabel(total int) string {
	if total == 0 {
		return "No full blocks found to process"
	}
	return fmt.Sprintf("Found %d full blocks to process", total)
}

func fmtGenerating(i, total int) string {
	return fmt.Sprintf("Generating skins (%d/%d)", i, total)
}
