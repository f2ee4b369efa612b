package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for the walkthrough phases
type TimingStats struct {
	TotalTime         time.Duration
	ModelInitTime     time.Duration
	FullPassTime      time.Duration
	SegmentedPassTime time.Duration
	ResetTime         time.Duration
	Steps             int
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Time steps processed: %d\n", stats.Steps)
	fmt.Fprintln(Output, "\nBreakdown by phase:")
	fmt.Fprintf(Output, "  Model initialization: %v (%.1f%%)\n", stats.ModelInitTime, pct(stats.ModelInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Whole-sequence pass:  %v (%.1f%%)\n", stats.FullPassTime, pct(stats.FullPassTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Segmented passes:     %v (%.1f%%)\n", stats.SegmentedPassTime, pct(stats.SegmentedPassTime, stats.TotalTime))
	fmt.Fprintf(Output, "  State resets:         %v (%.1f%%)\n", stats.ResetTime, pct(stats.ResetTime, stats.TotalTime))
	if stats.Steps > 0 {
		fmt.Fprintf(Output, "\nAverage time per step: %v\n", stats.FullPassTime/time.Duration(stats.Steps))
	}
}

func pct(part, total time.Duration) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
