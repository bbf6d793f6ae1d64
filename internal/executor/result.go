package executor

import (
	"fmt"
	"strings"
	"time"
)

// CountSucceeded returns the number of successful outcomes
func CountSucceeded(outcomes []Outcome) int {
	count := 0
	for _, o := range outcomes {
		if o.OK {
			count++
		}
	}
	return count
}

// CountFailed returns the number of failed outcomes
func CountFailed(outcomes []Outcome) int {
	return len(outcomes) - CountSucceeded(outcomes)
}

// FilterFailed returns only the failed outcomes
func FilterFailed(outcomes []Outcome) []Outcome {
	filtered := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.OK {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// FailedIndices returns the input positions of failed outcomes
func FailedIndices(outcomes []Outcome) []int {
	indices := make([]int, 0)
	for _, o := range outcomes {
		if !o.OK {
			indices = append(indices, o.Index)
		}
	}
	return indices
}

// AverageDuration calculates the average duration of all outcomes
func AverageDuration(outcomes []Outcome) time.Duration {
	if len(outcomes) == 0 {
		return 0
	}

	var total time.Duration
	for _, o := range outcomes {
		total += o.Duration
	}

	return total / time.Duration(len(outcomes))
}

// MaxDuration returns the maximum duration among all outcomes
func MaxDuration(outcomes []Outcome) time.Duration {
	if len(outcomes) == 0 {
		return 0
	}

	max := outcomes[0].Duration
	for _, o := range outcomes {
		if o.Duration > max {
			max = o.Duration
		}
	}
	return max
}

// MinDuration returns the minimum duration among all outcomes
func MinDuration(outcomes []Outcome) time.Duration {
	if len(outcomes) == 0 {
		return 0
	}

	min := outcomes[0].Duration
	for _, o := range outcomes {
		if o.Duration < min {
			min = o.Duration
		}
	}
	return min
}

// Summary provides a summary of a batch
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	AvgDuration time.Duration
	MaxDuration time.Duration
	MinDuration time.Duration
}

// Summarize creates a summary of the outcomes
func Summarize(outcomes []Outcome) Summary {
	succeeded := CountSucceeded(outcomes)
	return Summary{
		Total:       len(outcomes),
		Succeeded:   succeeded,
		Failed:      len(outcomes) - succeeded,
		AvgDuration: AverageDuration(outcomes),
		MaxDuration: MaxDuration(outcomes),
		MinDuration: MinDuration(outcomes),
	}
}

// String returns a human-readable string representation of the summary
func (s Summary) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total: %d, ", s.Total))
	sb.WriteString(fmt.Sprintf("Succeeded: %d, ", s.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed: %d", s.Failed))

	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf(", Avg: %s", s.AvgDuration.Round(time.Millisecond)))
		sb.WriteString(fmt.Sprintf(", Max: %s", s.MaxDuration.Round(time.Millisecond)))
		sb.WriteString(fmt.Sprintf(", Min: %s", s.MinDuration.Round(time.Millisecond)))
	}

	return sb.String()
}

// AllSucceeded returns true if every outcome succeeded
func AllSucceeded(outcomes []Outcome) bool {
	return CountSucceeded(outcomes) == len(outcomes)
}

// SuccessRate returns the success rate as a percentage (0.0 to 100.0)
func SuccessRate(outcomes []Outcome) float64 {
	if len(outcomes) == 0 {
		return 0.0
	}
	return float64(CountSucceeded(outcomes)) / float64(len(outcomes)) * 100.0
}
