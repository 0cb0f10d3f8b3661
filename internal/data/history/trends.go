package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport derives per-run deltas and moving averages over window
// from runs ordered oldest first.
func BuildTrendReport(runs []RunRecord, window time.Duration) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, fmt.Errorf("no runs available")
	}

	points := make([]TrendPoint, 0, len(runs))
	failures := 0
	for i, current := range runs {
		if !current.Success {
			failures++
		}
		point := TrendPoint{
			Timestamp:       current.StartedAt,
			Input:           current.Input,
			Success:         current.Success,
			DiagnosticCount: current.DiagnosticCount,
		}
		if i > 0 {
			point.DeltaDiagnostics = current.DiagnosticCount - runs[i-1].DiagnosticCount
		}

		avgDiags, failureRate := movingAverages(runs, i, window)
		point.AvgDiagnostics = round2(avgDiags)
		point.FailureRatePct = round2(failureRate * 100)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         runs[0].StartedAt,
		Until:         runs[len(runs)-1].StartedAt,
		Window:        window.String(),
		RunCount:      len(points),
		FailureCount:  failures,
		Points:        points,
	}, nil
}

func movingAverages(runs []RunRecord, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		failed := 0.0
		if !runs[index].Success {
			failed = 1
		}
		return float64(runs[index].DiagnosticCount), failed
	}

	cutoff := runs[index].StartedAt.Add(-window)
	var diagTotal, failed, count int
	for i := index; i >= 0; i-- {
		if runs[i].StartedAt.Before(cutoff) {
			break
		}
		diagTotal += runs[i].DiagnosticCount
		if !runs[i].Success {
			failed++
		}
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(diagTotal) / float64(count), float64(failed) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
