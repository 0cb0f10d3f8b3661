package history

import (
	"testing"
	"time"
)

func TestBuildTrendReport_Empty(t *testing.T) {
	if _, err := BuildTrendReport(nil, time.Hour); err == nil {
		t.Fatal("expected error for empty run list")
	}
}

func TestBuildTrendReport_DeltasAndWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	runs := []RunRecord{
		{StartedAt: base, Input: "p.dyd", Success: false, DiagnosticCount: 4},
		{StartedAt: base.Add(30 * time.Minute), Input: "p.dyd", Success: false, DiagnosticCount: 2},
		{StartedAt: base.Add(3 * time.Hour), Input: "p.dyd", Success: true, DiagnosticCount: 0},
	}

	report, err := BuildTrendReport(runs, time.Hour)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.RunCount != 3 || report.FailureCount != 2 {
		t.Fatalf("unexpected counts: runs=%d failures=%d", report.RunCount, report.FailureCount)
	}
	if !report.Since.Equal(base) || !report.Until.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("unexpected range %v..%v", report.Since, report.Until)
	}
	if report.Window != "1h0m0s" {
		t.Fatalf("unexpected window %q", report.Window)
	}

	second := report.Points[1]
	if second.DeltaDiagnostics != -2 {
		t.Fatalf("expected delta -2, got %d", second.DeltaDiagnostics)
	}
	if second.AvgDiagnostics != 3 || second.FailureRatePct != 100 {
		t.Fatalf("unexpected second point averages: %+v", second)
	}

	third := report.Points[2]
	if third.AvgDiagnostics != 0 || third.FailureRatePct != 0 {
		t.Fatalf("third point should only see itself in window: %+v", third)
	}
}

func TestBuildTrendReport_NoWindow(t *testing.T) {
	runs := []RunRecord{{Success: false, DiagnosticCount: 5}}
	report, err := BuildTrendReport(runs, 0)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Points[0].AvgDiagnostics != 5 || report.Points[0].FailureRatePct != 100 {
		t.Fatalf("unexpected point: %+v", report.Points[0])
	}
}
