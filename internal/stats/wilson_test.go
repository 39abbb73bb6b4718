package stats

import (
	"math"
	"testing"
)

func TestWilson(t *testing.T) {
	tests := []struct {
		name      string
		wins      int
		total     int
		z         float64
		wantLower float64
		wantUpper float64
		tolerance float64
	}{
		{
			// 6-1 record: measured 85.7%, the interval is wide.
			name: "six and one at 95%",
			wins: 6, total: 7, z: 1.96,
			wantLower: 48.7, wantUpper: 97.4, tolerance: 0.05,
		},
		{
			name: "even record at 95%",
			wins: 50, total: 100, z: 1.96,
			wantLower: 40.4, wantUpper: 59.6, tolerance: 0.1,
		},
		{
			name: "all wins small sample",
			wins: 3, total: 3, z: 1.96,
			wantLower: 43.8, wantUpper: 100.0, tolerance: 0.1,
		},
		{
			name: "all losses small sample",
			wins: 0, total: 3, z: 1.96,
			wantLower: 0.0, wantUpper: 56.2, tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wilson(tt.wins, tt.total, tt.z)
			if math.Abs(got.Lower-tt.wantLower) > tt.tolerance {
				t.Errorf("Lower = %.3f, want %.1f ± %v", got.Lower, tt.wantLower, tt.tolerance)
			}
			if math.Abs(got.Upper-tt.wantUpper) > tt.tolerance {
				t.Errorf("Upper = %.3f, want %.1f ± %v", got.Upper, tt.wantUpper, tt.tolerance)
			}
		})
	}
}

func TestWilsonZeroSample(t *testing.T) {
	got := Wilson(0, 0, 1.96)
	if got != MaximalInterval {
		t.Errorf("Wilson(0, 0) = %+v, want maximal uncertainty (0, 100)", got)
	}
}

// The measured win rate must always sit inside its own interval.
func TestWilsonContainsPointEstimate(t *testing.T) {
	for wins := 0; wins <= 20; wins++ {
		for total := wins; total <= 20; total++ {
			if total == 0 {
				continue
			}
			rate := float64(wins) * 100 / float64(total)
			ci := Wilson(wins, total, 1.96)
			if ci.Lower > rate || ci.Upper < rate {
				t.Errorf("Wilson(%d, %d) = [%.2f, %.2f] excludes measured rate %.2f",
					wins, total, ci.Lower, ci.Upper, rate)
			}
			if ci.Lower < 0 || ci.Upper > 100 {
				t.Errorf("Wilson(%d, %d) = [%.2f, %.2f] escapes [0, 100]",
					wins, total, ci.Lower, ci.Upper)
			}
		}
	}
}

func TestZForConfidence(t *testing.T) {
	if got := ZForConfidence(0.95); got != 1.96 {
		t.Errorf("ZForConfidence(0.95) = %v, want 1.96", got)
	}
	if got := ZForConfidence(0.90); got != 1.645 {
		t.Errorf("ZForConfidence(0.90) = %v, want 1.645", got)
	}
	if got := ZForConfidence(0.42); got != 1.96 {
		t.Errorf("ZForConfidence falls back to the 95%% value, got %v", got)
	}
}
