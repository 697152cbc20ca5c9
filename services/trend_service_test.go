package services

import (
	"math"
	"testing"
)

func TestMetricStatsFor_Basics(t *testing.T) {
	// zero day excluded from the statistic
	values := []float64{100, 110, 0, 90, 100}
	got := MetricStatsFor(values, 100)
	if got.Mean != 100 {
		t.Errorf("mean = %.2f, want 100", got.Mean)
	}
	wantStd := math.Sqrt(50) // population stddev of {100,110,90,100}
	if math.Abs(got.StdDev-math.Round(wantStd*100)/100) > 1e-9 {
		t.Errorf("stddev = %.4f, want %.4f", got.StdDev, wantStd)
	}
	if got.ConsistencyScore < 0 || got.ConsistencyScore > 100 {
		t.Errorf("consistency %.2f out of range", got.ConsistencyScore)
	}
}

func TestMetricStatsFor_EmptyAndZeroTarget(t *testing.T) {
	got := MetricStatsFor([]float64{0, 0, 0}, 100)
	if got.Mean != 0 || got.StdDev != 0 || got.Trend != TrendStable {
		t.Errorf("all-zero window should yield zero stats, got %+v", got)
	}

	got = MetricStatsFor([]float64{100, 300, 500}, 0)
	if got.ConsistencyScore != 0 {
		t.Errorf("zero target must not divide: consistency = %.2f, want 0", got.ConsistencyScore)
	}
	if math.IsNaN(got.ConsistencyScore) || math.IsNaN(got.Mean) {
		t.Error("stats must never be NaN")
	}
}

func TestTrendOf_Directions(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   TrendDirection
	}{
		{"rising", []float64{100, 100, 110, 110}, TrendUp},
		{"falling", []float64{110, 110, 100, 100}, TrendDown},
		{"flat", []float64{100, 100, 102, 102}, TrendStable},
		{"too short", []float64{100, 200, 300}, TrendStable}, // halves of 1
	}
	for _, tt := range tests {
		if got := trendOf(tt.values); got != tt.want {
			t.Errorf("%s: trend = %s, want %s", tt.name, got, tt.want)
		}
	}
}

// Reversing the series flips up↔down, but a <5% change stays stable under
// both orderings.
func TestTrendOf_FlipSymmetry(t *testing.T) {
	rising := []float64{100, 100, 110, 110}
	falling := []float64{110, 110, 100, 100}
	if trendOf(rising) != TrendUp || trendOf(falling) != TrendDown {
		t.Error("reversal should flip up and down")
	}

	small := []float64{100, 100, 102, 102}
	reversed := []float64{102, 102, 100, 100}
	if trendOf(small) != TrendStable || trendOf(reversed) != TrendStable {
		t.Error("a <5%% change must be stable in both orderings")
	}
}

func TestWindowCoverage_Buckets(t *testing.T) {
	window := func(logged, total int) []DailyTotals {
		out := make([]DailyTotals, total)
		for i := 0; i < logged; i++ {
			out[i].MealCount = 1
		}
		return out
	}
	tests := []struct {
		logged, total int
		want          string
	}{
		{8, 10, "high"},
		{5, 10, "medium"},
		{4, 10, "low"},
		{0, 0, "low"},
	}
	for _, tt := range tests {
		got := WindowCoverage(window(tt.logged, tt.total))
		if got.Confidence != tt.want {
			t.Errorf("%d/%d: confidence = %s, want %s", tt.logged, tt.total, got.Confidence, tt.want)
		}
		if got.LoggedDays != tt.logged {
			t.Errorf("%d/%d: logged = %d", tt.logged, tt.total, got.LoggedDays)
		}
	}
}

func TestComparePeriods(t *testing.T) {
	current := []DailyTotals{
		{Calories: 1800, Protein: 120, Carbs: 180, Fat: 60, MealCount: 3},
		{Calories: 2200, Protein: 140, Carbs: 200, Fat: 70, MealCount: 3},
		{MealCount: 0}, // skipped
	}
	previous := []DailyTotals{
		{Calories: 1600, Protein: 130, Carbs: 190, Fat: 65, MealCount: 2},
		{Calories: 2400, Protein: 130, Carbs: 190, Fat: 65, MealCount: 2},
		{MealCount: 0},
	}
	got := ComparePeriods(current, previous)
	if got.Current.Calories != 2000 || got.Previous.Calories != 2000 {
		t.Errorf("calorie averages = %.0f / %.0f, want 2000 / 2000", got.Current.Calories, got.Previous.Calories)
	}
	if got.Change.Calories != 0 {
		t.Errorf("calorie delta = %.2f, want 0", got.Change.Calories)
	}
	if got.Current.Variability != 200 {
		t.Errorf("current variability = %.2f, want 200", got.Current.Variability)
	}
	if got.Previous.Variability != 400 {
		t.Errorf("previous variability = %.2f, want 400", got.Previous.Variability)
	}
	if got.Change.Protein != 0 {
		t.Errorf("protein delta = %.2f, want 0 (130 vs 130)", got.Change.Protein)
	}
}

func TestComparePeriods_ZeroPreviousPolicy(t *testing.T) {
	current := []DailyTotals{{Calories: 2000, Protein: 100, MealCount: 2}}
	previous := []DailyTotals{{MealCount: 0}}
	got := ComparePeriods(current, previous)
	if got.Change.Calories != 100 {
		t.Errorf("delta from empty previous = %.0f, want 100", got.Change.Calories)
	}
	if got.Change.Carbs != 0 {
		t.Errorf("0→0 delta = %.0f, want 0", got.Change.Carbs)
	}
}
