package services

import (
	"context"
	"math"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/models"

	"gorm.io/gorm"
)

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// MetricStats summarizes one metric over a window. Days where the metric
// is zero are excluded from the statistic itself; the window length still
// counts toward coverage.
type MetricStats struct {
	Mean             float64        `json:"mean"`
	StdDev           float64        `json:"std_dev"`
	ConsistencyScore float64        `json:"consistency_score"` // 0–100
	Trend            TrendDirection `json:"trend"`
}

// Coverage reports how much of the window actually has logged data.
type Coverage struct {
	LoggedDays int     `json:"logged_days"`
	TotalDays  int     `json:"total_days"`
	Percentage float64 `json:"percentage"`
	Confidence string  `json:"confidence"` // high|medium|low
}

// TrendSummary is the per-metric stats bundle for one window.
type TrendSummary struct {
	Calories MetricStats `json:"calories"`
	Protein  MetricStats `json:"protein"`
	Carbs    MetricStats `json:"carbs"`
	Fat      MetricStats `json:"fat"`
	Coverage Coverage    `json:"coverage"`
}

type TrendService struct{ db *gorm.DB }

func NewTrendService(db *gorm.DB) *TrendService { return &TrendService{db: db} }

// MetricStatsFor computes mean, population standard deviation, consistency
// and trend direction for one metric's daily values (zero days excluded).
// consistency = clamp(100 − (stdDev/target)*100, 0, 100); a zero target
// yields 0 rather than dividing by zero.
func MetricStatsFor(values []float64, target float64) MetricStats {
	filtered := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0 {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return MetricStats{Trend: TrendStable}
	}

	mean := meanOf(filtered)
	std := popStdDev(filtered, mean)

	consistency := 0.0
	if target > 0 {
		consistency = clamp(100-(std/target)*100, 0, 100)
	}

	return MetricStats{
		Mean:             roundTo2(mean),
		StdDev:           roundTo2(std),
		ConsistencyScore: roundTo2(consistency),
		Trend:            trendOf(filtered),
	}
}

// trendOf splits the series into first/second halves of size floor(n/2)
// (the second half is taken from the tail; for odd n the middle day is skipped)
// and compares their averages. A half with fewer than 2 points cannot
// support a direction.
func trendOf(values []float64) TrendDirection {
	half := len(values) / 2
	if half < 2 {
		return TrendStable
	}
	firstAvg := meanOf(values[:half])
	secondAvg := meanOf(values[len(values)-half:])
	if firstAvg == 0 {
		return TrendStable
	}
	changePct := (secondAvg - firstAvg) / firstAvg * 100
	switch {
	case changePct > 5:
		return TrendUp
	case changePct < -5:
		return TrendDown
	default:
		return TrendStable
	}
}

// WindowCoverage counts logged days over the full window, including
// zero-filled days.
func WindowCoverage(window []DailyTotals) Coverage {
	logged := 0
	for _, d := range window {
		if d.MealCount > 0 {
			logged++
		}
	}
	cov := Coverage{LoggedDays: logged, TotalDays: len(window)}
	if cov.TotalDays > 0 {
		cov.Percentage = roundTo2(float64(logged) / float64(cov.TotalDays) * 100)
	}
	switch {
	case cov.Percentage >= 80:
		cov.Confidence = "high"
	case cov.Percentage >= 50:
		cov.Confidence = "medium"
	default:
		cov.Confidence = "low"
	}
	return cov
}

// TrendSummaryFor bundles MetricStats for all four macros plus coverage.
func TrendSummaryFor(window []DailyTotals, goal models.DailyGoal) TrendSummary {
	cals := make([]float64, len(window))
	prot := make([]float64, len(window))
	carbs := make([]float64, len(window))
	fat := make([]float64, len(window))
	for i, d := range window {
		cals[i], prot[i], carbs[i], fat[i] = d.Calories, d.Protein, d.Carbs, d.Fat
	}
	return TrendSummary{
		Calories: MetricStatsFor(cals, goal.Calories),
		Protein:  MetricStatsFor(prot, goal.Protein),
		Carbs:    MetricStatsFor(carbs, goal.Carbs),
		Fat:      MetricStatsFor(fat, goal.Fat),
		Coverage: WindowCoverage(window),
	}
}

// ---------- Period comparison ----------

// PeriodAverages aggregates one window over its logged days. Variability
// is the population standard deviation of daily calories.
type PeriodAverages struct {
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Variability float64 `json:"variability"`
}

// PeriodDelta holds percent changes current vs previous.
type PeriodDelta struct {
	Calories float64 `json:"calories_pct"`
	Protein  float64 `json:"protein_pct"`
	Carbs    float64 `json:"carbs_pct"`
	Fat      float64 `json:"fat_pct"`
}

type PeriodComparison struct {
	Current  PeriodAverages `json:"current"`
	Previous PeriodAverages `json:"previous"`
	Change   PeriodDelta    `json:"change"`
}

// ComparePeriods compares two equal-length, chronologically adjacent
// windows. Delta policy when the previous average is 0: 100 when the
// current is positive, else 0.
func ComparePeriods(current, previous []DailyTotals) PeriodComparison {
	cur := periodAverages(current)
	prev := periodAverages(previous)
	return PeriodComparison{
		Current:  cur,
		Previous: prev,
		Change: PeriodDelta{
			Calories: pctDelta(cur.Calories, prev.Calories),
			Protein:  pctDelta(cur.Protein, prev.Protein),
			Carbs:    pctDelta(cur.Carbs, prev.Carbs),
			Fat:      pctDelta(cur.Fat, prev.Fat),
		},
	}
}

func periodAverages(window []DailyTotals) PeriodAverages {
	var out PeriodAverages
	var cals []float64
	n := 0
	for _, d := range window {
		if d.MealCount == 0 {
			continue
		}
		out.Calories += d.Calories
		out.Protein += d.Protein
		out.Carbs += d.Carbs
		out.Fat += d.Fat
		cals = append(cals, d.Calories)
		n++
	}
	if n == 0 {
		return out
	}
	out.Calories = roundTo2(out.Calories / float64(n))
	out.Protein = roundTo2(out.Protein / float64(n))
	out.Carbs = roundTo2(out.Carbs / float64(n))
	out.Fat = roundTo2(out.Fat / float64(n))
	out.Variability = roundTo2(popStdDev(cals, meanOf(cals)))
	return out
}

func pctDelta(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return roundTo2((current - previous) / previous * 100)
}

// ---------- Fetch wrappers ----------

// RangeTrends aggregates a date range and summarizes it against the
// current goal snapshot.
func (s *TrendService) RangeTrends(ctx context.Context, userID uint, from, to time.Time) (*TrendSummary, error) {
	agg := NewAggregationService(s.db)
	totals, _, err := agg.DailyTotalsRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	goal, err := goalSnapshot(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	sum := TrendSummaryFor(OrderedTotals(totals), *goal)
	return &sum, nil
}

// CompareAdjacent compares the trailing `days` window ending today with
// the window immediately before it.
func (s *TrendService) CompareAdjacent(ctx context.Context, userID uint, days int) (*PeriodComparison, error) {
	agg := NewAggregationService(s.db)
	window, _, err := agg.TrailingTotals(ctx, userID, days*2)
	if err != nil {
		return nil, err
	}
	cmp := ComparePeriods(window[len(window)-days:], window[:len(window)-days])
	return &cmp, nil
}

// ---------- internals ----------

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func popStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo2(v float64) float64 { return math.Round(v*100) / 100 }
