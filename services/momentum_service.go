package services

import (
	"context"
	"fmt"
	"math"

	"github.com/DrvDispatch/Foodly-sub000/models"

	"gorm.io/gorm"
)

type MomentumLevel string

const (
	MomentumStrong   MomentumLevel = "strong"
	MomentumBuilding MomentumLevel = "building"
	MomentumSteady   MomentumLevel = "steady"
	MomentumStarting MomentumLevel = "starting"
)

// MomentumFactors are the five behavioral inputs, each clamped to [0,1]
// except Improvement, which spans [−1,1] and is renormalized before
// weighting.
type MomentumFactors struct {
	LoggingConsistency float64 `json:"logging_consistency"`
	ProteinAdherence   float64 `json:"protein_adherence"`
	CalorieStability   float64 `json:"calorie_stability"`
	RecentActivity     float64 `json:"recent_activity"`
	Improvement        float64 `json:"improvement"`
}

type MomentumResult struct {
	Score        int             `json:"score"` // 0–100
	Level        MomentumLevel   `json:"level"`
	Trend        TrendDirection  `json:"trend"`
	Streak       int             `json:"streak"`
	WeeklyChange int             `json:"weekly_change"` // days logged, last 7 vs previous 7
	Trait        string          `json:"trait"`
	Win          string          `json:"win"`
	Factors      MomentumFactors `json:"factors"`
}

type MomentumService struct{ db *gorm.DB }

func NewMomentumService(db *gorm.DB) *MomentumService { return &MomentumService{db: db} }

// streakLookbackDays caps how far back the streak walk goes.
const streakLookbackDays = 30

// ComputeMomentum blends five weighted factors into a composite 0–100
// score. days is the trailing window ordered oldest first, the last
// element being today; pass up to 30 days so the streak walk has room.
//
// Weights: logging 35, protein 25, stability 15, recency 15, improvement
// 10 (after renormalizing improvement from [−1,1] to [0,1]).
func ComputeMomentum(days []DailyTotals, goal models.DailyGoal) MomentumResult {
	last7 := tail(days, 7)
	last3 := tail(days, 3)
	prev7 := slice(days, len(days)-14, len(days)-7)

	lastLogged := loggedDays(last7)
	prevLogged := loggedDays(prev7)

	f := MomentumFactors{
		LoggingConsistency: float64(lastLogged) / 7,
		ProteinAdherence:   proteinAdherence(last7, goal.Protein),
		CalorieStability:   calorieStability(last7),
		RecentActivity:     float64(loggedDays(last3)) / 3,
		Improvement:        float64(lastLogged-prevLogged) / 7,
	}

	score := int(math.Round(
		f.LoggingConsistency*35 +
			f.ProteinAdherence*25 +
			f.CalorieStability*15 +
			f.RecentActivity*15 +
			((f.Improvement+1)/2)*10,
	))

	var level MomentumLevel
	switch {
	case score >= 70:
		level = MomentumStrong
	case score >= 50:
		level = MomentumBuilding
	case score >= 25:
		level = MomentumSteady
	default:
		level = MomentumStarting
	}

	trend := TrendStable
	if f.Improvement > 0.1 {
		trend = TrendUp
	} else if f.Improvement < -0.1 {
		trend = TrendDown
	}

	res := MomentumResult{
		Score:        score,
		Level:        level,
		Trend:        trend,
		Streak:       trailingStreak(days, streakLookbackDays),
		WeeklyChange: lastLogged - prevLogged,
		Factors:      f,
	}
	res.Trait, res.Win = pickTrait(days, goal, f)
	return res
}

// proteinAdherence averages min(1, dayProtein/target) over days with any
// logged protein; 0 when the target is unset or nothing was logged.
func proteinAdherence(window []DailyTotals, target float64) float64 {
	if target <= 0 {
		return 0
	}
	sum, n := 0.0, 0
	for _, d := range window {
		if d.Protein <= 0 {
			continue
		}
		sum += math.Min(1, d.Protein/target)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// calorieStability is max(0, 1 − stdDev/mean) over days with logged
// calories; at least 3 such days are required.
func calorieStability(window []DailyTotals) float64 {
	var cals []float64
	for _, d := range window {
		if d.Calories > 0 {
			cals = append(cals, d.Calories)
		}
	}
	if len(cals) < 3 {
		return 0
	}
	mean := meanOf(cals)
	if mean == 0 {
		return 0
	}
	return math.Max(0, 1-popStdDev(cals, mean)/mean)
}

// trailingStreak walks backward from the last day through contiguous days
// with at least one meal, stopping at the first gap. A dataless last day
// yields 0 — the walk simply never starts.
func trailingStreak(days []DailyTotals, maxLookback int) int {
	streak := 0
	for i := len(days) - 1; i >= 0 && streak < maxLookback; i-- {
		if days[i].MealCount < 1 {
			break
		}
		streak++
	}
	return streak
}

// ---------- Trait / win decision tables ----------

// Ordered, first match wins. Evaluated against today's totals vs targets;
// the no-data branch falls back to consistency-based text.
func pickTrait(days []DailyTotals, goal models.DailyGoal, f MomentumFactors) (trait, win string) {
	var today DailyTotals
	if len(days) > 0 {
		today = days[len(days)-1]
	}

	if today.MealCount == 0 {
		if f.LoggingConsistency >= 0.5 {
			return "Consistent Logging", fmt.Sprintf("Logged %d of the last 7 days", int(math.Round(f.LoggingConsistency*7)))
		}
		return "Getting Started", "Log a meal today to start building momentum"
	}

	rules := []struct {
		when  func() bool
		trait string
		win   func() string
	}{
		{
			when:  func() bool { return goal.Protein > 0 && today.Protein >= 0.8*goal.Protein },
			trait: "Protein Consistency",
			win:   func() string { return fmt.Sprintf("Protein at %.0f%% of target today", today.Protein/goal.Protein*100) },
		},
		{
			when:  func() bool { return today.MealCount >= 3 },
			trait: "Structured Eating",
			win:   func() string { return fmt.Sprintf("%d meals logged today", today.MealCount) },
		},
		{
			when:  func() bool { return goal.Calories > 0 && math.Abs(today.Calories-goal.Calories) <= 0.1*goal.Calories },
			trait: "Caloric Awareness",
			win:   func() string { return "Calories within 10% of target today" },
		},
	}
	for _, r := range rules {
		if r.when() {
			return r.trait, r.win()
		}
	}
	return "Logging Habit", "Another day tracked"
}

// CurrentMomentum fetches the trailing 30-day window (streak lookback)
// and computes momentum from its tail.
func (s *MomentumService) CurrentMomentum(ctx context.Context, userID uint) (*MomentumResult, error) {
	agg := NewAggregationService(s.db)
	window, _, err := agg.TrailingTotals(ctx, userID, streakLookbackDays)
	if err != nil {
		return nil, err
	}
	goal, err := goalSnapshot(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	res := ComputeMomentum(window, *goal)
	return &res, nil
}

// ---------- window helpers ----------

func tail(days []DailyTotals, n int) []DailyTotals {
	if len(days) <= n {
		return days
	}
	return days[len(days)-n:]
}

func slice(days []DailyTotals, from, to int) []DailyTotals {
	if from < 0 {
		from = 0
	}
	if to < from {
		to = from
	}
	if to > len(days) {
		to = len(days)
	}
	return days[from:to]
}

func loggedDays(window []DailyTotals) int {
	n := 0
	for _, d := range window {
		if d.MealCount >= 1 {
			n++
		}
	}
	return n
}
