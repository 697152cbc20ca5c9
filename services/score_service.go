package services

import (
	"context"
	"math"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/models"
	"github.com/DrvDispatch/Foodly-sub000/utils"

	"gorm.io/gorm"
)

// DayStatus buckets a day's adherence.
type DayStatus string

const (
	StatusOnTrack   DayStatus = "on_track"
	StatusOffTarget DayStatus = "off_target"
	StatusFarOff    DayStatus = "far_off"
	StatusNoData    DayStatus = "no_data"
)

// DayScore is the 0–100 weighted adherence score for one day. Derived on
// every query, never persisted.
type DayScore struct {
	GoalScore int       `json:"goal_score"`
	Status    DayStatus `json:"status"`
}

type ScoreService struct{ db *gorm.DB }

func NewScoreService(db *gorm.DB) *ScoreService { return &ScoreService{db: db} }

// ScoreDay converts one day's totals and targets into a DayScore.
//
// Per macro: deviation = |actual − target| / target, score =
// max(0, 100 − deviation*200) — a 50% deviation zeroes the macro. A zero
// target contributes 0 to the weighted sum rather than dividing by zero.
// Weights: calories 0.4, protein 0.3, carbs 0.15, fat 0.15.
func ScoreDay(d DailyTotals, goal models.DailyGoal) DayScore {
	if d.MealCount == 0 {
		return DayScore{GoalScore: 0, Status: StatusNoData}
	}

	calScore := macroScore(d.Calories, goal.Calories)
	proteinScore := macroScore(d.Protein, goal.Protein)
	carbsScore := macroScore(d.Carbs, goal.Carbs)
	fatScore := macroScore(d.Fat, goal.Fat)

	score := int(math.Round(calScore*0.4 + proteinScore*0.3 + carbsScore*0.15 + fatScore*0.15))

	var status DayStatus
	switch {
	case score >= 70:
		status = StatusOnTrack
	case score >= 40:
		status = StatusOffTarget
	default:
		status = StatusFarOff
	}
	return DayScore{GoalScore: score, Status: status}
}

func macroScore(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	deviation := math.Abs(actual-target) / target
	return math.Max(0, 100-deviation*200)
}

// ScoreDate fetches one day's totals and the current goal snapshot and
// scores them.
func (s *ScoreService) ScoreDate(ctx context.Context, userID uint, date time.Time) (DayScore, error) {
	agg := NewAggregationService(s.db)
	totals, loc, err := agg.DailyTotalsRange(ctx, userID, date, date)
	if err != nil {
		return DayScore{}, err
	}
	goal, err := goalSnapshot(ctx, s.db, userID)
	if err != nil {
		return DayScore{}, err
	}
	return ScoreDay(totals[utils.DayKey(date, loc)], *goal), nil
}
