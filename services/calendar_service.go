package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/models"
	"github.com/DrvDispatch/Foodly-sub000/utils"

	"gorm.io/gorm"
)

// Day patterns a calendar query can highlight. One pattern per query.
const (
	PatternLowProtein    = "low_protein"
	PatternHighCarb      = "high_carb"
	PatternOnTrack       = "on_track"
	PatternOverTarget    = "over_target"
	PatternMissedLogging = "missed_logging"
	PatternTraining      = "training"
)

type CalendarDay struct {
	Date      string   `json:"date"`
	Score     DayScore `json:"score"`
	MealCount int      `json:"meal_count"`
	Matches   bool     `json:"matches"`
	Tags      []string `json:"tags,omitempty"`
}

type MonthOverview struct {
	Month           string        `json:"month"` // YYYY-MM
	Pattern         string        `json:"pattern"`
	Days            []CalendarDay `json:"days"`
	ActiveDays      int           `json:"active_days"`
	MissedDays      int           `json:"missed_days"`
	CurrentStreak   int           `json:"current_streak"`
	ConsistentWeeks int           `json:"consistent_weeks"`
}

type CalendarService struct{ db *gorm.DB }

func NewCalendarService(db *gorm.DB) *CalendarService { return &CalendarService{db: db} }

// monthStreakLookbackDays caps the calendar streak walk.
const monthStreakLookbackDays = 365

// ComputeMonth classifies a zero-filled month of totals. days must be
// chronological and cover every calendar day; todayKey marks "today" in
// the user's timezone (days after it are future, days before it with no
// meals are missed). tags maps day key to context tags.
func ComputeMonth(
	days []DailyTotals,
	goal models.DailyGoal,
	tags map[string][]string,
	pattern string,
	todayKey string,
	loc *time.Location,
) MonthOverview {

	out := MonthOverview{Pattern: pattern}
	if len(days) > 0 {
		out.Month = days[0].DayKey[:7]
	}

	weekActive := map[string]int{}
	var upToToday []DailyTotals

	for _, d := range days {
		day := CalendarDay{
			Date:      d.DayKey,
			Score:     ScoreDay(d, goal),
			MealCount: d.MealCount,
			Tags:      tags[d.DayKey],
			Matches:   matchesPattern(d, goal, tags[d.DayKey], pattern, todayKey),
		}
		out.Days = append(out.Days, day)

		if d.MealCount > 0 {
			out.ActiveDays++
			if t, err := utils.ParseDayKey(d.DayKey, loc); err == nil {
				weekActive[utils.DayKey(utils.MondayOf(t, loc), loc)]++
			}
		}
		if d.DayKey < todayKey && d.MealCount == 0 {
			out.MissedDays++
		}
		if d.DayKey <= todayKey {
			upToToday = append(upToToday, d)
		}
	}

	out.CurrentStreak = trailingStreak(upToToday, monthStreakLookbackDays)

	// Monday-bounded weeks with 4+ active days; a trailing partial week
	// at month end counts like any other.
	for _, n := range weekActive {
		if n >= 4 {
			out.ConsistentWeeks++
		}
	}
	return out
}

func matchesPattern(d DailyTotals, goal models.DailyGoal, dayTags []string, pattern, todayKey string) bool {
	switch pattern {
	case PatternLowProtein:
		return d.MealCount > 0 && goal.Protein > 0 && d.Protein < 0.7*goal.Protein
	case PatternHighCarb:
		return d.MealCount > 0 && goal.Carbs > 0 && d.Carbs > 1.2*goal.Carbs
	case PatternOnTrack:
		return d.MealCount > 0 && goal.Calories > 0 && math.Abs(d.Calories-goal.Calories) < 0.1*goal.Calories
	case PatternOverTarget:
		return d.MealCount > 0 && goal.Calories > 0 && d.Calories > 1.1*goal.Calories
	case PatternMissedLogging:
		return d.DayKey < todayKey && d.MealCount == 0
	case PatternTraining:
		for _, t := range dayTags {
			if t == "training" {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Month builds the overview for one calendar month in the user's
// timezone.
func (s *CalendarService) Month(ctx context.Context, userID uint, year int, month time.Month, pattern string) (*MonthOverview, error) {
	switch pattern {
	case PatternLowProtein, PatternHighCarb, PatternOnTrack, PatternOverTarget, PatternMissedLogging, PatternTraining:
	default:
		return nil, errors.New("unknown calendar pattern: " + pattern)
	}

	loc, _, err := userLocation(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	agg := NewAggregationService(s.db)
	totals, _, err := agg.DailyTotalsRange(ctx, userID, first, last)
	if err != nil {
		return nil, err
	}
	goal, err := goalSnapshot(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	ctxSvc := NewContextService(s.db)
	tags, err := ctxSvc.TagsForRange(ctx, userID, first, last)
	if err != nil {
		return nil, err
	}

	todayKey := utils.DayKey(time.Now(), loc)
	out := ComputeMonth(OrderedTotals(totals), *goal, tags, pattern, todayKey, loc)
	return &out, nil
}
