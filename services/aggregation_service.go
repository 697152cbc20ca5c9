package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/models"
	"github.com/DrvDispatch/Foodly-sub000/utils"

	"gorm.io/gorm"
)

// NutritionEntry is one meal's summed macro totals with its UTC timestamp.
type NutritionEntry struct {
	AteAt    time.Time `json:"ate_at"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fat      float64   `json:"fat"`
	Fiber    float64   `json:"fiber,omitempty"`
}

// DailyTotals is one calendar day's summed intake. Days with MealCount 0
// always carry zero macro sums.
type DailyTotals struct {
	DayKey    string  `json:"date"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	MealCount int     `json:"meal_count"`
}

type AggregationService struct{ db *gorm.DB }

func NewAggregationService(db *gorm.DB) *AggregationService { return &AggregationService{db: db} }

// EntryFromMeal collapses a meal's items into a single entry.
func EntryFromMeal(m models.Meal) NutritionEntry {
	e := NutritionEntry{AteAt: m.AteAt.UTC()}
	for _, it := range m.Items {
		e.Calories += it.Calories
		e.Protein += it.Protein
		e.Carbs += it.Carbs
		e.Fat += it.Fat
		e.Fiber += it.Fiber
	}
	return e
}

// BuildDailyTotals groups entries into per-day totals in the given
// location, keyed by the canonical day key. Every day in [from, to] gets a
// row even when nothing was logged, so downstream statistics always see a
// gap-free series. Pure; assumes a pre-validated range.
func BuildDailyTotals(entries []NutritionEntry, loc *time.Location, from, to time.Time) map[string]DailyTotals {
	totals := map[string]DailyTotals{}
	for d := utils.DayStart(from, loc); !d.After(utils.DayStart(to, loc)); d = d.AddDate(0, 0, 1) {
		key := utils.DayKey(d, loc)
		totals[key] = DailyTotals{DayKey: key}
	}
	for _, e := range entries {
		key := utils.DayKey(e.AteAt, loc)
		day, ok := totals[key]
		if !ok {
			continue // outside the requested range
		}
		day.Calories += e.Calories
		day.Protein += e.Protein
		day.Carbs += e.Carbs
		day.Fat += e.Fat
		day.MealCount++
		totals[key] = day
	}
	return totals
}

// OrderedTotals flattens a totals map into a chronological slice. Day keys
// sort lexicographically in date order.
func OrderedTotals(totals map[string]DailyTotals) []DailyTotals {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]DailyTotals, 0, len(keys))
	for _, k := range keys {
		out = append(out, totals[k])
	}
	return out
}

// DailyTotalsRange fetches the user's meals for [from, to] (calendar days
// in the user's timezone) and aggregates them. The range is validated
// here; the pure builders above never re-check.
func (s *AggregationService) DailyTotalsRange(
	ctx context.Context, userID uint, from, to time.Time,
) (map[string]DailyTotals, *time.Location, error) {

	if from.After(to) {
		return nil, nil, errors.New("invalid range: from is after to")
	}
	loc, _, err := userLocation(ctx, s.db, userID)
	if err != nil {
		return nil, nil, err
	}

	start := utils.DayStart(from, loc)
	end := utils.DayStart(to, loc).AddDate(0, 0, 1)

	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, start, end).
		Order("ate_at ASC").
		Find(&meals).Error; err != nil {
		return nil, nil, err
	}

	entries := make([]NutritionEntry, 0, len(meals))
	for _, m := range meals {
		entries = append(entries, EntryFromMeal(m))
	}
	return BuildDailyTotals(entries, loc, from, to), loc, nil
}

// TrailingTotals returns the last n calendar days ending today (user's
// timezone), oldest first.
func (s *AggregationService) TrailingTotals(ctx context.Context, userID uint, n int) ([]DailyTotals, *time.Location, error) {
	if n <= 0 {
		return nil, nil, errors.New("window must be positive")
	}
	loc, _, err := userLocation(ctx, s.db, userID)
	if err != nil {
		return nil, nil, err
	}
	today := utils.DayStart(time.Now(), loc)
	totals, _, err := s.DailyTotalsRange(ctx, userID, today.AddDate(0, 0, -(n-1)), today)
	if err != nil {
		return nil, nil, err
	}
	return OrderedTotals(totals), loc, nil
}
