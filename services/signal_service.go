package services

import (
	"context"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/models"
	"github.com/DrvDispatch/Foodly-sub000/utils"

	"gorm.io/gorm"
)

// SignalService assembles detector inputs from the stores and runs the
// pure detectors in utils. The detectors themselves never touch the DB.
type SignalService struct{ db *gorm.DB }

func NewSignalService(db *gorm.DB) *SignalService { return &SignalService{db: db} }

func (s *SignalService) signalInputs(ctx context.Context, userID uint) (models.DailyGoal, utils.SignalContext, utils.DayState, error) {
	loc, fitnessGoal, err := userLocation(ctx, s.db, userID)
	if err != nil {
		return models.DailyGoal{}, utils.SignalContext{}, utils.DayState{}, err
	}
	goal, err := goalSnapshot(ctx, s.db, userID)
	if err != nil {
		return models.DailyGoal{}, utils.SignalContext{}, utils.DayState{}, err
	}

	now := time.Now().In(loc)
	agg := NewAggregationService(s.db)
	totals, _, err := agg.DailyTotalsRange(ctx, userID, now, now)
	if err != nil {
		return models.DailyGoal{}, utils.SignalContext{}, utils.DayState{}, err
	}
	d := totals[utils.DayKey(now, loc)]

	sctx := utils.SignalContext{Hour: now.Hour(), FitnessGoal: fitnessGoal}
	day := utils.DayState{
		Calories:  d.Calories,
		Protein:   d.Protein,
		Carbs:     d.Carbs,
		Fat:       d.Fat,
		MealCount: d.MealCount,
	}
	return *goal, sctx, day, nil
}

// MealSignal runs the meal detector against one just-logged meal.
func (s *SignalService) MealSignal(ctx context.Context, userID uint, meal models.Meal) (*utils.Signal, error) {
	goal, sctx, _, err := s.signalInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	e := EntryFromMeal(meal)
	return utils.DetectMealSignal(goal, sctx, utils.MealTotals{
		Calories: e.Calories,
		Protein:  e.Protein,
		Carbs:    e.Carbs,
		Fat:      e.Fat,
	}), nil
}

// DailySignal runs the daily detector for the day so far.
func (s *SignalService) DailySignal(ctx context.Context, userID uint) (*utils.Signal, error) {
	goal, sctx, day, err := s.signalInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return utils.DetectDailySignal(goal, sctx, day), nil
}

// WhatNextSignal runs the what's-next detector, feeding it the current
// daily signal so it stays quiet once the day's goal is already settled.
func (s *SignalService) WhatNextSignal(ctx context.Context, userID uint) (*utils.Signal, error) {
	goal, sctx, day, err := s.signalInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	prior := utils.DetectDailySignal(goal, sctx, day)
	return utils.DetectWhatNextSignal(goal, sctx, day, prior), nil
}
