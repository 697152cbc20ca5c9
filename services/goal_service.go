package services

import (
	"context"
	"errors"

	"github.com/DrvDispatch/Foodly-sub000/models"

	"gorm.io/gorm"
)

type GoalService struct{ db *gorm.DB }

func NewGoalService(db *gorm.DB) *GoalService { return &GoalService{db: db} }

// CurrentGoal returns the latest target snapshot; a user without one gets
// a zero goal (every engine treats zero targets as "contributes nothing").
func (s *GoalService) CurrentGoal(ctx context.Context, userID uint) (*models.DailyGoal, error) {
	return goalSnapshot(ctx, s.db, userID)
}

func (s *GoalService) UpsertGoal(ctx context.Context, userID uint, calories, protein, carbs, fat float64) error {
	var goal models.DailyGoal
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.DailyGoal{
			UserID:   userID,
			Calories: calories,
			Protein:  protein,
			Carbs:    carbs,
			Fat:      fat,
		}
		return s.db.WithContext(ctx).Create(&goal).Error
	}
	if err != nil {
		return err
	}

	goal.Calories = calories
	goal.Protein = protein
	goal.Carbs = carbs
	goal.Fat = fat

	return s.db.WithContext(ctx).Save(&goal).Error
}

func goalSnapshot(ctx context.Context, db *gorm.DB, userID uint) (*models.DailyGoal, error) {
	var g models.DailyGoal
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.DailyGoal{}, nil
		}
		return nil, err
	}
	return &g, nil
}
