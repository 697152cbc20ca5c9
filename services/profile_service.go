package services

import (
	"context"
	"errors"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/models"
	"github.com/DrvDispatch/Foodly-sub000/utils"

	"gorm.io/gorm"
)

type ProfileService struct{ db *gorm.DB }

func NewProfileService(db *gorm.DB) *ProfileService { return &ProfileService{db: db} }

func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// userLocation resolves the user's timezone and fitness goal. Shared by
// every service that needs timezone-correct day boundaries.
func userLocation(ctx context.Context, db *gorm.DB, userID uint) (*time.Location, string, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errors.New("user not found")
		}
		return nil, "", err
	}
	loc, err := utils.LoadTimezone(user.Timezone)
	if err != nil {
		return nil, "", err
	}
	return loc, user.FitnessGoal, nil
}
