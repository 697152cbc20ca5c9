package services

import (
	"context"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/models"
	"github.com/DrvDispatch/Foodly-sub000/utils"

	"gorm.io/gorm"
)

type ContextService struct{ db *gorm.DB }

func NewContextService(db *gorm.DB) *ContextService { return &ContextService{db: db} }

// TagDay attaches a context tag ("training", "travel", …) to a calendar
// day. Upsert by (user_id, date, tag).
func (s *ContextService) TagDay(ctx context.Context, userID uint, date time.Time, tag string) error {
	loc, _, err := userLocation(ctx, s.db, userID)
	if err != nil {
		return err
	}
	start := utils.DayStart(date, loc)

	row := models.DayContext{UserID: userID, Date: start, Tag: tag}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND tag = ?", userID, start, tag).
		FirstOrCreate(&row).Error
}

// TagsForRange returns the user's day tags keyed by canonical day key.
func (s *ContextService) TagsForRange(ctx context.Context, userID uint, from, to time.Time) (map[string][]string, error) {
	loc, _, err := userLocation(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	start := utils.DayStart(from, loc)
	end := utils.DayStart(to, loc).AddDate(0, 0, 1)

	var rows []models.DayContext
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := map[string][]string{}
	for _, r := range rows {
		key := utils.DayKey(r.Date, loc)
		out[key] = append(out[key], r.Tag)
	}
	return out, nil
}
