package models

import (
	"gorm.io/gorm"
)

// DailyGoal holds each user's daily macro targets. The analytics engines
// treat the latest row as a point-in-time snapshot; target history is not
// tracked.
type DailyGoal struct {
	gorm.Model
	UserID   uint    `gorm:"index;not null"`
	Calories float64 // e.g. 2200 kcal
	Protein  float64 // e.g. 120 g
	Carbs    float64 // e.g. 275 g
	Fat      float64 // e.g. 70 g
}
