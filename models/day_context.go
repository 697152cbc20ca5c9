package models

import (
	"time"

	"gorm.io/gorm"
)

// DayContext tags a calendar day with a situational label the user (or a
// connected integration) attached, e.g. "training" or "travel". Date is
// truncated to local midnight on write, one row per (user, date, tag).
type DayContext struct {
	gorm.Model
	UserID uint      `gorm:"index;not null"`
	Date   time.Time `gorm:"index;not null"`
	Tag    string    `gorm:"size:32;not null"`
}
