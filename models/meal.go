package models

import (
	"time"

	"gorm.io/gorm"
)

// One Meal (breakfast/lunch/…). AteAt is stored in UTC; day bucketing
// happens in the user's timezone at query time, never here.
type Meal struct {
	gorm.Model
	UserID uint      `gorm:"index;not null"` // FK → users.id
	Type   string    // "Breakfast"|"Lunch"|…
	AteAt  time.Time `gorm:"index;not null"`
	Items  []MealItem
}

// Each MealItem stores the nutrition snapshot captured at logging time.
// The snapshot is immutable once the meal's analysis is finalized.
type MealItem struct {
	gorm.Model
	MealID uint
	Meal   Meal

	FoodLabel string  // human label
	Quantity  float64 // e.g. 200 (grams)
	Calories  float64
	Protein   float64
	Carbs     float64
	Fat       float64
	Fiber     float64
	Sodium    float64
	Sugar     float64
}
