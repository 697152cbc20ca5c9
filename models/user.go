package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email       string `gorm:"uniqueIndex;not null"`
	FullName    string
	Timezone    string // IANA name, e.g. "Europe/Berlin"; empty means UTC
	FitnessGoal string // "muscle_gain"|"strength"|"endurance"|"weight_loss"|""
}
