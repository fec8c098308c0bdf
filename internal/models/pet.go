package models

import "time"

// Pet профиль собаки.
type Pet struct {
	ID                 string     `json:"id"`
	OwnerID            string     `json:"owner_id"`
	Name               string     `json:"name"`
	Breed              string     `json:"breed,omitempty"`
	BirthDate          *time.Time `json:"birth_date,omitempty"`
	WeightKg           float64    `json:"weight_kg"`
	DailyCalorieTarget int        `json:"daily_calorie_target"`
	CreatedAt          time.Time  `json:"created_at"`
}

// DummyPet входные данные для создания питомца.
type DummyPet struct {
	Name               string  `json:"name" validate:"required,max=64"`
	Breed              string  `json:"breed" validate:"max=64"`
	BirthDate          string  `json:"birth_date"`
	WeightKg           float64 `json:"weight_kg" validate:"gte=0,lte=150"`
	DailyCalorieTarget int     `json:"daily_calorie_target" validate:"gte=0,lte=10000"`
}
