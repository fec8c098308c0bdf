package models

import "time"

// Meal запись о приёме пищи.
type Meal struct {
	ID           int64     `json:"id"`
	PetID        string    `json:"pet_id"`
	EatenAt      time.Time `json:"eaten_at"`
	Calories     int       `json:"calories"`
	PortionGrams int       `json:"portion_grams"`
}

// DummyMeal входные данные для записи приёма пищи.
type DummyMeal struct {
	EatenAt      time.Time `json:"eaten_at" validate:"required"`
	Calories     int       `json:"calories" validate:"gte=0,lte=20000"`
	PortionGrams int       `json:"portion_grams" validate:"gte=0,lte=10000"`
}

// DailySummary итог по калориям за день.
type DailySummary struct {
	PetID           string  `json:"pet_id"`
	Day             string  `json:"day"`
	TotalCalories   int     `json:"total_calories"`
	TargetCalories  int     `json:"target_calories"`
	PercentOfTarget float64 `json:"percent_of_target"`
	Meals           int     `json:"meals"`
}

// WeightEntry запись о взвешивании.
type WeightEntry struct {
	ID         int64     `json:"id"`
	PetID      string    `json:"pet_id"`
	MeasuredAt time.Time `json:"measured_at"`
	WeightKg   float64   `json:"weight_kg"`
}

// DummyWeight входные данные для записи веса.
type DummyWeight struct {
	MeasuredAt time.Time `json:"measured_at" validate:"required"`
	WeightKg   float64   `json:"weight_kg" validate:"gt=0,lte=150"`
}
