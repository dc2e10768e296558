package entities

import "hapipet/internal/availability"

type AvailabilityResponse struct {
	SitterID string              `json:"dogsitter_id"`
	Date     string              `json:"date"`
	Slots    []availability.Slot `json:"slots"`
}

type CalendarResponse struct {
	SitterID string   `json:"dogsitter_id"`
	Timezone string   `json:"timezone"`
	Dates    []string `json:"dates"`
}
