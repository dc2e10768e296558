package entities

import "hapipet/internal/db"

// DefaultSearchRadiusKm applies when a search has a centre but no radius.
const DefaultSearchRadiusKm = 5.0

type SitterSearchParams struct {
	Query     string
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
}

func (p SitterSearchParams) HasCentre() bool {
	return p.Latitude != nil && p.Longitude != nil
}

type SitterSearchResult struct {
	db.SitterProfile
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type SitterProfileResponse struct {
	db.SitterProfile
	Reviews []db.Review `json:"reviews"`
}

// SitterProfileRequest carries availability as a raw string-keyed map so weekday names
// can be reported back when they are not recognised.
type SitterProfileRequest struct {
	Description  *string             `json:"description"`
	HourlyRate   *float64            `json:"hourly_rate"`
	DailyRate    *float64            `json:"daily_rate"`
	Availability map[string][]string `json:"availability"`
	Latitude     *float64            `json:"latitude"`
	Longitude    *float64            `json:"longitude"`
}

type SitterProfileUpdateResponse struct {
	Profile         db.SitterProfile `json:"profile"`
	IgnoredWeekdays []string         `json:"ignored_weekdays,omitempty"`
}
