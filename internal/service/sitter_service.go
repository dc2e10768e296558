package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hapipet/internal/availability"
	"hapipet/internal/db"
	"hapipet/internal/entities"
	apperr "hapipet/internal/errors"
	"hapipet/internal/repository"
	"hapipet/internal/utils"
)

type SitterService struct {
	sitters  repository.SitterRepository
	bookings repository.BookingRepository
	reviews  repository.ReviewRepository
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewSitterService(sitters repository.SitterRepository, bookings repository.BookingRepository,
	reviews repository.ReviewRepository, loc *time.Location, log *zap.Logger) *SitterService {
	return &SitterService{
		sitters:  sitters,
		bookings: bookings,
		reviews:  reviews,
		loc:      loc,
		now:      time.Now,
		log:      log,
	}
}

// Search filters sitters by text and, when a centre is given, by distance. Results with a
// centre are nearest first and exclude sitters without a location; otherwise best rated first.
func (s *SitterService) Search(ctx context.Context, p entities.SitterSearchParams) ([]entities.SitterSearchResult, error) {
	profiles, err := s.sitters.Search(ctx, strings.TrimSpace(p.Query))
	if err != nil {
		return nil, err
	}

	results := make([]entities.SitterSearchResult, 0, len(profiles))
	if !p.HasCentre() {
		for _, prof := range profiles {
			results = append(results, entities.SitterSearchResult{SitterProfile: prof})
		}
		return results, nil
	}

	if !utils.ValidCoordinates(*p.Latitude, *p.Longitude) {
		return nil, apperr.ErrBadRequest("coordinates out of range")
	}
	radius := p.RadiusKm
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, apperr.ErrBadRequest("radius_km must be a finite number")
	}
	if radius <= 0 {
		radius = entities.DefaultSearchRadiusKm
	}
	for _, prof := range profiles {
		if !prof.HasLocation() {
			continue
		}
		d := utils.DistanceKm(*p.Latitude, *p.Longitude, *prof.Latitude, *prof.Longitude)
		if d > radius {
			continue
		}
		d = math.Round(d*100) / 100
		results = append(results, entities.SitterSearchResult{SitterProfile: prof, DistanceKm: &d})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].DistanceKm < *results[j].DistanceKm
	})
	return results, nil
}

func (s *SitterService) Profile(ctx context.Context, sitterID string) (*entities.SitterProfileResponse, error) {
	prof, err := s.getProfile(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListForTarget(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	return &entities.SitterProfileResponse{SitterProfile: *prof, Reviews: reviews}, nil
}

// Calendar lists the dates a client can pick from, starting today in the service time zone.
func (s *SitterService) Calendar(ctx context.Context, sitterID string) (*entities.CalendarResponse, error) {
	if _, err := s.getProfile(ctx, sitterID); err != nil {
		return nil, err
	}
	days := availability.NextDays(s.now().In(s.loc), availability.DaysAhead)
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Format(time.DateOnly)
	}
	return &entities.CalendarResponse{SitterID: sitterID, Timezone: s.loc.String(), Dates: dates}, nil
}

// Availability resolves the sitter's weekly template for one date against their confirmed bookings.
func (s *SitterService) Availability(ctx context.Context, sitterID, date string) (*entities.AvailabilityResponse, error) {
	day, err := time.ParseInLocation(time.DateOnly, date, s.loc)
	if err != nil {
		return nil, apperr.ErrBadRequest("date must be YYYY-MM-DD")
	}
	prof, err := s.getProfile(ctx, sitterID)
	if err != nil {
		return nil, err
	}

	booked, err := s.bookings.ConfirmedIntervals(ctx, sitterID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	slots, err := availability.Resolve(prof.Availability, day, booked)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidRange) {
			s.log.Warn("stored availability has a malformed range", zap.String("dogsitter_id", sitterID), zap.Error(err))
			return nil, apperr.Wrap(http.StatusUnprocessableEntity, err.Error(), err)
		}
		return nil, err
	}
	return &entities.AvailabilityResponse{SitterID: sitterID, Date: date, Slots: slots}, nil
}

// UpdateProfile applies the non-nil fields of req. Availability replaces the whole template;
// keys that are not weekdays are dropped and reported back.
func (s *SitterService) UpdateProfile(ctx context.Context, sitterID string, req entities.SitterProfileRequest) (*entities.SitterProfileUpdateResponse, error) {
	prof, err := s.getProfile(ctx, sitterID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		prof.Description = strings.TrimSpace(*req.Description)
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return nil, apperr.ErrBadRequest("hourly_rate cannot be negative")
		}
		prof.HourlyRate = utils.RoundCents(*req.HourlyRate)
	}
	if req.DailyRate != nil {
		if *req.DailyRate < 0 {
			return nil, apperr.ErrBadRequest("daily_rate cannot be negative")
		}
		prof.DailyRate = utils.RoundCents(*req.DailyRate)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, apperr.ErrBadRequest("latitude and longitude go together")
	}
	if req.Latitude != nil {
		if !utils.ValidCoordinates(*req.Latitude, *req.Longitude) {
			return nil, apperr.ErrBadRequest("coordinates out of range")
		}
		prof.Latitude, prof.Longitude = req.Latitude, req.Longitude
	}

	var ignored []string
	if req.Availability != nil {
		weekly, unknown := availability.FromNamed(req.Availability)
		if len(unknown) > 0 {
			s.log.Warn("ignoring unknown weekday keys", zap.String("dogsitter_id", sitterID), zap.Strings("keys", unknown))
		}
		if err := weekly.Validate(); err != nil {
			return nil, apperr.Wrap(http.StatusUnprocessableEntity, err.Error(), err)
		}
		prof.Availability = weekly
		ignored = unknown
	}

	if err := s.sitters.UpdateProfile(ctx, prof); err != nil {
		return nil, err
	}
	prof.UpdatedAt = s.now()
	return &entities.SitterProfileUpdateResponse{Profile: *prof, IgnoredWeekdays: ignored}, nil
}

func (s *SitterService) getProfile(ctx context.Context, sitterID string) (*db.SitterProfile, error) {
	if _, err := uuid.Parse(sitterID); err != nil {
		return nil, apperr.ErrNotFound("dogsitter not found")
	}
	prof, err := s.sitters.GetProfile(ctx, sitterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound("dogsitter not found")
		}
		return nil, err
	}
	return prof, nil
}
