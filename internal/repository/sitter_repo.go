package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hapipet/internal/db"
)

type SitterRepository interface {
	GetProfile(ctx context.Context, userID string) (*db.SitterProfile, error)
	UpdateProfile(ctx context.Context, p *db.SitterProfile) error
	Search(ctx context.Context, query string) ([]db.SitterProfile, error)
}

type sitterRepository struct {
	db *sql.DB
}

func NewSitterRepository(db *sql.DB) SitterRepository {
	return &sitterRepository{db: db}
}

const sitterSelect = `
	SELECT p.user_id, u.full_name, u.avatar_url, u.address, p.description, p.hourly_rate, p.daily_rate,
	       p.availability, p.rating, p.latitude, p.longitude, p.updated_at
	FROM dogsitter_profiles p
	JOIN users u ON u.id = p.user_id`

func (r *sitterRepository) GetProfile(ctx context.Context, userID string) (*db.SitterProfile, error) {
	row := r.db.QueryRowContext(ctx, sitterSelect+` WHERE p.user_id = $1`, userID)
	p, err := scanSitter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *sitterRepository) UpdateProfile(ctx context.Context, p *db.SitterProfile) error {
	weekly, err := json.Marshal(p.Availability)
	if err != nil {
		return fmt.Errorf("error encoding availability: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE dogsitter_profiles
		SET description = $2, hourly_rate = $3, daily_rate = $4, availability = $5,
		    latitude = $6, longitude = $7, updated_at = NOW()
		WHERE user_id = $1`,
		p.UserID, p.Description, p.HourlyRate, p.DailyRate, weekly, p.Latitude, p.Longitude,
	)
	if err != nil {
		return fmt.Errorf("error updating dogsitter profile %s: %w", p.UserID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search filters on name and description (case-insensitive literal substring), best rated first.
func (r *sitterRepository) Search(ctx context.Context, query string) ([]db.SitterProfile, error) {
	rows, err := r.db.QueryContext(ctx, sitterSelect+`
		WHERE $1 = '' OR strpos(lower(u.full_name), lower($1)) > 0 OR strpos(lower(p.description), lower($1)) > 0
		ORDER BY p.rating DESC, u.full_name`, query)
	if err != nil {
		return nil, fmt.Errorf("error searching dogsitters: %w", err)
	}
	defer rows.Close()

	var out []db.SitterProfile
	for rows.Next() {
		p, err := scanSitter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanSitter(row scanner) (*db.SitterProfile, error) {
	var (
		p        db.SitterProfile
		weekly   []byte
		lat, lon sql.NullFloat64
	)
	err := row.Scan(&p.UserID, &p.FullName, &p.AvatarURL, &p.Address, &p.Description, &p.HourlyRate, &p.DailyRate,
		&weekly, &p.Rating, &lat, &lon, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning dogsitter profile: %w", err)
	}
	if len(weekly) > 0 {
		if err := json.Unmarshal(weekly, &p.Availability); err != nil {
			return nil, fmt.Errorf("error decoding availability of %s: %w", p.UserID, err)
		}
	}
	if lat.Valid && lon.Valid {
		p.Latitude, p.Longitude = &lat.Float64, &lon.Float64
	}
	return &p, nil
}
