package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hapipet/internal/db"
)

type DogRepository interface {
	Create(ctx context.Context, d *db.Dog) error
	GetByID(ctx context.Context, id string) (*db.Dog, error)
	ListByOwner(ctx context.Context, ownerID string) ([]db.Dog, error)
}

type dogRepository struct {
	db *sql.DB
}

func NewDogRepository(db *sql.DB) DogRepository {
	return &dogRepository{db: db}
}

const dogColumns = `id, owner_id, name, breed, age, special_needs, photo_url, created_at`

func (r *dogRepository) Create(ctx context.Context, d *db.Dog) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO dogs (id, owner_id, name, breed, age, special_needs, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		d.ID, d.OwnerID, d.Name, d.Breed, d.Age, d.SpecialNeeds, d.PhotoURL,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting dog: %w", err)
	}
	return nil
}

func (r *dogRepository) GetByID(ctx context.Context, id string) (*db.Dog, error) {
	var d db.Dog
	err := r.db.QueryRowContext(ctx, `SELECT `+dogColumns+` FROM dogs WHERE id = $1`, id).
		Scan(&d.ID, &d.OwnerID, &d.Name, &d.Breed, &d.Age, &d.SpecialNeeds, &d.PhotoURL, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying dog %s: %w", id, err)
	}
	return &d, nil
}

func (r *dogRepository) ListByOwner(ctx context.Context, ownerID string) ([]db.Dog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+dogColumns+` FROM dogs WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing dogs: %w", err)
	}
	defer rows.Close()

	dogs := []db.Dog{}
	for rows.Next() {
		var d db.Dog
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Breed, &d.Age, &d.SpecialNeeds, &d.PhotoURL, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning dog: %w", err)
		}
		dogs = append(dogs, d)
	}
	return dogs, rows.Err()
}
