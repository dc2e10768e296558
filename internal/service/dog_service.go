package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"hapipet/internal/db"
	"hapipet/internal/entities"
	apperr "hapipet/internal/errors"
	"hapipet/internal/repository"
)

type DogService struct {
	dogs repository.DogRepository
}

func NewDogService(dogs repository.DogRepository) *DogService {
	return &DogService{dogs: dogs}
}

func (s *DogService) Create(ctx context.Context, ownerID string, req entities.DogRequest) (*db.Dog, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.ErrBadRequest("name is required")
	}
	if req.Age < 0 || req.Age > 40 {
		return nil, apperr.ErrBadRequest("age out of range")
	}
	d := &db.Dog{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		Breed:        strings.TrimSpace(req.Breed),
		Age:          req.Age,
		SpecialNeeds: strings.TrimSpace(req.SpecialNeeds),
		PhotoURL:     strings.TrimSpace(req.PhotoURL),
	}
	if err := s.dogs.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DogService) List(ctx context.Context, ownerID string) ([]db.Dog, error) {
	return s.dogs.ListByOwner(ctx, ownerID)
}
