package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hapipet/internal/db"
)

type ReviewRepository interface {
	// Create stores the review and recomputes the target sitter's rating as the mean of
	// their reviews. A second review of the same booking returns ErrDuplicate.
	Create(ctx context.Context, rv *db.Review) error
	ListForTarget(ctx context.Context, targetID string) ([]db.Review, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *db.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reviews (id, booking_id, author_id, target_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		rv.ID, rv.BookingID, rv.AuthorID, rv.TargetID, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting review: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE dogsitter_profiles
		SET rating = (SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE target_id = $1)
		WHERE user_id = $1`, rv.TargetID)
	if err != nil {
		return fmt.Errorf("error updating rating of %s: %w", rv.TargetID, err)
	}
	return tx.Commit()
}

func (r *reviewRepository) ListForTarget(ctx context.Context, targetID string) ([]db.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, author_id, target_id, rating, comment, created_at
		FROM reviews WHERE target_id = $1
		ORDER BY created_at DESC`, targetID)
	if err != nil {
		return nil, fmt.Errorf("error listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := []db.Review{}
	for rows.Next() {
		var rv db.Review
		if err := rows.Scan(&rv.ID, &rv.BookingID, &rv.AuthorID, &rv.TargetID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
