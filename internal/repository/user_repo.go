package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hapipet/internal/db"
)

type UserRepository interface {
	Create(ctx context.Context, u *db.User) error
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByID(ctx context.Context, id string) (*db.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, user_type, phone, address, avatar_url, created_at`

// Create inserts the user and, for a dogsitter, an empty profile in the same transaction.
func (r *userRepository) Create(ctx context.Context, u *db.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, user_type, phone, address, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.UserType, u.Phone, u.Address, u.AvatarURL,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting user: %w", err)
	}

	if u.UserType == db.UserTypeDogsitter {
		if _, err := tx.ExecContext(ctx, `INSERT INTO dogsitter_profiles (user_id) VALUES ($1)`, u.ID); err != nil {
			return fmt.Errorf("error creating dogsitter profile: %w", err)
		}
	}
	return tx.Commit()
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row scanner) (*db.User, error) {
	var u db.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.UserType, &u.Phone, &u.Address, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}
