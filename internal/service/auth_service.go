package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hapipet/internal/auth"
	"hapipet/internal/db"
	"hapipet/internal/entities"
	apperr "hapipet/internal/errors"
	"hapipet/internal/repository"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, req entities.RegisterRequest) (*entities.LoginResponse, error)
	Login(ctx context.Context, email, password string) (*entities.LoginResponse, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *auth.TokenManager
	log    *zap.Logger
}

func NewAuthService(repo repository.UserRepository, tokens *auth.TokenManager, log *zap.Logger) AuthService {
	return &authService{repo: repo, tokens: tokens, log: log}
}

func (s *authService) Register(ctx context.Context, req entities.RegisterRequest) (*entities.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.ErrBadRequest("invalid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.ErrBadRequest("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperr.ErrBadRequest("full_name is required")
	}
	if !req.UserType.Valid() {
		return nil, apperr.ErrBadRequest("user_type must be client or dogsitter")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &db.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		UserType:     req.UserType,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrConflict("an account already exists for this email")
		}
		return nil, err
	}
	s.log.Info("account created", zap.String("user_id", u.ID), zap.String("user_type", string(u.UserType)))
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*entities.LoginResponse, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthorized("invalid credentials")
	}
	return s.session(u)
}

func (s *authService) session(u *db.User) (*entities.LoginResponse, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &entities.LoginResponse{Token: token, User: *u}, nil
}
