package entities

import "hapipet/internal/db"

type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	UserType db.UserType `json:"user_type"`
	Phone    string      `json:"phone"`
	Address  string      `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  db.User `json:"user"`
}
