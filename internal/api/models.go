package api

import (
	"context"

	"hapipet/internal/db"
	"hapipet/internal/entities"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Services used by the handlers.

type AuthService interface {
	Register(ctx context.Context, req entities.RegisterRequest) (*entities.LoginResponse, error)
	Login(ctx context.Context, email, password string) (*entities.LoginResponse, error)
}

type SitterService interface {
	Search(ctx context.Context, p entities.SitterSearchParams) ([]entities.SitterSearchResult, error)
	Profile(ctx context.Context, sitterID string) (*entities.SitterProfileResponse, error)
	Calendar(ctx context.Context, sitterID string) (*entities.CalendarResponse, error)
	Availability(ctx context.Context, sitterID, date string) (*entities.AvailabilityResponse, error)
	UpdateProfile(ctx context.Context, sitterID string, req entities.SitterProfileRequest) (*entities.SitterProfileUpdateResponse, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, clientID string, req entities.BookingRequest) (*db.Booking, error)
	GetBooking(ctx context.Context, userID, id string) (*db.Booking, error)
	ListBookings(ctx context.Context, userID string) (*entities.BookingsList, error)
	ConfirmBooking(ctx context.Context, sitterID, id string) (*db.Booking, error)
	CompleteBooking(ctx context.Context, sitterID, id string) (*db.Booking, error)
	CancelBooking(ctx context.Context, userID, id string) (*db.Booking, error)
	CreatePayment(ctx context.Context, clientID, id string) (*entities.PaymentResponse, error)
	ReviewBooking(ctx context.Context, clientID, id string, req entities.ReviewRequest) (*db.Review, error)
}

type PaymentEvents interface {
	PaymentSucceeded(ctx context.Context, intentID, bookingID string) error
	PaymentRefunded(ctx context.Context, intentID string) error
}

type DogService interface {
	Create(ctx context.Context, ownerID string, req entities.DogRequest) (*db.Dog, error)
	List(ctx context.Context, ownerID string) ([]db.Dog, error)
}

type MessageService interface {
	Send(ctx context.Context, senderID string, req entities.MessageRequest) (*db.Message, error)
	Conversation(ctx context.Context, userID, otherID string) ([]db.Message, error)
	Conversations(ctx context.Context, userID string) ([]entities.ConversationSummary, error)
	MarkRead(ctx context.Context, userID, id string) (*db.Message, error)
}
