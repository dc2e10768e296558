package db

import (
	"time"

	"hapipet/internal/availability"
)

type UserType string

const (
	UserTypeClient    UserType = "client"
	UserTypeDogsitter UserType = "dogsitter"
)

func (t UserType) Valid() bool {
	return t == UserTypeClient || t == UserTypeDogsitter
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	UserType     UserType  `json:"user_type"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type SitterProfile struct {
	UserID       string                          `json:"user_id"`
	FullName     string                          `json:"full_name"`
	AvatarURL    string                          `json:"avatar_url,omitempty"`
	Address      string                          `json:"address,omitempty"`
	Description  string                          `json:"description"`
	HourlyRate   float64                         `json:"hourly_rate"`
	DailyRate    float64                         `json:"daily_rate"`
	Availability availability.WeeklyAvailability `json:"availability"`
	Rating       float64                         `json:"rating"`
	Latitude     *float64                        `json:"latitude,omitempty"`
	Longitude    *float64                        `json:"longitude,omitempty"`
	UpdatedAt    time.Time                       `json:"updated_at"`
}

func (p *SitterProfile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

type Dog struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Breed        string    `json:"breed,omitempty"`
	Age          int       `json:"age,omitempty"`
	SpecialNeeds string    `json:"special_needs,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Booking struct {
	ID                    string        `json:"id"`
	ClientID              string        `json:"client_id"`
	SitterID              string        `json:"dogsitter_id"`
	DogID                 string        `json:"dog_id"`
	StartTime             time.Time     `json:"start_time"`
	EndTime               time.Time     `json:"end_time"`
	Status                BookingStatus `json:"status"`
	PaymentStatus         PaymentStatus `json:"payment_status"`
	TotalPrice            float64       `json:"total_price"`
	StripePaymentIntentID string        `json:"-"`
	ReminderSent          bool          `json:"-"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

func (b *Booking) Interval() availability.Interval {
	return availability.Interval{Start: b.StartTime, End: b.EndTime}
}

// IsParty reports whether userID is the client or the sitter of the booking.
func (b *Booking) IsParty(userID string) bool {
	return b.ClientID == userID || b.SitterID == userID
}

type Review struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	AuthorID  string    `json:"author_id"`
	TargetID  string    `json:"target_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}
