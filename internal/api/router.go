package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"hapipet/internal/auth"
	"hapipet/internal/db"
)

type Handlers struct {
	Auth     *AuthHandler
	Sitters  *SitterHandler
	Dogs     *DogHandler
	Bookings *BookingHandler
	Messages *MessageHandler
	Stripe   *StripeWebhookHandler
	Health   *HealthHandler
}

// NewRouter registers every route. limiter may be nil.
func NewRouter(h Handlers, tokens *auth.TokenManager, limiter *RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	if limiter != nil {
		api.Use(limiter.Middleware)
	}

	// Public
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/sitters", h.Sitters.Search).Methods(http.MethodGet)
	api.HandleFunc("/sitters/{id}", h.Sitters.Profile).Methods(http.MethodGet)
	api.HandleFunc("/sitters/{id}/calendar", h.Sitters.Calendar).Methods(http.MethodGet)
	api.HandleFunc("/sitters/{id}/availability", h.Sitters.Availability).Methods(http.MethodGet)
	api.HandleFunc("/payments/webhook", h.Stripe.HandleWebhook).Methods(http.MethodPost)

	// Authenticated
	private := api.NewRoute().Subrouter()
	private.Use(auth.Middleware(tokens))

	client := func(f http.HandlerFunc) http.HandlerFunc { return auth.RequireType(db.UserTypeClient, f) }
	sitter := func(f http.HandlerFunc) http.HandlerFunc { return auth.RequireType(db.UserTypeDogsitter, f) }

	private.HandleFunc("/sitters/me", sitter(h.Sitters.UpdateMe)).Methods(http.MethodPut)

	private.HandleFunc("/dogs", client(h.Dogs.List)).Methods(http.MethodGet)
	private.HandleFunc("/dogs", client(h.Dogs.Create)).Methods(http.MethodPost)

	private.HandleFunc("/bookings", client(h.Bookings.Create)).Methods(http.MethodPost)
	private.HandleFunc("/bookings", h.Bookings.List).Methods(http.MethodGet)
	private.HandleFunc("/bookings/{id}", h.Bookings.Get).Methods(http.MethodGet)
	private.HandleFunc("/bookings/{id}/confirm", sitter(h.Bookings.Confirm)).Methods(http.MethodPost)
	private.HandleFunc("/bookings/{id}/complete", sitter(h.Bookings.Complete)).Methods(http.MethodPost)
	private.HandleFunc("/bookings/{id}/cancel", h.Bookings.Cancel).Methods(http.MethodPost)
	private.HandleFunc("/bookings/{id}/payment", client(h.Bookings.Payment)).Methods(http.MethodPost)
	private.HandleFunc("/bookings/{id}/review", client(h.Bookings.Review)).Methods(http.MethodPost)

	private.HandleFunc("/messages", h.Messages.Conversations).Methods(http.MethodGet)
	private.HandleFunc("/messages", h.Messages.Send).Methods(http.MethodPost)
	private.HandleFunc("/messages/{userID}", h.Messages.Conversation).Methods(http.MethodGet)
	private.HandleFunc("/messages/{id}/read", h.Messages.MarkRead).Methods(http.MethodPut)

	return r
}
