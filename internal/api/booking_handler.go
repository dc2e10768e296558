package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"hapipet/internal/db"
	"hapipet/internal/entities"
)

type BookingHandler struct {
	service BookingService
	log     *zap.Logger
}

func NewBookingHandler(service BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	booking, err := h.service.CreateBooking(r.Context(), claimsOf(r).UserID, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBookings(r.Context(), claimsOf(r).UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetBooking(r.Context(), claimsOf(r).UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type bookingAction func(ctx context.Context, userID, id string) (*db.Booking, error)

func (h *BookingHandler) act(action bookingAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		booking, err := action(r.Context(), claimsOf(r).UserID, mux.Vars(r)["id"])
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	}
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.act(h.service.ConfirmBooking)(w, r)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.act(h.service.CompleteBooking)(w, r)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(h.service.CancelBooking)(w, r)
}

func (h *BookingHandler) Payment(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CreatePayment(r.Context(), claimsOf(r).UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req entities.ReviewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	review, err := h.service.ReviewBooking(r.Context(), claimsOf(r).UserID, mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}
