package api

import (
	"net/http"

	"go.uber.org/zap"

	"hapipet/internal/entities"
)

type DogHandler struct {
	service DogService
	log     *zap.Logger
}

func NewDogHandler(service DogService, log *zap.Logger) *DogHandler {
	return &DogHandler{service: service, log: log}
}

func (h *DogHandler) List(w http.ResponseWriter, r *http.Request) {
	dogs, err := h.service.List(r.Context(), claimsOf(r).UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dogs)
}

func (h *DogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.DogRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	dog, err := h.service.Create(r.Context(), claimsOf(r).UserID, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, dog)
}
