package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"hapipet/internal/entities"
	apperr "hapipet/internal/errors"
	"hapipet/internal/utils"
)

type SitterHandler struct {
	service SitterService
	log     *zap.Logger
}

func NewSitterHandler(service SitterService, log *zap.Logger) *SitterHandler {
	return &SitterHandler{service: service, log: log}
}

func (h *SitterHandler) Search(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearch(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	results, err := h.service.Search(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func parseSearch(r *http.Request) (entities.SitterSearchParams, error) {
	q := r.URL.Query()
	params := entities.SitterSearchParams{Query: q.Get("q")}

	var err error
	if params.Latitude, err = optionalFloat(q.Get("lat"), "lat"); err != nil {
		return params, err
	}
	if params.Longitude, err = optionalFloat(q.Get("lon"), "lon"); err != nil {
		return params, err
	}
	if (params.Latitude == nil) != (params.Longitude == nil) {
		return params, apperr.ErrBadRequest("lat and lon must be given together")
	}
	if params.HasCentre() && !utils.ValidCoordinates(*params.Latitude, *params.Longitude) {
		return params, apperr.ErrBadRequest("lat must be within ±90 and lon within ±180")
	}
	if raw := q.Get("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
			return params, apperr.ErrBadRequest("radius_km must be a positive number")
		}
		params.RadiusKm = radius
	}
	return params, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.ErrBadRequest(name + " must be a number")
	}
	return &v, nil
}

func (h *SitterHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *SitterHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.service.Calendar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (h *SitterHandler) Availability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, r, h.log, apperr.ErrBadRequest("date is required"))
		return
	}
	resp, err := h.service.Availability(r.Context(), mux.Vars(r)["id"], date)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SitterHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req entities.SitterProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	resp, err := h.service.UpdateProfile(r.Context(), claimsOf(r).UserID, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
