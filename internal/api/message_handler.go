package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"hapipet/internal/entities"
)

type MessageHandler struct {
	service MessageService
	log     *zap.Logger
}

func NewMessageHandler(service MessageService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{service: service, log: log}
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Conversations(r.Context(), claimsOf(r).UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.Conversation(r.Context(), claimsOf(r).UserID, mux.Vars(r)["userID"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req entities.MessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	msg, err := h.service.Send(r.Context(), claimsOf(r).UserID, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.MarkRead(r.Context(), claimsOf(r).UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
