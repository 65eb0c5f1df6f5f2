package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
)

type Handler struct {
	service UserService
}

func NewHandler(service UserService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	actor, err := ActorFromContext(r.Context())
	if err != nil {
		log.WithError(err).Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), actor)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateReporting(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	actor, err := ActorFromContext(r.Context())
	if err != nil {
		log.WithError(err).Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var dto UpdateReportingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Warn("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.service.SetReportingLinks(r.Context(), actor, id, dto)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, u)
}
