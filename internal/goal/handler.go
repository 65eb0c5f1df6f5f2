package goal

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

type Handler struct {
	service GoalService
}

func NewHandler(service GoalService) *Handler {
	return &Handler{service: service}
}

func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, err := user.ActorFromContext(r.Context())
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return user.Actor{}, false
	}
	return actor, true
}

func goalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var dto GoalFieldsDTO
	if !decode(w, r, &dto) {
		return
	}

	response, err := h.service.Create(r.Context(), actor, dto)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusCreated, response)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	responses, err := h.service.ListOwn(r.Context(), actor)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, responses)
}

func (h *Handler) ListTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	responses, err := h.service.ListTeam(r.Context(), actor)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, responses)
}

func (h *Handler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	responses, err := h.service.ReviewQueue(r.Context(), actor)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, responses)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := goalID(w, r)
	if !ok {
		return
	}

	response, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := goalID(w, r)
	if !ok {
		return
	}

	var dto GoalFieldsDTO
	if !decode(w, r, &dto) {
		return
	}

	response, err := h.service.Update(r.Context(), actor, id, dto)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := goalID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		config.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := goalID(w, r)
	if !ok {
		return
	}

	response, err := h.service.Submit(r.Context(), actor, id)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) SubmitAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	result, err := h.service.SubmitAll(r.Context(), actor)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, result)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := goalID(w, r)
	if !ok {
		return
	}

	var dto ReviewGoalDTO
	if !decode(w, r, &dto) {
		return
	}

	response, err := h.service.Review(r.Context(), actor, id, dto)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := goalID(w, r)
	if !ok {
		return
	}

	var dto RecordProgressDTO
	if !decode(w, r, &dto) {
		return
	}

	result, err := h.service.RecordProgress(r.Context(), actor, id, dto)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusCreated, result)
}

// History renders the ledger newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := goalID(w, r)
	if !ok {
		return
	}

	ledger, err := h.service.History(r.Context(), actor, id)
	if err != nil {
		config.Error(w, err)
		return
	}

	responses := make([]ProgressEntryResponse, 0, ledger.Len())
	for e := range ledger.Backward() {
		responses = append(responses, toEntryResponse(&e))
	}

	config.JSON(w, http.StatusOK, responses)
}
