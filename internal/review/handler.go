package review

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

type Handler struct {
	service ReviewService
}

func NewHandler(service ReviewService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, err := user.ActorFromContext(r.Context())
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return user.Actor{}, false
	}
	return actor, true
}

func urlID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "invalid "+param, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, reviewType ReviewType) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	goalID, ok := urlID(w, r, "goalID")
	if !ok {
		return
	}

	var dto SubmitReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var (
		resp *ReviewResponse
		err  error
	)
	if reviewType == TypeSelfAssessment {
		resp, err = h.service.SubmitSelfAssessment(r.Context(), actor, goalID, dto)
	} else {
		resp, err = h.service.SubmitManagerReview(r.Context(), actor, goalID, dto)
	}
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitSelfAssessment(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, TypeSelfAssessment)
}

func (h *Handler) SubmitManagerReview(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, TypeManagerReview)
}

// List accepts goal_id, review_type and quarter query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := ReviewFilter{
		ReviewType: ReviewType(q.Get("review_type")),
		Quarter:    q.Get("quarter"),
	}
	if raw := q.Get("goal_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid goal_id", http.StatusBadRequest)
			return
		}
		filter.GoalID = &id
	}

	responses, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, responses)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		config.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), actor)
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, summary)
}

func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	goalID, ok := urlID(w, r, "goalID")
	if !ok {
		return
	}

	comparisons, err := h.service.Compare(r.Context(), actor, goalID, r.URL.Query().Get("quarter"))
	if err != nil {
		config.Error(w, err)
		return
	}

	config.JSON(w, http.StatusOK, comparisons)
}
