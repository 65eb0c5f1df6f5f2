package review

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/summary", h.Summary)
	r.Get("/comparison/{goalID}", h.Compare)
	r.Put("/goals/{goalID}/self-assessment", h.SubmitSelfAssessment)
	r.Put("/goals/{goalID}/manager-review", h.SubmitManagerReview)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)

	return r
}
