package goal

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/team", h.ListTeam)
	r.Get("/review-queue", h.ReviewQueue)
	r.Post("/submit-all", h.SubmitAll)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/submit", h.Submit)
		r.Post("/review", h.Review)
		r.Post("/progress", h.RecordProgress)
		r.Get("/progress", h.History)
	})

	return r
}
