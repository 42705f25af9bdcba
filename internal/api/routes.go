package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router assembles the full route tree. Everything under /api except auth
// requires a valid session token.
func (h *Handlers) Router(tokens *TokenManager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(tokens.Require)

			r.Get("/conversations/{conversationID}", h.GetConversation)
			r.Get("/conversations/{conversationID}/analysis", h.GetAnalysis)

			r.Post("/assessments", h.SubmitAssessment)
			r.Get("/assessments", h.ListAssessments)

			r.Get("/reports/team", h.TeamReport)
			r.Get("/reports/stats", h.Stats)

			r.Post("/companies", h.CreateCompany)
			r.Get("/companies/me", h.Membership)
			r.Get("/companies/members", h.ListMembers)
			r.Post("/companies/invites", h.CreateInvite)
			r.Post("/invites/accept", h.AcceptInvite)
		})
	})

	return r
}
