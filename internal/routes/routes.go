package routes

import (
	"net/http"

	"github.com/stakeproof/stakeproof/internal/app"
	"github.com/stakeproof/stakeproof/internal/handler"
	"github.com/stakeproof/stakeproof/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(a.DB)
	goal := handler.NewGoalHandler(a.GoalService)
	invite := handler.NewInviteHandler(a.InviteService, a.Cfg)
	proof := handler.NewProofHandler(a.ProofService)
	subscription := handler.NewSubscriptionHandler(a.SubscriptionService)
	ws := handler.NewWSHandler(a.Hub, a.GoalService)
	profile := handler.NewProfileHandler(a.ProfileService)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /healthz", health.Health)

	// Invite resolution and joining are rate limited: codes are short and
	// guessable given enough attempts.
	rateLimiter := middleware.RateLimitInvites()

	// Goals
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("GET /api/goals/active", middleware.RequireAuth(goal.ListActive))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("PATCH /api/goals/{id}/status", middleware.RequireAuth(goal.UpdateStatus))

	// Invites and participants
	mux.HandleFunc("POST /api/goals/{id}/invite", middleware.RequireAuth(invite.CreateCode))
	mux.HandleFunc("GET /api/join/{code}", rateLimiter(middleware.RequireAuth(invite.Resolve)))
	mux.HandleFunc("POST /api/goals/{id}/join", rateLimiter(middleware.RequireAuth(invite.Join)))
	mux.HandleFunc("GET /api/goals/{id}/participants", middleware.RequireAuth(invite.Participants))

	// Proofs
	mux.HandleFunc("POST /api/goals/{id}/proofs", middleware.RequireAuth(proof.Submit))
	mux.HandleFunc("GET /api/goals/{id}/proofs", middleware.RequireAuth(proof.List))
	mux.HandleFunc("GET /api/goals/{id}/proofs/latest", middleware.RequireAuth(proof.Latest))

	// Realtime proof updates
	mux.HandleFunc("GET /ws/goals/{id}/proofs", middleware.RequireAuth(ws.ProofEvents))

	// Profile
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(profile.Get))
	mux.HandleFunc("PATCH /api/profile", middleware.RequireAuth(profile.Update))

	// Subscription ledger
	mux.HandleFunc("GET /api/subscription", middleware.RequireAuth(subscription.Status))
	mux.HandleFunc("GET /api/subscription/trial", middleware.RequireAuth(subscription.TrialStatus))
	mux.HandleFunc("POST /api/subscription/trial", middleware.RequireAuth(subscription.StartTrial))
	mux.HandleFunc("POST /api/subscription/purchases", middleware.RequireAuth(subscription.RecordPurchase))

	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(a.AuthService),
	)
}
