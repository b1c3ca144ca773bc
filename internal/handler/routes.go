package handler

import (
	"github.com/gorilla/mux"

	"github.com/jalai-llc/bundongsan/internal/config"
	"github.com/jalai-llc/bundongsan/internal/middleware"
)

// NewRouter registers the public and protected routes
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(h.metrics))

	// Public routes
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/market-rate", h.MarketRate).Methods("GET")
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	}

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/profile", h.GetProfile).Methods("GET")
	authRouter.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	authRouter.HandleFunc("/loan-terms", h.GetLoanTerms).Methods("GET")
	authRouter.HandleFunc("/loan-terms", h.UpdateLoanTerms).Methods("PUT")
	authRouter.HandleFunc("/buying-power", h.BuyingPower).Methods("GET")
	authRouter.HandleFunc("/buying-power/down-payment-options", h.DownPaymentOptions).Methods("GET")
	authRouter.HandleFunc("/budget/scenario", h.BudgetScenario).Methods("POST")

	// Fixed paths before the {id} routes.
	authRouter.HandleFunc("/properties", h.ListProperties).Methods("GET")
	authRouter.HandleFunc("/properties", h.AddProperty).Methods("POST")
	authRouter.HandleFunc("/properties/top-picks", h.TopPicks).Methods("GET")
	authRouter.HandleFunc("/properties/facets", h.Facets).Methods("GET")
	authRouter.HandleFunc("/properties/seed", h.MergeSeed).Methods("POST")
	authRouter.HandleFunc("/properties/seed", h.ClearSeeded).Methods("DELETE")
	authRouter.HandleFunc("/properties/{id}", h.UpdateProperty).Methods("PUT")
	authRouter.HandleFunc("/properties/{id}", h.DeleteProperty).Methods("DELETE")
	authRouter.HandleFunc("/properties/{id}/metrics", h.PropertyMetrics).Methods("GET")
	authRouter.HandleFunc("/properties/{id}/schedule", h.PaymentSchedule).Methods("GET")

	return r
}
