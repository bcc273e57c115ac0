package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"breakeven-api","version":"1.0"}`))
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Current user
	api.HandleFunc("/me", deps.UserHandler.Me).Methods("GET")

	// Budget
	api.HandleFunc("/budget", deps.BudgetHandler.Show).Methods("GET")
	api.HandleFunc("/budget", deps.BudgetHandler.Update).Methods("PATCH")

	// Daily ledger
	api.HandleFunc("/daily/today", deps.LedgerHandler.Today).Methods("GET")
	api.HandleFunc("/daily", deps.LedgerHandler.Index).Methods("GET")

	// Expenses
	api.HandleFunc("/expenses", deps.ExpenseHandler.List).Methods("GET")
	api.HandleFunc("/expenses", deps.ExpenseHandler.Create).Methods("POST")
	api.HandleFunc("/expenses/{id}", deps.ExpenseHandler.Update).Methods("PATCH", "PUT")
	api.HandleFunc("/expenses/{id}", deps.ExpenseHandler.Delete).Methods("DELETE")

	// Subscriptions
	api.HandleFunc("/subscriptions/summary", deps.SubscriptionHandler.Summary).Methods("GET")
	api.HandleFunc("/subscriptions", deps.SubscriptionHandler.List).Methods("GET")
	api.HandleFunc("/subscriptions", deps.SubscriptionHandler.Create).Methods("POST")
	api.HandleFunc("/subscriptions/{id}", deps.SubscriptionHandler.Show).Methods("GET")
	api.HandleFunc("/subscriptions/{id}", deps.SubscriptionHandler.Update).Methods("PATCH", "PUT")
	api.HandleFunc("/subscriptions/{id}", deps.SubscriptionHandler.Delete).Methods("DELETE")

	// Stats
	api.HandleFunc("/stats/spending", deps.StatsHandler.Spending).Methods("GET")
}
