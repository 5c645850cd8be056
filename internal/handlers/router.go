package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/metrics"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/utils"
)

// RouterConfig router'ın ihtiyaç duyduğu handler'lar ve middleware'ler
type RouterConfig struct {
	Appreciation *AppreciationHandler
	Balance      *BalanceHandler
	Transactions *TransactionHandler
	Conversions  *ConversionHandler
	Catalog      *CatalogHandler
	Webhooks     *WebhookHandler
	Admin        *AdminHandler

	Tokens    middleware.TokenValidator
	Global    []mux.MiddlewareFunc // error, logging, metrics, rate limit
	ReadyFunc func() error         // nil ise /health her zaman 200
}

// NewRouter Gorilla Mux router'ını ayarlar
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = middleware.NotFoundJSONHandler()
	router.MethodNotAllowedHandler = middleware.MethodNotAllowedJSONHandler()

	for _, mw := range cfg.Global {
		router.Use(mw)
	}

	router.HandleFunc("/health", healthHandler(cfg.ReadyFunc)).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API v1 subrouter
	api := router.PathPrefix("/api/v1").Subrouter()

	// Public endpoints
	api.HandleFunc("/tokens/packs", cfg.Catalog.ListTokenPacks).Methods("GET")
	api.HandleFunc("/webhooks/stripe", cfg.Webhooks.Stripe).Methods("POST")

	// Protected endpoints (Authentication required)
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.Tokens))

	appreciation := protected.NewRoute().Subrouter()
	appreciation.Use(middleware.RequirePermission(middleware.PermSendAppreciation))
	appreciation.HandleFunc("/thank-you", cfg.Appreciation.SendThankYou).Methods("POST")
	appreciation.HandleFunc("/thank-you/status/{technicianId}", cfg.Appreciation.ThankYouStatus).Methods("GET")
	appreciation.HandleFunc("/tokens/send", cfg.Appreciation.SendTokens).Methods("POST")

	points := protected.PathPrefix("/points").Subrouter()
	points.Use(middleware.RequirePermission(middleware.PermConvertPoints))
	points.HandleFunc("/convert", cfg.Conversions.Convert).Methods("POST")
	points.HandleFunc("/conversions", cfg.Conversions.GetConversions).Methods("GET")

	ledger := protected.NewRoute().Subrouter()
	ledger.Use(middleware.RequirePermission(middleware.PermViewOwnLedger))
	ledger.HandleFunc("/balances/current", cfg.Balance.GetCurrentBalance).Methods("GET")
	ledger.HandleFunc("/transactions/history", cfg.Transactions.GetHistory).Methods("GET")
	ledger.HandleFunc("/transactions/{id}", cfg.Transactions.GetTransaction).Methods("GET")

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin())
	admin.HandleFunc("/reconcile", cfg.Admin.Reconcile).Methods("POST")

	// Route listesini log'la (development için)
	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			methods, _ := route.GetMethods()
			log.Debug().
				Str("path", pathTemplate).
				Strs("methods", methods).
				Msg("📍 Route registered")
		}
		return nil
	})

	return router
}

func healthHandler(ready func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				log.Warn().Err(err).Msg("⚠️ Health check başarısız")
				utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
