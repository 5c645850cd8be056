package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// AdminHandler yönetim uçları
type AdminHandler struct {
	reconciler interfaces.ReconciliationServiceInterface
}

// NewAdminHandler yeni handler oluşturur
func NewAdminHandler(reconciler interfaces.ReconciliationServiceInterface) *AdminHandler {
	return &AdminHandler{reconciler: reconciler}
}

// Reconcile ledger uzlaştırmasını çalıştırır (admin). Boş gövde = düzeltme modu, puanlar hariç.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var opts models.ReconcileOptions
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &opts) {
			return
		}
	}
	opts.Actor = "admin:" + claims.UserID

	report, err := h.reconciler.Run(r.Context(), opts)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, report, "Uzlaştırma tamamlandı")

	log.Info().
		Str("actor", opts.Actor).
		Bool("dry_run", opts.DryRun).
		Int("scanned", report.Scanned).
		Int("fixed", report.TransactionsFixed+report.ProfilesFixed).
		Msg("🧾 Admin uzlaştırması çalıştı")
}
