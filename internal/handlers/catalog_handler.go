package handlers

import (
	"net/http"

	"github.com/onerilhan/thankatech-ledger/internal/catalog"
)

// CatalogHandler satın alınabilir paketleri ve oranları listeler
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler yeni handler oluşturur
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// ListTokenPacks public endpoint
func (h *CatalogHandler) ListTokenPacks(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"packs":                 h.catalog.TokenPacks,
		"price_per_token":       h.catalog.PricePerToken,
		"min_tokens_per_send":   h.catalog.MinTokensPerSend,
		"max_tokens_per_send":   h.catalog.MaxTokensPerSend,
		"conversion_rate":       h.catalog.ConversionRate,
		"min_conversion_points": h.catalog.MinConversionPoints,
	}, "Token paketleri getirildi")
}
