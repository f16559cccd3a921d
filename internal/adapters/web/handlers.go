package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// 1 MB body limit on everything else; purchase payloads are small.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))

		// ── Purchases ─────────────────────────────────────────────────────
		r.Get("/api/purchases", h.apiListPurchases)
		r.Post("/api/purchases", h.apiCreatePurchase)
		r.Get("/api/purchases/{id}", h.apiGetPurchase)
		r.Put("/api/purchases/{id}", h.apiUpdatePurchase)
		r.Delete("/api/purchases/{id}", h.apiDeletePurchase)
		r.Patch("/api/purchases/{id}/status", h.apiSetPurchaseStatus)
		r.Get("/api/purchases/{id}/reconciliation", h.apiCheckPurchase)

		// ── Warehouse ─────────────────────────────────────────────────────
		r.Get("/api/ingredients", h.apiListIngredients)
		r.Post("/api/ingredients", h.apiCreateIngredient)
		r.Get("/api/ingredients/low-stock", h.apiLowStock)
		r.Get("/api/ingredients/{id}", h.apiGetIngredient)
		r.Put("/api/ingredients/{id}", h.apiUpdateIngredient)
		r.Get("/api/ingredients/{id}/movements", h.apiMovements)
		r.Post("/api/ingredients/{id}/rebuild", h.apiRebuildIngredient)

		// ── Order fulfillment ─────────────────────────────────────────────
		r.Post("/api/fulfillments", h.apiFulfillOrder)

		// ── Suppliers ─────────────────────────────────────────────────────
		r.Get("/api/suppliers", h.apiListSuppliers)
		r.Post("/api/suppliers", h.apiCreateSupplier)
		r.Put("/api/suppliers/{id}", h.apiUpdateSupplier)
		r.Delete("/api/suppliers/{id}", h.apiDeactivateSupplier)

		// ── Reports ───────────────────────────────────────────────────────
		r.Get("/api/reports/stock-valuation", h.apiStockValuation)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlID extracts the {id} URL parameter.
func urlID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the size limit set by RequestBodyLimit middleware; HTTP 400 for all
// other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
