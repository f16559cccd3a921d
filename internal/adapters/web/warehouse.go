package web

import (
	"net/http"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/app"
)

// apiListIngredients handles GET /api/ingredients.
func (h *Handler) apiListIngredients(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListIngredients(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toIngredientViews(result.Ingredients))
}

// apiCreateIngredient handles POST /api/ingredients.
// Body: { name, category?, unit, minimumStock?, supplierNote? }
// New ingredients start with zero stock and zero WAC.
func (h *Handler) apiCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req app.IngredientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, "name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateIngredient(r.Context(), req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toIngredientView(result.Ingredient))
}

// apiGetIngredient handles GET /api/ingredients/{id}.
func (h *Handler) apiGetIngredient(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetIngredient(r.Context(), urlID(r))
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toIngredientView(result.Ingredient))
}

// apiUpdateIngredient handles PUT /api/ingredients/{id}. Master data only;
// stock and WAC cannot be set through this endpoint.
func (h *Handler) apiUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	var req app.IngredientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateIngredient(r.Context(), urlID(r), req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toIngredientView(result.Ingredient))
}

// apiLowStock handles GET /api/ingredients/low-stock.
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListLowStock(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toIngredientViews(result.Ingredients))
}

// apiMovements handles GET /api/ingredients/{id}/movements.
func (h *Handler) apiMovements(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetMovements(r.Context(), urlID(r))
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toMovementViews(result.Movements))
}

// apiRebuildIngredient handles POST /api/ingredients/{id}/rebuild?fix=true.
// Without fix, the replay is a dry run reporting drift only.
func (h *Handler) apiRebuildIngredient(w http.ResponseWriter, r *http.Request) {
	fix := r.URL.Query().Get("fix") == "true"

	rebuild, err := h.svc.RebuildIngredient(r.Context(), urlID(r), fix)
	if err != nil {
		apiError(w, r, err)
		return
	}

	type response struct {
		IngredientID  string `json:"ingredientId"`
		StoredStock   string `json:"storedStock"`
		StoredWAC     string `json:"storedWac"`
		ComputedStock string `json:"computedStock"`
		ComputedWAC   string `json:"computedWac"`
		MovementsSeen int    `json:"movementsSeen"`
		Drifted       bool   `json:"drifted"`
		Fixed         bool   `json:"fixed"`
	}
	writeJSON(w, response{
		IngredientID:  rebuild.IngredientID,
		StoredStock:   rebuild.StoredStock.String(),
		StoredWAC:     rebuild.StoredWAC.String(),
		ComputedStock: rebuild.ComputedStock.String(),
		ComputedWAC:   rebuild.ComputedWAC.String(),
		MovementsSeen: rebuild.MovementsSeen,
		Drifted:       rebuild.Drifted,
		Fixed:         rebuild.Fixed,
	})
}

// apiFulfillOrder handles POST /api/fulfillments.
// Body: { orderRef, lines: [{ingredientId, quantity}] }
func (h *Handler) apiFulfillOrder(w http.ResponseWriter, r *http.Request) {
	var req app.FulfillmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OrderRef == "" {
		writeError(w, r, "orderRef is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if len(req.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.FulfillOrder(r.Context(), req)
	if err != nil {
		apiError(w, r, err)
		return
	}

	deductions := make([]deductionView, len(result.Results))
	for i, d := range result.Results {
		deductions[i] = deductionView{
			IngredientID: d.IngredientID,
			Requested:    d.Requested,
			Deducted:     d.Deducted,
			Remaining:    d.Remaining,
		}
	}

	type response struct {
		OrderRef   string          `json:"orderRef"`
		Deductions []deductionView `json:"deductions"`
	}
	writeJSON(w, response{OrderRef: result.OrderRef, Deductions: deductions})
}
