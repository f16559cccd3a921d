package web

import (
	"net/http"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/app"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
)

// apiListPurchases handles GET /api/purchases?status=pending|completed|cancelled.
func (h *Handler) apiListPurchases(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !core.PurchaseStatus(status).Valid() {
		writeError(w, r, "unknown status filter "+status, "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ListPurchases(r.Context(), status)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toPurchaseViews(result.Purchases))
}

// apiCreatePurchase handles POST /api/purchases.
// Body: { supplierId, calculationMethod?, notes?, items: [{ingredientId, quantity, unitPrice}] }
// Line fields accept every historical alias spelling.
func (h *Handler) apiCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SupplierID == "" {
		writeError(w, r, "supplierId is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, r, "at least one item is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreatePurchase(r.Context(), req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toPurchaseView(result.Purchase))
}

// apiGetPurchase handles GET /api/purchases/{id}.
func (h *Handler) apiGetPurchase(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetPurchase(r.Context(), urlID(r))
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toPurchaseView(result.Purchase))
}

// apiUpdatePurchase handles PUT /api/purchases/{id}. Only pending purchases
// are editable.
func (h *Handler) apiUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, r, "at least one item is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.UpdatePurchase(r.Context(), urlID(r), req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toPurchaseView(result.Purchase))
}

// apiDeletePurchase handles DELETE /api/purchases/{id}. A completed purchase
// is reverted from the warehouse before removal.
func (h *Handler) apiDeletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePurchase(r.Context(), urlID(r)); err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiSetPurchaseStatus handles PATCH /api/purchases/{id}/status.
// Body: { status: "pending" | "completed" | "cancelled" }
func (h *Handler) apiSetPurchaseStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Status == "" {
		writeError(w, r, "status is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SetPurchaseStatus(r.Context(), urlID(r), body.Status)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toPurchaseView(result.Purchase))
}

// apiCheckPurchase handles GET /api/purchases/{id}/reconciliation.
func (h *Handler) apiCheckPurchase(w http.ResponseWriter, r *http.Request) {
	check, err := h.svc.CheckPurchase(r.Context(), urlID(r))
	if err != nil {
		apiError(w, r, err)
		return
	}

	type mismatch struct {
		IngredientID string `json:"ingredientId"`
		Expected     string `json:"expected"`
		Recorded     string `json:"recorded"`
	}
	type response struct {
		PurchaseID string     `json:"purchaseId"`
		Status     string     `json:"status"`
		State      string     `json:"state"`
		Mismatches []mismatch `json:"mismatches,omitempty"`
	}

	resp := response{
		PurchaseID: check.PurchaseID,
		Status:     string(check.Status),
		State:      string(check.State),
	}
	for _, m := range check.Mismatches {
		resp.Mismatches = append(resp.Mismatches, mismatch{
			IngredientID: m.IngredientID,
			Expected:     m.Expected.String(),
			Recorded:     m.Recorded.String(),
		})
	}
	writeJSON(w, resp)
}
