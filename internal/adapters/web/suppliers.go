package web

import (
	"net/http"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/app"
)

// apiListSuppliers handles GET /api/suppliers?include_inactive=true.
func (h *Handler) apiListSuppliers(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	result, err := h.svc.ListSuppliers(r.Context(), includeInactive)
	if err != nil {
		apiError(w, r, err)
		return
	}

	views := make([]supplierView, len(result.Suppliers))
	for i := range result.Suppliers {
		views[i] = toSupplierView(&result.Suppliers[i])
	}
	writeJSON(w, views)
}

// apiCreateSupplier handles POST /api/suppliers.
// Body: { name, contact?, phone?, address? }
func (h *Handler) apiCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req app.SupplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, "name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateSupplier(r.Context(), req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toSupplierView(result.Supplier))
}

// apiUpdateSupplier handles PUT /api/suppliers/{id}.
func (h *Handler) apiUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req app.SupplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateSupplier(r.Context(), urlID(r), req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, toSupplierView(result.Supplier))
}

// apiDeactivateSupplier handles DELETE /api/suppliers/{id}. Soft delete:
// historical purchases keep their supplier reference.
func (h *Handler) apiDeactivateSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeactivateSupplier(r.Context(), urlID(r)); err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
