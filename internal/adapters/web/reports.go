package web

import "net/http"

// apiStockValuation handles GET /api/reports/stock-valuation.
func (h *Handler) apiStockValuation(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.StockValuation(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}

	type line struct {
		IngredientID string `json:"ingredientId"`
		Name         string `json:"name"`
		Category     string `json:"category"`
		Unit         string `json:"unit"`
		Stock        string `json:"stock"`
		WAC          string `json:"wac"`
		Value        string `json:"value"`
	}
	type category struct {
		Category string `json:"category"`
		Value    string `json:"value"`
	}
	type response struct {
		Ingredients []line     `json:"ingredients"`
		Categories  []category `json:"categories"`
		TotalValue  string     `json:"totalValue"`
	}

	resp := response{TotalValue: report.TotalValue.String()}
	for _, v := range report.Ingredients {
		resp.Ingredients = append(resp.Ingredients, line{
			IngredientID: v.IngredientID,
			Name:         v.Name,
			Category:     v.Category,
			Unit:         v.Unit,
			Stock:        v.Stock.String(),
			WAC:          v.WAC.String(),
			Value:        v.Value.String(),
		})
	}
	for _, c := range report.Categories {
		resp.Categories = append(resp.Categories, category{Category: c.Category, Value: c.Value.String()})
	}
	writeJSON(w, resp)
}
