package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// IngredientValuation is one ingredient's contribution to inventory value,
// stock × weighted average cost.
type IngredientValuation struct {
	IngredientID string
	Name         string
	Category     string
	Unit         string
	Stock        decimal.Decimal
	WAC          decimal.Decimal
	Value        decimal.Decimal
}

// CategoryValuation rolls ingredient values up by category.
type CategoryValuation struct {
	Category string
	Value    decimal.Decimal
}

// StockValuation is the full inventory valuation report.
type StockValuation struct {
	Ingredients []IngredientValuation
	Categories  []CategoryValuation
	TotalValue  decimal.Decimal
}

// ReportingService produces read-only views over the warehouse.
type ReportingService interface {
	// StockValuation values the inventory at current WAC, with per
	// ingredient lines and category rollups.
	StockValuation(ctx context.Context) (*StockValuation, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by PostgreSQL.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) StockValuation(ctx context.Context) (*StockValuation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, category, unit, current_stock, weighted_average_cost
		FROM ingredients
		ORDER BY category, name, unit`)
	if err != nil {
		return nil, fmt.Errorf("fetch ingredients for valuation: %w", err)
	}
	defer rows.Close()

	report := &StockValuation{}
	byCategory := map[string]decimal.Decimal{}
	var order []string

	for rows.Next() {
		var v IngredientValuation
		if err := rows.Scan(&v.IngredientID, &v.Name, &v.Category, &v.Unit, &v.Stock, &v.WAC); err != nil {
			return nil, fmt.Errorf("scan ingredient valuation: %w", err)
		}
		v.Value = v.Stock.Mul(v.WAC)
		report.Ingredients = append(report.Ingredients, v)
		report.TotalValue = report.TotalValue.Add(v.Value)

		if _, ok := byCategory[v.Category]; !ok {
			order = append(order, v.Category)
		}
		byCategory[v.Category] = byCategory[v.Category].Add(v.Value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, cat := range order {
		report.Categories = append(report.Categories, CategoryValuation{
			Category: cat,
			Value:    byCategory[cat],
		})
	}
	return report, nil
}
