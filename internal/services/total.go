package services

import (
	"github.com/SigNoz/store-api-go/internal/models"
	"github.com/shopspring/decimal"
)

// CartTotal sums price*quantity over lines, rounded half away from zero to
// cents. Lines whose product is missing contribute nothing.
func CartTotal(lines []models.CartLine) float64 {
	total := decimal.Zero
	for _, line := range lines {
		if line.Price == nil {
			continue
		}
		price := decimal.NewFromFloat(*line.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

func summarize(cartID int64, lines []models.CartLine) *models.CartSummary {
	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.CartItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return &models.CartSummary{
		ID:    cartID,
		Items: items,
		Total: CartTotal(lines),
	}
}
