package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridbase/gridbase/pkg/types"
)

func ptr(f float64) *float64 {
	return &f
}

func TestFoldTransactions(t *testing.T) {
	t.Run("add sale adjust", func(t *testing.T) {
		txs := []types.InventoryTransaction{
			{ItemID: "item-1", TableID: "tbl-1", TransactionType: types.TransactionAdd, QuantityChange: ptr(10)},
			{ItemID: "item-1", TableID: "tbl-1", TransactionType: types.TransactionSale, QuantityChange: ptr(-3)},
			{ItemID: "item-1", TableID: "tbl-1", TransactionType: types.TransactionAdjust, QuantityChange: ptr(-2)},
		}

		summary := foldTransactions("item-1", "tbl-1", txs)
		assert.Equal(t, float64(5), summary.CurrentQuantity)
		assert.Equal(t, float64(10), summary.TotalAdded)
		assert.Equal(t, float64(3), summary.TotalSold)
		assert.Equal(t, float64(2), summary.TotalAdjustments)
		assert.Equal(t, 3, summary.TransactionCount)
	})

	t.Run("update splits by sign", func(t *testing.T) {
		txs := []types.InventoryTransaction{
			{TransactionType: types.TransactionUpdate, QuantityChange: ptr(4)},
			{TransactionType: types.TransactionUpdate, QuantityChange: ptr(-1)},
		}

		summary := foldTransactions("item-1", "tbl-1", txs)
		assert.Equal(t, float64(3), summary.CurrentQuantity)
		assert.Equal(t, float64(4), summary.TotalAdded)
		assert.Equal(t, float64(1), summary.TotalRemoved)
	})

	t.Run("nil quantity only counts", func(t *testing.T) {
		txs := []types.InventoryTransaction{
			{TransactionType: types.TransactionAdd, QuantityChange: nil},
		}

		summary := foldTransactions("item-1", "tbl-1", txs)
		assert.Equal(t, float64(0), summary.CurrentQuantity)
		assert.Equal(t, 1, summary.TransactionCount)
	})

	t.Run("remove stores negative accumulates positive", func(t *testing.T) {
		txs := []types.InventoryTransaction{
			{TransactionType: types.TransactionAdd, QuantityChange: ptr(8)},
			{TransactionType: types.TransactionRemove, QuantityChange: ptr(-5)},
		}

		summary := foldTransactions("item-1", "tbl-1", txs)
		assert.Equal(t, float64(3), summary.CurrentQuantity)
		assert.Equal(t, float64(5), summary.TotalRemoved)
	})
}

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		name     string
		quantity float64
		level    types.StockAlertLevel
		alerted  bool
	}{
		{"negative", -1, types.StockAlertNegative, true},
		{"zero", 0, types.StockAlertOut, true},
		{"at threshold", 5, types.StockAlertLow, true},
		{"below threshold", 3, types.StockAlertLow, true},
		{"healthy", 6, "", false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			level, alerted := classifyStock(tt.quantity, 5)
			assert.Equal(t, tt.alerted, alerted)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestQuantityOf(t *testing.T) {
	assert.Equal(t, float64(7), quantityOf(map[string]any{"qty": float64(7)}))
	assert.Equal(t, float64(7), quantityOf(map[string]any{"qty": int64(7)}))
	assert.Equal(t, float64(7.5), quantityOf(map[string]any{"qty": "7.5"}))
	assert.Equal(t, float64(0), quantityOf(map[string]any{"qty": "not a number"}))
	assert.Equal(t, float64(0), quantityOf(map[string]any{}))
}
