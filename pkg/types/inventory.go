package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TransactionType 库存流水类型
type TransactionType string

const (
	TransactionAdd     TransactionType = "add"
	TransactionRemove  TransactionType = "remove"
	TransactionSale    TransactionType = "sale"
	TransactionRent    TransactionType = "rent"
	TransactionRelease TransactionType = "release"
	TransactionUpdate  TransactionType = "update"
	TransactionAdjust  TransactionType = "adjust"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionAdd, TransactionRemove, TransactionSale,
		TransactionRent, TransactionRelease, TransactionUpdate, TransactionAdjust:
		return true
	}
	return false
}

// Snapshot 流水中记录的行数据快照，可为空
type Snapshot map[string]any

func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *Snapshot) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported snapshot type %T", value)
	}
	return json.Unmarshal(raw, s)
}

// InventoryTransaction 只追加的库存流水，创建后不再修改，
// 仅支持按表批量清理
type InventoryTransaction struct {
	ID              string          `json:"id" db:"id"`
	TableID         string          `json:"table_id" db:"table_id"`
	TableName       string          `json:"table_name" db:"table_name"`
	ItemID          string          `json:"item_id" db:"item_id"`
	TransactionType TransactionType `json:"transaction_type" db:"transaction_type"`
	QuantityChange  *float64        `json:"quantity_change" db:"quantity_change"`
	PreviousData    Snapshot        `json:"previous_data" db:"previous_data"`
	NewData         Snapshot        `json:"new_data" db:"new_data"`
	ReferenceID     string          `json:"reference_id" db:"reference_id"`
	CreatedBy       string          `json:"created_by" db:"created_by"`
	CreatedAt       int64           `json:"created_at" db:"created_at"`
}

// ItemInventorySummary 单个条目的读时聚合，不落库
type ItemInventorySummary struct {
	ItemID           string  `json:"item_id"`
	TableID          string  `json:"table_id"`
	CurrentQuantity  float64 `json:"current_quantity"`
	TotalAdded       float64 `json:"total_added"`
	TotalRemoved     float64 `json:"total_removed"`
	TotalSold        float64 `json:"total_sold"`
	TotalAdjustments float64 `json:"total_adjustments"`
	TransactionCount int     `json:"transaction_count"`
}

// TableInventorySummary 整表读时聚合
type TableInventorySummary struct {
	TableID          string                 `json:"table_id"`
	TableName        string                 `json:"table_name"`
	Items            []ItemInventorySummary `json:"items"`
	CurrentQuantity  float64                `json:"current_quantity"`
	TotalAdded       float64                `json:"total_added"`
	TotalRemoved     float64                `json:"total_removed"`
	TotalSold        float64                `json:"total_sold"`
	TotalAdjustments float64                `json:"total_adjustments"`
	TransactionCount int                    `json:"transaction_count"`
}

// StockAlertLevel 库存告警级别
type StockAlertLevel string

const (
	StockAlertNegative StockAlertLevel = "negative_stock"
	StockAlertOut      StockAlertLevel = "out_of_stock"
	StockAlertLow      StockAlertLevel = "low_stock"
)

type StockAlert struct {
	TableID         string          `json:"table_id"`
	TableName       string          `json:"table_name"`
	ItemID          string          `json:"item_id"`
	CurrentQuantity float64         `json:"current_quantity"`
	Level           StockAlertLevel `json:"level"`
}

// StockCheckResult 库存巡检结果，告警按数量升序（最紧急在前）
type StockCheckResult struct {
	Alerts             []StockAlert `json:"alerts"`
	TotalChecked       int          `json:"total_checked"`
	LowStockCount      int          `json:"low_stock_count"`
	OutOfStockCount    int          `json:"out_of_stock_count"`
	NegativeStockCount int          `json:"negative_stock_count"`
}
