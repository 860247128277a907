package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/pkg/utils"
)

func (s *HttpSrv) GetTableInventorySummary(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	summary, err := v1.NewInventoryLogic(c, s.Core).GetTableInventorySummary(tableID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, summary)
}

func (s *HttpSrv) GetItemInventorySummary(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	itemID, _ := c.Params.Get("itemid")

	summary, err := v1.NewInventoryLogic(c, s.Core).GetItemInventorySummary(tableID, itemID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, summary)
}

func (s *HttpSrv) ListItemTransactions(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	itemID, _ := c.Params.Get("itemid")

	txs, err := v1.NewInventoryLogic(c, s.Core).ListItemTransactions(tableID, itemID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, txs)
}

type ClearTransactionsResponse struct {
	Cleared int64 `json:"cleared"`
}

func (s *HttpSrv) ClearTableTransactions(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	count, err := v1.NewInventoryLogic(c, s.Core).ClearTableTransactions(tableID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ClearTransactionsResponse{Cleared: count})
}

type RecordSaleRequest struct {
	ItemID      string  `json:"item_id" form:"item_id" binding:"required"`
	Quantity    float64 `json:"quantity" form:"quantity" binding:"required"`
	ReferenceID string  `json:"reference_id" form:"reference_id"`
}

// RecordSale 登记一笔销售出库流水
func (s *HttpSrv) RecordSale(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req RecordSaleRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewInventoryLogic(c, s.Core).RecordSale(tableID, req.ItemID, req.Quantity, req.ReferenceID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type RecordAdjustmentRequest struct {
	ItemID string  `json:"item_id" form:"item_id" binding:"required"`
	Delta  float64 `json:"delta" form:"delta" binding:"required"`
}

// RecordAdjustment 登记一笔人工校正流水，delta 的符号由调用方给定
func (s *HttpSrv) RecordAdjustment(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req RecordAdjustmentRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewInventoryLogic(c, s.Core).RecordAdjustment(tableID, req.ItemID, req.Delta); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type CheckStockRequest struct {
	TableID   string  `json:"table_id" form:"table_id"`
	Threshold float64 `json:"threshold" form:"threshold"`
}

func (s *HttpSrv) CheckStockLevels(c *gin.Context) {
	var req CheckStockRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewInventoryLogic(c, s.Core).CheckStockLevels(req.TableID, req.Threshold)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}
