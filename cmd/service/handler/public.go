package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/pkg/utils"
)

func (s *HttpSrv) ListPublicTables(c *gin.Context) {
	tables, err := v1.NewPublicLogic(c, s.Core).ListPublicTables()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, tables)
}

type SearchTablesRequest struct {
	// Columns 逗号分隔的列名，返回同时包含所有列的表
	Columns string `json:"columns" form:"columns" binding:"required"`
}

func (s *HttpSrv) SearchTablesByColumns(c *gin.Context) {
	var req SearchTablesRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	tables, err := v1.NewPublicLogic(c, s.Core).SearchTablesByColumns(strings.Split(req.Columns, ","))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, tables)
}

type ListPublicItemsRequest struct {
	Flat   bool   `json:"flat" form:"flat"`
	Limit  uint64 `json:"limit" form:"limit"`
	Offset uint64 `json:"offset" form:"offset"`
}

func (s *HttpSrv) ListPublicTableItems(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req ListPublicItemsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	filters := v1.NormalizeFilterInput(c.Request.URL.Query())
	result, err := v1.NewPublicLogic(c, s.Core).ListTableItems(tableID, filters, req.Flat, req.Limit, req.Offset)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}

func (s *HttpSrv) GetPublicTableItem(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	itemID, _ := c.Params.Get("itemid")

	item, err := v1.NewPublicLogic(c, s.Core).GetTableItem(tableID, itemID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, item)
}

type CheckAvailabilityRequest struct {
	Quantity float64 `json:"quantity" form:"quantity"`
}

func (s *HttpSrv) CheckAvailability(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	itemID, _ := c.Params.Get("itemid")

	var req CheckAvailabilityRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewPublicLogic(c, s.Core).CheckAvailability(tableID, itemID, req.Quantity)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}

type QueryRecordsRequest struct {
	// Tables 逗号分隔的表ID，为空表示全部可见表
	Tables string `json:"tables" form:"tables"`
	// Columns 逗号分隔的投影列
	Columns string `json:"columns" form:"columns"`
	Limit   uint64 `json:"limit" form:"limit"`
	Offset  uint64 `json:"offset" form:"offset"`
}

func (s *HttpSrv) QueryPublicRecords(c *gin.Context) {
	var req QueryRecordsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	args := v1.QueryRecordsArgs{
		Filters: v1.NormalizeFilterInput(c.Request.URL.Query()),
		Limit:   req.Limit,
		Offset:  req.Offset,
	}
	if req.Tables != "" {
		args.TableIDs = strings.Split(req.Tables, ",")
	}
	if req.Columns != "" {
		args.Columns = strings.Split(req.Columns, ",")
	}

	result, err := v1.NewPublicLogic(c, s.Core).QueryRecords(args)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}

type DistinctValuesRequest struct {
	Column string `json:"column" form:"column" binding:"required"`
}

func (s *HttpSrv) DistinctPublicValues(c *gin.Context) {
	var req DistinctValuesRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	filters := v1.NormalizeFilterInput(c.Request.URL.Query())
	values, err := v1.NewPublicLogic(c, s.Core).DistinctValues(req.Column, filters)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, values)
}
