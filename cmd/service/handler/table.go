package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

func (s *HttpSrv) CreateTable(c *gin.Context) {
	var req v1.CreateTableArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	table, err := v1.NewTableLogic(c, s.Core).CreateTable(req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, table)
}

type GetTableResponse struct {
	Table   *types.UserTable    `json:"table"`
	Columns []types.TableColumn `json:"columns"`
}

func (s *HttpSrv) GetTable(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	table, columns, err := v1.NewTableLogic(c, s.Core).GetTable(tableID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, GetTableResponse{
		Table:   table,
		Columns: columns,
	})
}

type ListTablesRequest struct {
	Keywords string `json:"keywords" form:"keywords"`
	Page     uint64 `json:"page" form:"page"`
	PageSize uint64 `json:"pagesize" form:"pagesize"`
}

func (s *HttpSrv) ListTables(c *gin.Context) {
	var req ListTablesRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewTableLogic(c, s.Core).ListTables(req.Keywords, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

func (s *HttpSrv) UpdateTable(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req v1.UpdateTableArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewTableLogic(c, s.Core).UpdateTable(tableID, req); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) DeleteTable(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	if err := v1.NewTableLogic(c, s.Core).DeleteTable(tableID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) AddColumn(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req v1.CreateColumnArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	column, err := v1.NewTableLogic(c, s.Core).AddColumn(tableID, req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, column)
}

func (s *HttpSrv) UpdateColumn(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	columnID, _ := c.Params.Get("columnid")

	var req types.UpdateTableColumnArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewTableLogic(c, s.Core).UpdateColumn(tableID, columnID, req); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) DeleteColumn(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	columnID, _ := c.Params.Get("columnid")

	if err := v1.NewTableLogic(c, s.Core).DeleteColumn(tableID, columnID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) GetColumnOptions(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	columnID, _ := c.Params.Get("columnid")

	options, err := v1.NewTableLogic(c, s.Core).GetColumnOptions(tableID, columnID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, options)
}

type SwapColumnsRequest struct {
	ColumnA string `json:"column_a" form:"column_a" binding:"required"`
	ColumnB string `json:"column_b" form:"column_b" binding:"required"`
}

func (s *HttpSrv) SwapColumns(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req SwapColumnsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewTableLogic(c, s.Core).SwapColumns(tableID, req.ColumnA, req.ColumnB); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}
