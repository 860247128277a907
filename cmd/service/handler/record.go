package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

func (s *HttpSrv) CreateRecord(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.APIError(c, errors.New("api.CreateRecord.bind", i18n.ERROR_MALFORMED_BODY, err).Code(http.StatusBadRequest))
		return
	}

	row, err := v1.NewRecordLogic(c, s.Core).CreateRecord(tableID, raw)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, row)
}

func (s *HttpSrv) GetRecord(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	rowID, _ := c.Params.Get("rowid")

	row, err := v1.NewRecordLogic(c, s.Core).GetRecord(tableID, rowID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, row)
}

func (s *HttpSrv) UpdateRecord(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	rowID, _ := c.Params.Get("rowid")

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.APIError(c, errors.New("api.UpdateRecord.bind", i18n.ERROR_MALFORMED_BODY, err).Code(http.StatusBadRequest))
		return
	}

	row, err := v1.NewRecordLogic(c, s.Core).UpdateRecord(tableID, rowID, raw)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, row)
}

func (s *HttpSrv) DeleteRecord(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")
	rowID, _ := c.Params.Get("rowid")

	row, err := v1.NewRecordLogic(c, s.Core).DeleteRecord(tableID, rowID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, row)
}

type ListRecordsRequest struct {
	Sort      string `json:"sort" form:"sort"`
	Direction string `json:"direction" form:"direction"`
	Page      uint64 `json:"page" form:"page"`
	PageSize  uint64 `json:"pagesize" form:"pagesize"`
}

// ListRecords 过滤条件从 query 里的 where[col]=v 读取
func (s *HttpSrv) ListRecords(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req ListRecordsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	args := v1.ListRecordsArgs{
		Filters: v1.NormalizeFilterInput(c.Request.URL.Query()),
		Page:    req.Page,
		Limit:   req.PageSize,
	}
	if req.Sort != "" {
		args.Sort = &types.RowSort{
			Field:     req.Sort,
			Direction: types.SortDirection(req.Direction),
		}
	}

	page, err := v1.NewRecordLogic(c, s.Core).ListRecords(tableID, args)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, page)
}
