package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/pkg/utils"
)

func (s *HttpSrv) MassAction(c *gin.Context) {
	tableID, _ := c.Params.Get("tableid")

	var req v1.MassActionArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewMassActionLogic(c, s.Core).Execute(tableID, req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}
