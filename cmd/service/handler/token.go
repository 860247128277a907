package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/pkg/utils"
)

func (s *HttpSrv) CreateAccessToken(c *gin.Context) {
	var req v1.CreateAccessTokenArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	token, err := v1.NewAccessTokenLogic(c, s.Core).CreateAccessToken(req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, token)
}

type ListAccessTokensRequest struct {
	Page     uint64 `json:"page" form:"page"`
	PageSize uint64 `json:"pagesize" form:"pagesize"`
}

func (s *HttpSrv) ListAccessTokens(c *gin.Context) {
	var req ListAccessTokensRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	tokens, err := v1.NewAccessTokenLogic(c, s.Core).ListAccessTokens(req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, tokens)
}

type DeleteAccessTokensRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (s *HttpSrv) DeleteAccessTokens(c *gin.Context) {
	var req DeleteAccessTokensRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewAccessTokenLogic(c, s.Core).DeleteAccessTokens(req.IDs); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}
