package internalapi

import (
	"errors"
	"strconv"

	handlershared "github.com/akiranaka1984/affiliate/internal/http/handlers/shared"
	"github.com/akiranaka1984/affiliate/internal/http/response"
	"github.com/akiranaka1984/affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewConversionRequest 转化审核请求
type ReviewConversionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// ReviewConversion 审核转化，重复提交同一结论幂等返回
func (h *Handler) ReviewConversion(c *gin.Context) {
	conversionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ReviewConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	conversion, err := h.ConversionService.ReviewConversion(conversionID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			handlershared.RespondError(c, response.CodeNotFound, "conversion not found", nil)
		case errors.Is(err, service.ErrConversionStatusInvalid):
			handlershared.RespondError(c, response.CodeBadRequest, "conversion status invalid", nil)
		default:
			handlershared.RespondError(c, response.CodeInternal, "conversion review failed", err)
		}
		return
	}
	response.Success(c, conversion)
}

// GetConversion 查询单条转化
func (h *Handler) GetConversion(c *gin.Context) {
	conversionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	conversion, err := h.ConversionService.GetConversion(conversionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			handlershared.RespondError(c, response.CodeNotFound, "conversion not found", nil)
		default:
			handlershared.RespondError(c, response.CodeInternal, "conversion fetch failed", err)
		}
		return
	}
	response.Success(c, conversion)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid id", err)
		return 0, false
	}
	return uint(id), true
}
