package internalapi

import (
	"errors"

	handlershared "github.com/akiranaka1984/affiliate/internal/http/handlers/shared"
	"github.com/akiranaka1984/affiliate/internal/http/response"
	"github.com/akiranaka1984/affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateLinkStatusRequest 链接审核状态更新请求
type UpdateLinkStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateLinkStatus 更新链接审核状态
func (h *Handler) UpdateLinkStatus(c *gin.Context) {
	linkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateLinkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	link, err := h.LinkService.UpdateLinkStatus(linkID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			handlershared.RespondError(c, response.CodeNotFound, "link not found", nil)
		case errors.Is(err, service.ErrLinkStatusInvalid):
			handlershared.RespondError(c, response.CodeBadRequest, "link status invalid", nil)
		default:
			handlershared.RespondError(c, response.CodeInternal, "link status update failed", err)
		}
		return
	}
	response.Success(c, link)
}
