package public

import (
	"strconv"
	"strings"

	"github.com/akiranaka1984/affiliate/internal/http/response"
	"github.com/akiranaka1984/affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateLinkRequest 创建推广链接请求
type CreateLinkRequest struct {
	CampaignID  uint   `json:"campaign_id" binding:"required"`
	DisplayName string `json:"display_name"`
	CustomSlug  string `json:"custom_slug"`
}

// CreateLink 在指定活动下创建推广链接
func (h *Handler) CreateLink(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	link, err := h.LinkService.CreateLink(uid, service.CreateLinkInput{
		CampaignID:  req.CampaignID,
		DisplayName: req.DisplayName,
		CustomSlug:  req.CustomSlug,
	})
	if err != nil {
		respondLinkCreateError(c, err)
		return
	}
	response.Success(c, link)
}

// GetLink 查询我的单条推广链接
func (h *Handler) GetLink(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	link, err := h.LinkService.GetLink(uid, linkID)
	if err != nil {
		respondLinkAccessError(c, err)
		return
	}
	response.Success(c, link)
}

// ListLinks 分页查询我的推广链接
func (h *Handler) ListLinks(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	rows, total, err := h.LinkService.ListLinks(uid, page, pageSize, status)
	if err != nil {
		respondLinkAccessError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// DeleteLink 删除我的推广链接（软删除，历史数据保留）
func (h *Handler) DeleteLink(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.LinkService.DeleteLink(uid, linkID); err != nil {
		respondLinkAccessError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ListLinkClicks 分页查询链接点击明细
func (h *Handler) ListLinkClicks(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.ClickService.ListClicks(uid, linkID, page, pageSize)
	if err != nil {
		respondLinkAccessError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListLinkConversions 分页查询链接转化明细
func (h *Handler) ListLinkConversions(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))
	from, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}

	rows, total, err := h.ConversionService.ListConversions(uid, linkID, page, pageSize, status, from, to)
	if err != nil {
		respondLinkAccessError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", err)
		return 0, false
	}
	return uint(id), true
}
