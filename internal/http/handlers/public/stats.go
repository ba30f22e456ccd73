package public

import (
	"strings"
	"time"

	"github.com/akiranaka1984/affiliate/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetLinkStats 查询链接统计：累计值 + UTC 日粒度明细
func (h *Handler) GetLinkStats(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	from, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}

	stats, err := h.StatsService.GetLinkStats(uid, linkID, from, to)
	if err != nil {
		respondLinkAccessError(c, err)
		return
	}
	response.Success(c, stats)
}

// GetSummary 查询我的推广汇总
func (h *Handler) GetSummary(c *gin.Context) {
	uid, ok := getAffiliateUserID(c)
	if !ok {
		return
	}
	summary, err := h.StatsService.GetAffiliateSummary(uid)
	if err != nil {
		respondLinkAccessError(c, err)
		return
	}
	response.Success(c, summary)
}

// parseDateQuery 解析 YYYY-MM-DD 查询参数为 UTC 当日零点
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid date: "+name, err)
		return nil, false
	}
	return &parsed, true
}
