package public

import (
	"net/http"
	"strings"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/http/response"
	"github.com/akiranaka1984/affiliate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TrackClick 记录点击并 302 跳转到活动落地页。
// 访客标识通过 Cookie 维持，归因窗口内的转化依赖该标识匹配。
func (h *Handler) TrackClick(c *gin.Context) {
	code := c.Param("code")
	visitorKey, _ := c.Cookie(constants.VisitorKeyCookie)

	result, err := h.ClickService.RecordClick(service.RecordClickInput{
		Code:       code,
		VisitorKey: visitorKey,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Referrer:   c.GetHeader("Referer"),
	})
	if err != nil {
		respondClickTrackError(c, err)
		return
	}
	if result.TargetURL == "" {
		respondError(c, response.CodeInternal, "campaign target url missing", nil)
		return
	}

	maxAge := result.CookieDurationDays * 24 * 3600
	c.SetCookie(constants.VisitorKeyCookie, result.VisitorKey, maxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, result.TargetURL)
}

// TrackConversionRequest 转化上报请求
type TrackConversionRequest struct {
	ClickID      *uint  `json:"click_id"`
	TrackingCode string `json:"tracking_code"`
	VisitorKey   string `json:"visitor_key"`
	OrderID      string `json:"order_id"`
	Amount       string `json:"amount"`
}

// TrackConversion 上报转化。click_id 优先，缺省按 跟踪码+访客标识 归因。
func (h *Handler) TrackConversion(c *gin.Context) {
	var req TrackConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if req.ClickID == nil && strings.TrimSpace(req.TrackingCode) == "" {
		respondError(c, response.CodeBadRequest, "click_id or tracking_code is required", nil)
		return
	}

	var grossAmount *decimal.Decimal
	if raw := strings.TrimSpace(req.Amount); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			respondError(c, response.CodeBadRequest, "invalid amount", err)
			return
		}
		grossAmount = &parsed
	}

	visitorKey := strings.TrimSpace(req.VisitorKey)
	if visitorKey == "" {
		visitorKey, _ = c.Cookie(constants.VisitorKeyCookie)
	}

	conversion, err := h.ConversionService.RecordConversion(service.RecordConversionInput{
		ClickID:     req.ClickID,
		Code:        req.TrackingCode,
		VisitorKey:  visitorKey,
		OrderID:     req.OrderID,
		GrossAmount: grossAmount,
	})
	if err != nil {
		respondConversionRecordError(c, err)
		return
	}
	response.Success(c, conversion)
}
