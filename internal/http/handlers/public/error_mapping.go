package public

import (
	"errors"

	"github.com/akiranaka1984/affiliate/internal/http/response"
	"github.com/akiranaka1984/affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var linkCreateErrorRules = []mappedHandlerError{
	{target: service.ErrLinkAlreadyExists, code: response.CodeConflict, msg: "link already exists for this campaign"},
	{target: service.ErrCampaignInactive, code: response.CodeBadRequest, msg: "campaign is not accepting links"},
	{target: service.ErrAffiliateDisabled, code: response.CodeForbidden, msg: "affiliate profile disabled"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "campaign not found"},
	{target: service.ErrTrackingCodeExhausted, code: response.CodeInternal, msg: "tracking code generation failed"},
}

var linkAccessErrorRules = []mappedHandlerError{
	{target: service.ErrForbidden, code: response.CodeForbidden, msg: "link belongs to another affiliate"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "link not found"},
}

var clickTrackErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "tracking code not found"},
}

var conversionRecordErrorRules = []mappedHandlerError{
	{target: service.ErrAttributionExpired, code: response.CodeGone, msg: "attribution window expired"},
	{target: service.ErrMissingGrossAmount, code: response.CodeUnprocessable, msg: "amount is required for percentage campaigns"},
	{target: service.ErrCampaignInactive, code: response.CodeBadRequest, msg: "campaign is not accepting conversions"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "no attributable click found"},
	{target: service.ErrCommissionConfigInvalid, code: response.CodeInternal, msg: "campaign commission config invalid"},
}

func respondLinkCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, linkCreateErrorRules, response.CodeInternal, "link create failed")
}

func respondLinkAccessError(c *gin.Context, err error) {
	respondWithMappedError(c, err, linkAccessErrorRules, response.CodeInternal, "link fetch failed")
}

func respondClickTrackError(c *gin.Context, err error) {
	respondWithMappedError(c, err, clickTrackErrorRules, response.CodeInternal, "click record failed")
}

func respondConversionRecordError(c *gin.Context, err error) {
	respondWithMappedError(c, err, conversionRecordErrorRules, response.CodeInternal, "conversion record failed")
}
