package service

import "errors"

// 业务错误定义
var (
	ErrNotFound                = errors.New("record not found")
	ErrForbidden               = errors.New("operation not allowed")
	ErrLinkAlreadyExists       = errors.New("affiliate link already exists for campaign")
	ErrCampaignInactive        = errors.New("campaign not accepting this operation")
	ErrAttributionExpired      = errors.New("click outside attribution window")
	ErrMissingGrossAmount      = errors.New("gross amount required for percentage commission")
	ErrAffiliateDisabled       = errors.New("affiliate profile disabled")
	ErrLinkStatusInvalid       = errors.New("invalid link status")
	ErrConversionStatusInvalid = errors.New("invalid conversion review action")
	ErrTrackingCodeExhausted   = errors.New("tracking code generation retries exhausted")
	ErrCommissionConfigInvalid = errors.New("invalid commission configuration")
)
