package constants

// 推广活动状态常量
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// 佣金计费类型常量
const (
	CommissionTypeFixed      = "fixed"
	CommissionTypePercentage = "percentage"
)

// 推广用户状态常量
const (
	AffiliateProfileStatusActive   = "active"
	AffiliateProfileStatusDisabled = "disabled"
)

// 推广链接状态常量
const (
	AffiliateLinkStatusPending  = "pending"
	AffiliateLinkStatusApproved = "approved"
	AffiliateLinkStatusRejected = "rejected"
)

// 转化状态常量
const (
	ConversionStatusPending  = "pending"
	ConversionStatusApproved = "approved"
	ConversionStatusRejected = "rejected"
)

// 转化审核动作常量
const (
	ConversionReviewActionApprove = "approve"
	ConversionReviewActionReject  = "reject"
)

// 佣金流水类型常量
const (
	CommissionEntryTypeConversion = "conversion"
	CommissionEntryTypeReferral   = "referral"
)

// 队列常量
const (
	QueueDefault       = "default"
	TaskClickFraudScan = "tracking:click_fraud_scan"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "aff"
)

// 访客标识 Cookie 常量
const (
	VisitorKeyCookie = "aff_visitor_key"
)
