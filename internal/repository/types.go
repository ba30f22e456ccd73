package repository

import "time"

// AffiliateLinkListFilter 查询推广链接列表的过滤条件
type AffiliateLinkListFilter struct {
	Page         int
	PageSize     int
	AffiliateID  uint
	CampaignID   uint
	Status       string
	WithCampaign bool
}

// ClickListFilter 查询点击记录列表的过滤条件
type ClickListFilter struct {
	Page            int
	PageSize        int
	AffiliateLinkID uint
	VisitorKey      string
	OnlyFraud       bool
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// ConversionListFilter 查询转化记录列表的过滤条件
type ConversionListFilter struct {
	Page            int
	PageSize        int
	AffiliateLinkID uint
	Status          string
	OrderID         string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// CommissionEntryListFilter 查询佣金流水列表的过滤条件
type CommissionEntryListFilter struct {
	Page         int
	PageSize     int
	AffiliateID  uint
	ConversionID uint
	EntryType    string
	Status       string
}
