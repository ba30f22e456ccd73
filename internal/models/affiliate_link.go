package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateLink 推广链接（同一推广用户在同一活动下未删除的链接唯一，软删除后可重建）
type AffiliateLink struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                                                                       // 主键
	AffiliateID     uint           `gorm:"not null;index;index:idx_affiliate_link_pair,unique,where:deleted_at IS NULL" json:"affiliate_id"`           // 推广用户ID
	CampaignID      uint           `gorm:"not null;index;index:idx_affiliate_link_pair,unique" json:"campaign_id"`                                     // 活动ID
	TrackingCode    string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"tracking_code"`                                                 // 跟踪码
	CustomSlug      *string        `gorm:"type:varchar(64);uniqueIndex:idx_affiliate_link_slug,where:deleted_at IS NULL" json:"custom_slug,omitempty"` // 自定义短码
	DisplayName     string         `gorm:"type:varchar(255)" json:"display_name"`                                                                      // 展示名称
	Status          string         `gorm:"type:varchar(20);not null;index" json:"status"`                                                              // 状态 pending/approved/rejected
	ClickCount      int64          `gorm:"not null;default:0" json:"click_count"`                                                                      // 累计点击数
	ConversionCount int64          `gorm:"not null;default:0" json:"conversion_count"`                                                                 // 累计转化数
	Revenue         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"revenue"`                                                       // 累计佣金金额
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                                                                    // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                                                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                                                             // 软删除时间

	Affiliate *AffiliateProfile `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 推广用户
	Campaign  *Campaign         `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`   // 推广活动
}

// TableName 指定表名
func (AffiliateLink) TableName() string {
	return "affiliate_links"
}
