package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateProfile 推广用户档案
type AffiliateProfile struct {
	ID                uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID            uint           `gorm:"not null;uniqueIndex" json:"user_id"`           // 外部用户ID
	DisplayName       string         `gorm:"type:varchar(255)" json:"display_name"`         // 展示名称
	Status            string         `gorm:"type:varchar(20);not null;index" json:"status"` // 状态 active/disabled
	CommissionTier    int            `gorm:"not null;default:1" json:"commission_tier"`     // 佣金等级
	ParentAffiliateID *uint          `gorm:"index" json:"parent_affiliate_id,omitempty"`    // 上级推广用户ID
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间

	ParentAffiliate *AffiliateProfile `gorm:"foreignKey:ParentAffiliateID" json:"parent_affiliate,omitempty"` // 上级推广用户
}

// TableName 指定表名
func (AffiliateProfile) TableName() string {
	return "affiliate_profiles"
}
