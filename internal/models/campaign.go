package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign 推广活动
type Campaign struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                                // 主键
	Title                string         `gorm:"type:varchar(255);not null" json:"title"`                             // 活动标题
	TargetURL            string         `gorm:"type:varchar(1024);not null" json:"target_url"`                       // 推广落地地址
	Status               string         `gorm:"type:varchar(20);not null;index" json:"status"`                       // 状态 draft/active/paused/completed
	ApprovalRequired     bool           `gorm:"not null" json:"approval_required"`                                   // 链接是否需要审核，零值带默认标签会被 GORM 跳过写入，故不设库级默认
	CookieDurationDays   int            `gorm:"not null;default:30" json:"cookie_duration_days"`                     // 归因窗口（天）
	CommissionType       string         `gorm:"type:varchar(20);not null" json:"commission_type"`                    // 佣金类型 fixed/percentage
	CommissionAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`      // 固定金额或百分比
	EnableTiers          bool           `gorm:"not null;default:false" json:"enable_tiers"`                          // 是否启用等级倍率
	TierCommissions      JSON           `gorm:"type:text" json:"tier_commissions"`                                   // 等级倍率表 tier -> multiplier(%)
	ReferrerSplitPercent Money          `gorm:"type:decimal(10,2);not null;default:0" json:"referrer_split_percent"` // 上级分成比例（百分比）
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt            time.Time      `gorm:"index" json:"updated_at"`                                             // 更新时间
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                                      // 软删除时间
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}
