package models

import "time"

// CommissionEntry 佣金流水（直接佣金与上级分成各记一条）
type CommissionEntry struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                                 // 主键
	AffiliateID  uint      `gorm:"not null;index;index:idx_commission_entry_unique,unique" json:"affiliate_id"`          // 受益推广用户ID
	ConversionID uint      `gorm:"not null;index;index:idx_commission_entry_unique,unique" json:"conversion_id"`         // 关联转化ID
	EntryType    string    `gorm:"type:varchar(20);not null;index:idx_commission_entry_unique,unique" json:"entry_type"` // 类型 conversion/referral
	Amount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                                  // 佣金金额
	Status       string    `gorm:"type:varchar(20);not null;index" json:"status"`                                        // 状态，跟随转化审核
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                                              // 创建时间
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`                                                              // 更新时间

	Affiliate  AffiliateProfile `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`   // 受益推广用户
	Conversion Conversion       `gorm:"foreignKey:ConversionID" json:"conversion,omitempty"` // 关联转化
}

// TableName 指定表名
func (CommissionEntry) TableName() string {
	return "commission_entries"
}
