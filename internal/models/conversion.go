package models

import "time"

// Conversion 转化记录
type Conversion struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	ClickID     uint      `gorm:"not null;index" json:"click_id"`                          // 归因点击ID
	OrderID     string    `gorm:"type:varchar(64);index" json:"order_id"`                  // 外部订单号
	GrossAmount *Money    `gorm:"type:decimal(20,2)" json:"gross_amount,omitempty"`        // 订单金额（百分比佣金必填）
	Commission  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"commission"` // 直接佣金金额
	Status      string    `gorm:"type:varchar(20);not null;index" json:"status"`           // 状态 pending/approved/rejected
	IsFraud     bool      `gorm:"not null;default:false;index" json:"is_fraud"`            // 是否判定欺诈
	FraudReason string    `gorm:"type:varchar(255)" json:"fraud_reason"`                   // 欺诈原因
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                 // 更新时间

	Click Click `gorm:"foreignKey:ClickID" json:"click,omitempty"` // 归因点击
}

// TableName 指定表名
func (Conversion) TableName() string {
	return "conversions"
}
