package models

import "time"

// Click 推广点击记录（仅欺诈标记字段允许更新）
type Click struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                                                    // 主键
	AffiliateLinkID uint      `gorm:"not null;index;index:idx_click_link_created" json:"affiliate_link_id"`                    // 推广链接ID
	VisitorKey      string    `gorm:"type:varchar(128);index" json:"visitor_key"`                                              // 访客标识
	ClientIP        string    `gorm:"type:varchar(64)" json:"client_ip"`                                                       // 客户端IP
	UserAgent       string    `gorm:"type:varchar(1024)" json:"user_agent"`                                                    // 客户端UA
	Referrer        string    `gorm:"type:varchar(1024)" json:"referrer"`                                                      // 来源地址
	IsFraud         bool      `gorm:"not null;default:false;index" json:"is_fraud"`                                            // 是否判定欺诈
	FraudReason     string    `gorm:"type:varchar(255)" json:"fraud_reason"`                                                   // 欺诈原因
	CreatedAt       time.Time `gorm:"not null;index;index:idx_click_link_created;default:CURRENT_TIMESTAMP" json:"created_at"` // 创建时间

	AffiliateLink AffiliateLink `gorm:"foreignKey:AffiliateLinkID" json:"affiliate_link,omitempty"` // 推广链接
}

// TableName 指定表名
func (Click) TableName() string {
	return "clicks"
}
