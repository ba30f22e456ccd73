package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AffiliateLinkRepository 推广链接数据访问接口
type AffiliateLinkRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AffiliateLinkRepository

	Create(link *models.AffiliateLink) error
	GetByID(id uint) (*models.AffiliateLink, error)
	GetByIDForUpdate(id uint) (*models.AffiliateLink, error)
	GetByPair(affiliateID, campaignID uint) (*models.AffiliateLink, error)
	GetByTrackingCode(code string) (*models.AffiliateLink, error)
	GetByCustomSlug(slug string) (*models.AffiliateLink, error)
	List(filter AffiliateLinkListFilter) ([]models.AffiliateLink, int64, error)
	UpdateStatus(id uint, status string, updatedAt time.Time) error
	SoftDelete(id uint) error
	IncrementClickCount(id uint) error
	ApplyConversion(id uint, commission decimal.Decimal) error
}

// GormAffiliateLinkRepository GORM 推广链接仓储
type GormAffiliateLinkRepository struct {
	db *gorm.DB
}

// NewAffiliateLinkRepository 创建推广链接仓储
func NewAffiliateLinkRepository(db *gorm.DB) *GormAffiliateLinkRepository {
	return &GormAffiliateLinkRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAffiliateLinkRepository) WithTx(tx *gorm.DB) AffiliateLinkRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateLinkRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAffiliateLinkRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建推广链接
func (r *GormAffiliateLinkRepository) Create(link *models.AffiliateLink) error {
	return r.db.Create(link).Error
}

// GetByID 按ID获取推广链接
func (r *GormAffiliateLinkRepository) GetByID(id uint) (*models.AffiliateLink, error) {
	if id == 0 {
		return nil, nil
	}
	var link models.AffiliateLink
	if err := r.db.Preload("Campaign").First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByIDForUpdate 按ID锁定获取推广链接
func (r *GormAffiliateLinkRepository) GetByIDForUpdate(id uint) (*models.AffiliateLink, error) {
	if id == 0 {
		return nil, nil
	}
	var link models.AffiliateLink
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByPair 按推广用户+活动获取链接
func (r *GormAffiliateLinkRepository) GetByPair(affiliateID, campaignID uint) (*models.AffiliateLink, error) {
	if affiliateID == 0 || campaignID == 0 {
		return nil, nil
	}
	var link models.AffiliateLink
	if err := r.db.Where("affiliate_id = ? AND campaign_id = ?", affiliateID, campaignID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByTrackingCode 按跟踪码获取链接
func (r *GormAffiliateLinkRepository) GetByTrackingCode(code string) (*models.AffiliateLink, error) {
	normalized := strings.TrimSpace(code)
	if normalized == "" {
		return nil, nil
	}
	var link models.AffiliateLink
	if err := r.db.Preload("Campaign").Where("tracking_code = ?", normalized).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByCustomSlug 按自定义短码获取链接
func (r *GormAffiliateLinkRepository) GetByCustomSlug(slug string) (*models.AffiliateLink, error) {
	normalized := strings.TrimSpace(slug)
	if normalized == "" {
		return nil, nil
	}
	var link models.AffiliateLink
	if err := r.db.Preload("Campaign").Where("custom_slug = ?", normalized).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// List 查询推广链接列表
func (r *GormAffiliateLinkRepository) List(filter AffiliateLinkListFilter) ([]models.AffiliateLink, int64, error) {
	query := r.db.Model(&models.AffiliateLink{})
	if filter.WithCampaign {
		query = query.Preload("Campaign")
	}
	if filter.AffiliateID != 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.CampaignID != 0 {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.AffiliateLink
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus 更新链接状态
func (r *GormAffiliateLinkRepository) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.AffiliateLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     strings.TrimSpace(status),
			"updated_at": updatedAt,
		}).Error
}

// SoftDelete 软删除链接（历史点击与转化保留）
func (r *GormAffiliateLinkRepository) SoftDelete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.AffiliateLink{}, id).Error
}

// IncrementClickCount 点击计数原子自增
func (r *GormAffiliateLinkRepository) IncrementClickCount(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.AffiliateLink{}).
		Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + 1")).Error
}

// ApplyConversion 转化计数与累计佣金原子更新
func (r *GormAffiliateLinkRepository) ApplyConversion(id uint, commission decimal.Decimal) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.AffiliateLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"conversion_count": gorm.Expr("conversion_count + 1"),
			"revenue":          gorm.Expr("revenue + ?", commission.Round(2)),
		}).Error
}
