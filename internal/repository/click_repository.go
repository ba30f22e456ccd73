package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/akiranaka1984/affiliate/internal/models"
	"gorm.io/gorm"
)

// ClickRepository 点击记录数据访问接口
type ClickRepository interface {
	WithTx(tx *gorm.DB) ClickRepository

	Create(click *models.Click) error
	GetByID(id uint) (*models.Click, error)
	GetLatestValidByCodeVisitor(linkID uint, visitorKey string) (*models.Click, error)
	CountRecentByVisitor(linkID uint, visitorKey string, since time.Time) (int64, error)
	List(filter ClickListFilter) ([]models.Click, int64, error)
	ListRecentIDs(since time.Time, limit int) ([]uint, error)
	MarkFraud(id uint, reason string) error
}

// GormClickRepository GORM 点击记录仓储
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository 创建点击记录仓储
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClickRepository) WithTx(tx *gorm.DB) ClickRepository {
	if tx == nil {
		return r
	}
	return &GormClickRepository{db: tx}
}

// Create 创建点击记录
func (r *GormClickRepository) Create(click *models.Click) error {
	return r.db.Create(click).Error
}

// GetByID 按ID获取点击记录
func (r *GormClickRepository) GetByID(id uint) (*models.Click, error) {
	if id == 0 {
		return nil, nil
	}
	var click models.Click
	if err := r.db.First(&click, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// GetLatestValidByCodeVisitor 查询访客在指定链接上最近一次非欺诈点击
func (r *GormClickRepository) GetLatestValidByCodeVisitor(linkID uint, visitorKey string) (*models.Click, error) {
	key := strings.TrimSpace(visitorKey)
	if linkID == 0 || key == "" {
		return nil, nil
	}
	var click models.Click
	err := r.db.Where("affiliate_link_id = ? AND visitor_key = ? AND is_fraud = ?", linkID, key, false).
		Order("created_at DESC, id DESC").
		First(&click).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// CountRecentByVisitor 统计访客在窗口内的点击数
func (r *GormClickRepository) CountRecentByVisitor(linkID uint, visitorKey string, since time.Time) (int64, error) {
	key := strings.TrimSpace(visitorKey)
	if linkID == 0 || key == "" {
		return 0, nil
	}
	var total int64
	err := r.db.Model(&models.Click{}).
		Where("affiliate_link_id = ? AND visitor_key = ? AND created_at >= ?", linkID, key, since).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// List 查询点击记录列表
func (r *GormClickRepository) List(filter ClickListFilter) ([]models.Click, int64, error) {
	query := r.db.Model(&models.Click{})
	if filter.AffiliateLinkID != 0 {
		query = query.Where("affiliate_link_id = ?", filter.AffiliateLinkID)
	}
	if key := strings.TrimSpace(filter.VisitorKey); key != "" {
		query = query.Where("visitor_key = ?", key)
	}
	if filter.OnlyFraud {
		query = query.Where("is_fraud = ?", true)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Click
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListRecentIDs 查询窗口内的点击ID，供异步欺诈复查使用
func (r *GormClickRepository) ListRecentIDs(since time.Time, limit int) ([]uint, error) {
	if limit <= 0 {
		limit = 500
	}
	var ids []uint
	err := r.db.Model(&models.Click{}).
		Where("created_at >= ? AND is_fraud = ?", since, false).
		Order("id desc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// MarkFraud 标记欺诈点击（唯一允许的点击更新路径）
func (r *GormClickRepository) MarkFraud(id uint, reason string) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Click{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_fraud":     true,
			"fraud_reason": strings.TrimSpace(reason),
		}).Error
}
