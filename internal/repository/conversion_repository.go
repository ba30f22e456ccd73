package repository

import (
	"errors"
	"strings"

	"github.com/akiranaka1984/affiliate/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversionRepository 转化记录数据访问接口
type ConversionRepository interface {
	WithTx(tx *gorm.DB) ConversionRepository

	Create(conversion *models.Conversion) error
	GetByID(id uint) (*models.Conversion, error)
	GetByIDForUpdate(id uint) (*models.Conversion, error)
	Update(conversion *models.Conversion) error
	List(filter ConversionListFilter) ([]models.Conversion, int64, error)
}

// GormConversionRepository GORM 转化记录仓储
type GormConversionRepository struct {
	db *gorm.DB
}

// NewConversionRepository 创建转化记录仓储
func NewConversionRepository(db *gorm.DB) *GormConversionRepository {
	return &GormConversionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormConversionRepository) WithTx(tx *gorm.DB) ConversionRepository {
	if tx == nil {
		return r
	}
	return &GormConversionRepository{db: tx}
}

// Create 创建转化记录
func (r *GormConversionRepository) Create(conversion *models.Conversion) error {
	return r.db.Create(conversion).Error
}

// GetByID 按ID获取转化记录
func (r *GormConversionRepository) GetByID(id uint) (*models.Conversion, error) {
	if id == 0 {
		return nil, nil
	}
	var conversion models.Conversion
	if err := r.db.Preload("Click").First(&conversion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversion, nil
}

// GetByIDForUpdate 按ID锁定获取转化记录
func (r *GormConversionRepository) GetByIDForUpdate(id uint) (*models.Conversion, error) {
	if id == 0 {
		return nil, nil
	}
	var conversion models.Conversion
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&conversion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversion, nil
}

// Update 更新转化记录
func (r *GormConversionRepository) Update(conversion *models.Conversion) error {
	return r.db.Save(conversion).Error
}

// List 查询转化记录列表
func (r *GormConversionRepository) List(filter ConversionListFilter) ([]models.Conversion, int64, error) {
	query := r.db.Model(&models.Conversion{})
	if filter.AffiliateLinkID != 0 {
		query = query.
			Joins("JOIN clicks ON clicks.id = conversions.click_id").
			Where("clicks.affiliate_link_id = ?", filter.AffiliateLinkID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("conversions.status = ?", status)
	}
	if orderID := strings.TrimSpace(filter.OrderID); orderID != "" {
		query = query.Where("conversions.order_id = ?", orderID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("conversions.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("conversions.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Conversion
	if err := query.Order("conversions.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
