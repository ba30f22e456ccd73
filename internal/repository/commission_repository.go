package repository

import (
	"strings"

	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionEntryRepository 佣金流水数据访问接口
type CommissionEntryRepository interface {
	WithTx(tx *gorm.DB) CommissionEntryRepository

	Create(entry *models.CommissionEntry) error
	List(filter CommissionEntryListFilter) ([]models.CommissionEntry, int64, error)
	ListByConversionForUpdate(conversionID uint) ([]models.CommissionEntry, error)
	BatchUpdateStatus(ids []uint, status string) error
	SumByAffiliate(affiliateID uint, statuses []string) (decimal.Decimal, error)
}

// GormCommissionEntryRepository GORM 佣金流水仓储
type GormCommissionEntryRepository struct {
	db *gorm.DB
}

// NewCommissionEntryRepository 创建佣金流水仓储
func NewCommissionEntryRepository(db *gorm.DB) *GormCommissionEntryRepository {
	return &GormCommissionEntryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionEntryRepository) WithTx(tx *gorm.DB) CommissionEntryRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionEntryRepository{db: tx}
}

// Create 创建佣金流水
func (r *GormCommissionEntryRepository) Create(entry *models.CommissionEntry) error {
	return r.db.Create(entry).Error
}

// List 查询佣金流水列表
func (r *GormCommissionEntryRepository) List(filter CommissionEntryListFilter) ([]models.CommissionEntry, int64, error) {
	query := r.db.Model(&models.CommissionEntry{})
	if filter.AffiliateID != 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.ConversionID != 0 {
		query = query.Where("conversion_id = ?", filter.ConversionID)
	}
	if entryType := strings.TrimSpace(filter.EntryType); entryType != "" {
		query = query.Where("entry_type = ?", entryType)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.CommissionEntry
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByConversionForUpdate 按转化查询并锁定佣金流水
func (r *GormCommissionEntryRepository) ListByConversionForUpdate(conversionID uint) ([]models.CommissionEntry, error) {
	if conversionID == 0 {
		return []models.CommissionEntry{}, nil
	}
	var rows []models.CommissionEntry
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("conversion_id = ?", conversionID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BatchUpdateStatus 批量更新佣金流水状态
func (r *GormCommissionEntryRepository) BatchUpdateStatus(ids []uint, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.CommissionEntry{}).
		Where("id IN ?", ids).
		Update("status", strings.TrimSpace(status)).Error
}

// SumByAffiliate 汇总推广用户指定状态的佣金金额
func (r *GormCommissionEntryRepository) SumByAffiliate(affiliateID uint, statuses []string) (decimal.Decimal, error) {
	if affiliateID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.CommissionEntry{}).
		Where("affiliate_id = ? AND status IN ?", affiliateID, statuses).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}
