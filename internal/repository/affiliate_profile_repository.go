package repository

import (
	"errors"

	"github.com/akiranaka1984/affiliate/internal/models"
	"gorm.io/gorm"
)

// AffiliateProfileRepository 推广用户档案数据访问接口
type AffiliateProfileRepository interface {
	WithTx(tx *gorm.DB) AffiliateProfileRepository

	GetByID(id uint) (*models.AffiliateProfile, error)
	GetByUserID(userID uint) (*models.AffiliateProfile, error)
	Create(profile *models.AffiliateProfile) error
	Update(profile *models.AffiliateProfile) error
}

// GormAffiliateProfileRepository GORM 推广用户仓储
type GormAffiliateProfileRepository struct {
	db *gorm.DB
}

// NewAffiliateProfileRepository 创建推广用户仓储
func NewAffiliateProfileRepository(db *gorm.DB) *GormAffiliateProfileRepository {
	return &GormAffiliateProfileRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAffiliateProfileRepository) WithTx(tx *gorm.DB) AffiliateProfileRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateProfileRepository{db: tx}
}

// GetByID 按ID获取推广用户
func (r *GormAffiliateProfileRepository) GetByID(id uint) (*models.AffiliateProfile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.AffiliateProfile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUserID 按外部用户ID获取推广用户
func (r *GormAffiliateProfileRepository) GetByUserID(userID uint) (*models.AffiliateProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	var profile models.AffiliateProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Create 创建推广用户
func (r *GormAffiliateProfileRepository) Create(profile *models.AffiliateProfile) error {
	return r.db.Create(profile).Error
}

// Update 更新推广用户
func (r *GormAffiliateProfileRepository) Update(profile *models.AffiliateProfile) error {
	return r.db.Save(profile).Error
}
