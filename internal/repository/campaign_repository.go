package repository

import (
	"errors"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"gorm.io/gorm"
)

// CampaignRepository 推广活动数据访问接口
type CampaignRepository interface {
	WithTx(tx *gorm.DB) CampaignRepository

	GetByID(id uint) (*models.Campaign, error)
	Create(campaign *models.Campaign) error
	Update(campaign *models.Campaign) error
	ListActive() ([]models.Campaign, error)
}

// GormCampaignRepository GORM 推广活动仓储
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建推广活动仓储
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) CampaignRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignRepository{db: tx}
}

// GetByID 按ID获取活动
func (r *GormCampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	if id == 0 {
		return nil, nil
	}
	var campaign models.Campaign
	if err := r.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// Create 创建活动
func (r *GormCampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// Update 更新活动
func (r *GormCampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// ListActive 查询进行中的活动
func (r *GormCampaignRepository) ListActive() ([]models.Campaign, error) {
	var rows []models.Campaign
	if err := r.db.Where("status = ?", constants.CampaignStatusActive).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
