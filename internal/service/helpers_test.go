package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/akiranaka1984/affiliate/internal/config"
	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db *gorm.DB

	campaignRepo   repository.CampaignRepository
	profileRepo    repository.AffiliateProfileRepository
	linkRepo       repository.AffiliateLinkRepository
	clickRepo      repository.ClickRepository
	conversionRepo repository.ConversionRepository
	commissionRepo repository.CommissionEntryRepository
	statsRepo      repository.StatsRepository

	linkService       *LinkService
	clickService      *ClickService
	conversionService *ConversionService
	statsService      *StatsService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:affiliate_engine_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 内存库单连接，避免并发用例互相干扰
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Campaign{},
		&models.AffiliateProfile{},
		&models.AffiliateLink{},
		&models.Click{},
		&models.Conversion{},
		&models.CommissionEntry{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	env := &serviceTestEnv{
		db:             db,
		campaignRepo:   repository.NewCampaignRepository(db),
		profileRepo:    repository.NewAffiliateProfileRepository(db),
		linkRepo:       repository.NewAffiliateLinkRepository(db),
		clickRepo:      repository.NewClickRepository(db),
		conversionRepo: repository.NewConversionRepository(db),
		commissionRepo: repository.NewCommissionEntryRepository(db),
		statsRepo:      repository.NewStatsRepository(db),
	}

	env.linkService = NewLinkService(env.linkRepo, env.campaignRepo, env.profileRepo, config.TrackingConfig{})
	// 默认高阈值，常规用例不触发频率判定
	scorer := NewThresholdFraudScorer(env.clickRepo, 1000, time.Minute)
	env.clickService = NewClickService(env.clickRepo, env.linkRepo, env.linkService, scorer, nil)
	env.conversionService = NewConversionService(env.conversionRepo, env.clickRepo, env.linkRepo, env.profileRepo, env.commissionRepo, env.linkService)
	env.statsService = NewStatsService(env.statsRepo, env.commissionRepo, env.linkService)
	return env
}

func createTestCampaign(t *testing.T, db *gorm.DB, row models.Campaign) models.Campaign {
	t.Helper()

	if row.Title == "" {
		row.Title = "测试活动"
	}
	if row.TargetURL == "" {
		row.TargetURL = "https://shop.example.com/landing"
	}
	if row.Status == "" {
		row.Status = constants.CampaignStatusActive
	}
	if row.CommissionType == "" {
		row.CommissionType = constants.CommissionTypeFixed
		row.CommissionAmount = models.NewMoneyFromDecimal(decimal.NewFromInt(25))
	}
	if row.CookieDurationDays == 0 {
		row.CookieDurationDays = 30
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	return row
}

func createTestProfile(t *testing.T, db *gorm.DB, userID uint, status string) models.AffiliateProfile {
	t.Helper()

	row := models.AffiliateProfile{
		UserID:         userID,
		DisplayName:    "tester",
		Status:         status,
		CommissionTier: 1,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create affiliate profile failed: %v", err)
	}
	return row
}

func createTestLink(t *testing.T, db *gorm.DB, affiliateID, campaignID uint, code, status string) models.AffiliateLink {
	t.Helper()

	row := models.AffiliateLink{
		AffiliateID:  affiliateID,
		CampaignID:   campaignID,
		TrackingCode: code,
		Status:       status,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create affiliate link failed: %v", err)
	}
	return row
}

func createTestClick(t *testing.T, db *gorm.DB, linkID uint, visitorKey string, createdAt time.Time) models.Click {
	t.Helper()

	row := models.Click{
		AffiliateLinkID: linkID,
		VisitorKey:      visitorKey,
		ClientIP:        "203.0.113.10",
		UserAgent:       "Mozilla/5.0",
		CreatedAt:       createdAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create click failed: %v", err)
	}
	return row
}

func reloadTestLink(t *testing.T, env *serviceTestEnv, linkID uint) *models.AffiliateLink {
	t.Helper()

	link, err := env.linkRepo.GetByID(linkID)
	if err != nil {
		t.Fatalf("reload link failed: %v", err)
	}
	if link == nil {
		t.Fatalf("link %d not found", linkID)
	}
	return link
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
