package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLinkRepositoryTest(t *testing.T) (*GormAffiliateLinkRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:link_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Campaign{},
		&models.AffiliateProfile{},
		&models.AffiliateLink{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewAffiliateLinkRepository(db), db
}

func createLinkRepoTestLink(t *testing.T, repo *GormAffiliateLinkRepository, affiliateID, campaignID uint, code string) *models.AffiliateLink {
	t.Helper()
	link := &models.AffiliateLink{
		AffiliateID:  affiliateID,
		CampaignID:   campaignID,
		TrackingCode: code,
		Status:       constants.AffiliateLinkStatusApproved,
	}
	if err := repo.Create(link); err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	return link
}

func TestLinkRepositoryPairUniqueness(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	createLinkRepoTestLink(t, repo, 1, 1, "AAAA0001BBBB0001")

	err := repo.Create(&models.AffiliateLink{
		AffiliateID:  1,
		CampaignID:   1,
		TrackingCode: "AAAA0001BBBB0002",
		Status:       constants.AffiliateLinkStatusApproved,
	})
	if err == nil {
		t.Fatalf("duplicate affiliate/campaign pair should violate unique index")
	}

	found, err := repo.GetByPair(1, 1)
	if err != nil {
		t.Fatalf("get by pair failed: %v", err)
	}
	if found == nil || found.TrackingCode != "AAAA0001BBBB0001" {
		t.Fatalf("unexpected pair lookup result %+v", found)
	}
}

func TestLinkRepositoryCounters(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	link := createLinkRepoTestLink(t, repo, 2, 2, "CCCC0002DDDD0002")

	for i := 0; i < 3; i++ {
		if err := repo.IncrementClickCount(link.ID); err != nil {
			t.Fatalf("increment click count failed: %v", err)
		}
	}
	if err := repo.ApplyConversion(link.ID, decimal.NewFromFloat(25.5)); err != nil {
		t.Fatalf("apply conversion failed: %v", err)
	}
	if err := repo.ApplyConversion(link.ID, decimal.NewFromFloat(10.25)); err != nil {
		t.Fatalf("apply conversion failed: %v", err)
	}

	reloaded, err := repo.GetByID(link.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload link failed: link=%+v err=%v", reloaded, err)
	}
	if reloaded.ClickCount != 3 {
		t.Fatalf("click count want 3 got %d", reloaded.ClickCount)
	}
	if reloaded.ConversionCount != 2 {
		t.Fatalf("conversion count want 2 got %d", reloaded.ConversionCount)
	}
	if got := reloaded.Revenue.String(); got != "35.75" {
		t.Fatalf("revenue want 35.75 got %s", got)
	}
}

func TestLinkRepositorySoftDelete(t *testing.T) {
	repo, db := setupLinkRepositoryTest(t)

	link := createLinkRepoTestLink(t, repo, 3, 3, "EEEE0003FFFF0003")

	if err := repo.SoftDelete(link.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	found, err := repo.GetByID(link.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if found != nil {
		t.Fatalf("soft deleted link should not resolve, got %+v", found)
	}

	// 数据行保留，仅打删除标记
	var total int64
	if err := db.Model(&models.AffiliateLink{}).Unscoped().Where("id = ?", link.ID).Count(&total).Error; err != nil {
		t.Fatalf("count unscoped failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("row should survive soft delete, count %d", total)
	}
}

func TestLinkRepositoryGetByTrackingCode(t *testing.T) {
	repo, db := setupLinkRepositoryTest(t)

	campaign := models.Campaign{
		Title:              "测试活动",
		TargetURL:          "https://shop.example.com/landing",
		Status:             constants.CampaignStatusActive,
		CommissionType:     constants.CommissionTypeFixed,
		CookieDurationDays: 30,
	}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	link := createLinkRepoTestLink(t, repo, 4, campaign.ID, "GGGG0004HHHH0004")

	found, err := repo.GetByTrackingCode("GGGG0004HHHH0004")
	if err != nil {
		t.Fatalf("get by tracking code failed: %v", err)
	}
	if found == nil || found.ID != link.ID {
		t.Fatalf("unexpected lookup result %+v", found)
	}
	if found.Campaign == nil || found.Campaign.ID != campaign.ID {
		t.Fatalf("campaign should be preloaded, got %+v", found.Campaign)
	}

	missing, err := repo.GetByTrackingCode("NONE0000NONE0000")
	if err != nil {
		t.Fatalf("lookup missing code failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing code should return nil, got %+v", missing)
	}
}
