package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/akiranaka1984/affiliate/internal/config"
	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/provider"
	"github.com/akiranaka1984/affiliate/internal/queue"
	"github.com/akiranaka1984/affiliate/internal/repository"
	"github.com/akiranaka1984/affiliate/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Campaign{},
		&models.AffiliateProfile{},
		&models.AffiliateLink{},
		&models.Click{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	clickRepo := repository.NewClickRepository(db)
	linkRepo := repository.NewAffiliateLinkRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	profileRepo := repository.NewAffiliateProfileRepository(db)
	linkService := service.NewLinkService(linkRepo, campaignRepo, profileRepo, config.TrackingConfig{})
	scorer := service.NewThresholdFraudScorer(clickRepo, 2, time.Minute)
	clickService := service.NewClickService(clickRepo, linkRepo, linkService, scorer, nil)

	container := &provider.Container{
		ClickRepo:    clickRepo,
		LinkRepo:     linkRepo,
		ClickService: clickService,
	}
	return NewConsumer(container), db
}

func TestHandleClickFraudScanFlagsBurst(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	link := models.AffiliateLink{
		AffiliateID:  1,
		CampaignID:   1,
		TrackingCode: "WORK0001TEST0001",
		Status:       constants.AffiliateLinkStatusApproved,
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	now := time.Now().UTC()
	var clicks []models.Click
	for i := 0; i < 3; i++ {
		click := models.Click{
			AffiliateLinkID: link.ID,
			VisitorKey:      "visitor-worker",
			UserAgent:       "Mozilla/5.0",
			CreatedAt:       now.Add(-time.Duration(i) * time.Second),
		}
		if err := db.Create(&click).Error; err != nil {
			t.Fatalf("create click failed: %v", err)
		}
		clicks = append(clicks, click)
	}

	task, err := queue.NewClickFraudScanTask(queue.ClickFraudScanPayload{ClickID: clicks[0].ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleClickFraudScan(context.Background(), task); err != nil {
		t.Fatalf("handle click fraud scan failed: %v", err)
	}

	var reloaded models.Click
	if err := db.First(&reloaded, clicks[0].ID).Error; err != nil {
		t.Fatalf("reload click failed: %v", err)
	}
	if !reloaded.IsFraud {
		t.Fatalf("burst click should be flagged after rescan")
	}
}

func TestHandleClickFraudScanInvalidPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskClickFraudScan, []byte("not-json"))
	if err := consumer.handleClickFraudScan(context.Background(), task); err == nil {
		t.Fatalf("invalid payload should return error")
	}

	empty := asynq.NewTask(queue.TaskClickFraudScan, []byte(`{"click_id":0}`))
	if err := consumer.handleClickFraudScan(context.Background(), empty); err != nil {
		t.Fatalf("zero click id should be skipped without error: %v", err)
	}
}

func TestHandleClickFraudScanUnknownClick(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task, err := queue.NewClickFraudScanTask(queue.ClickFraudScanPayload{ClickID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleClickFraudScan(context.Background(), task); err != nil {
		t.Fatalf("unknown click should be a no-op: %v", err)
	}
}
