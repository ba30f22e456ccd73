package main

import (
	"github.com/akiranaka1984/affiliate/internal/config"
	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/logger"
	"github.com/akiranaka1984/affiliate/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示活动
	campaigns := []models.Campaign{
		{
			Title:              "新用户注册推广",
			TargetURL:          "https://shop.example.com/signup",
			Status:             constants.CampaignStatusActive,
			ApprovalRequired:   false,
			CookieDurationDays: 30,
			CommissionType:     constants.CommissionTypeFixed,
			CommissionAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		},
		{
			Title:              "全站订单分成",
			TargetURL:          "https://shop.example.com",
			Status:             constants.CampaignStatusActive,
			ApprovalRequired:   true,
			CookieDurationDays: 30,
			CommissionType:     constants.CommissionTypePercentage,
			CommissionAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(12)),
			EnableTiers:        true,
			TierCommissions: models.JSON(map[string]interface{}{
				"1": 100,
				"2": 125,
				"3": 150,
			}),
			ReferrerSplitPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		},
		{
			Title:              "夏季促销专场",
			TargetURL:          "https://shop.example.com/summer-sale",
			Status:             constants.CampaignStatusPaused,
			ApprovalRequired:   true,
			CookieDurationDays: 7,
			CommissionType:     constants.CommissionTypePercentage,
			CommissionAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
		},
	}

	for _, campaign := range campaigns {
		var existing models.Campaign
		if err := models.DB.Where("title = ?", campaign.Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&campaign).Error; err != nil {
				stdLog.Printf("Failed to create campaign %s: %v", campaign.Title, err)
			} else {
				stdLog.Printf("Created campaign: %s", campaign.Title)
			}
		} else {
			stdLog.Printf("Campaign already exists: %s", campaign.Title)
		}
	}

	// 演示推广用户：2001 为一级推广人，2002 挂在其名下
	parent := seedProfile(stdLog.Printf, models.AffiliateProfile{
		UserID:         2001,
		DisplayName:    "演示推广人",
		Status:         constants.AffiliateProfileStatusActive,
		CommissionTier: 2,
	})
	if parent != nil {
		seedProfile(stdLog.Printf, models.AffiliateProfile{
			UserID:            2002,
			DisplayName:       "演示下级推广人",
			Status:            constants.AffiliateProfileStatusActive,
			CommissionTier:    1,
			ParentAffiliateID: &parent.ID,
		})
	}

	stdLog.Printf("Seed finished")
}

func seedProfile(logf func(format string, args ...interface{}), profile models.AffiliateProfile) *models.AffiliateProfile {
	var existing models.AffiliateProfile
	if err := models.DB.Where("user_id = ?", profile.UserID).First(&existing).Error; err == nil {
		logf("Affiliate profile already exists: user %d", profile.UserID)
		return &existing
	}
	if err := models.DB.Create(&profile).Error; err != nil {
		logf("Failed to create affiliate profile for user %d: %v", profile.UserID, err)
		return nil
	}
	logf("Created affiliate profile: user %d", profile.UserID)
	return &profile
}
