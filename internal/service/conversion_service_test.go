package service

import (
	"errors"
	"testing"
	"time"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/repository"
	"github.com/shopspring/decimal"
)

func TestRecordConversionFixedCommission(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 3001, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	click := createTestClick(t, env.db, link.ID, "visitor-fixed", time.Now().UTC().Add(-time.Hour))

	conversion, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-1001",
	})
	if err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}
	if conversion.Status != constants.ConversionStatusPending {
		t.Fatalf("status want pending got %s", conversion.Status)
	}
	if got := conversion.Commission.String(); got != "25.00" {
		t.Fatalf("commission want 25.00 got %s", got)
	}
	if conversion.ClickID != click.ID {
		t.Fatalf("click id want %d got %d", click.ID, conversion.ClickID)
	}

	entries, _, err := env.commissionRepo.List(repository.CommissionEntryListFilter{ConversionID: conversion.ID})
	if err != nil {
		t.Fatalf("list commission entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries want 1 got %d", len(entries))
	}
	entry := entries[0]
	if entry.AffiliateID != profile.ID || entry.EntryType != constants.CommissionEntryTypeConversion {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if got := entry.Amount.String(); got != "25.00" {
		t.Fatalf("entry amount want 25.00 got %s", got)
	}
	if entry.Status != constants.ConversionStatusPending {
		t.Fatalf("entry status want pending got %s", entry.Status)
	}

	reloaded := reloadTestLink(t, env, link.ID)
	if reloaded.ConversionCount != 1 {
		t.Fatalf("conversion count want 1 got %d", reloaded.ConversionCount)
	}
	if got := reloaded.Revenue.String(); got != "25.00" {
		t.Fatalf("link revenue want 25.00 got %s", got)
	}
}

func TestRecordConversionPercentageRequiresAmount(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{
		CommissionType:   constants.CommissionTypePercentage,
		CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(12)),
	})
	profile := createTestProfile(t, env.db, 3002, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	click := createTestClick(t, env.db, link.ID, "visitor-pct", time.Now().UTC().Add(-time.Hour))

	_, err = env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-1002",
	})
	if !errors.Is(err, ErrMissingGrossAmount) {
		t.Fatalf("want ErrMissingGrossAmount got %v", err)
	}

	conversion, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID:     &click.ID,
		OrderID:     "ORD-1002",
		GrossAmount: decimalPtr(decimal.NewFromInt(10000)),
	})
	if err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}
	if got := conversion.Commission.String(); got != "1200.00" {
		t.Fatalf("commission want 1200.00 got %s", got)
	}
	if conversion.GrossAmount == nil || conversion.GrossAmount.String() != "10000.00" {
		t.Fatalf("gross amount want 10000.00 got %+v", conversion.GrossAmount)
	}
}

func TestRecordConversionByCodeVisitorPicksLatestValidClick(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 3003, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	now := time.Now().UTC()
	older := createTestClick(t, env.db, link.ID, "visitor-match", now.Add(-2*time.Hour))
	latest := createTestClick(t, env.db, link.ID, "visitor-match", now.Add(-time.Hour))
	// 最近一次点击被判定欺诈时回退到更早的有效点击
	if err := env.clickRepo.MarkFraud(latest.ID, fraudReasonBotAgent); err != nil {
		t.Fatalf("mark fraud failed: %v", err)
	}

	conversion, err := env.conversionService.RecordConversion(RecordConversionInput{
		Code:       link.TrackingCode,
		VisitorKey: "visitor-match",
		OrderID:    "ORD-1003",
	})
	if err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}
	if conversion.ClickID != older.ID {
		t.Fatalf("click id want %d got %d", older.ID, conversion.ClickID)
	}
}

func TestRecordConversionNoAttributableClick(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 3004, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	_, err = env.conversionService.RecordConversion(RecordConversionInput{
		Code:       link.TrackingCode,
		VisitorKey: "visitor-unknown",
		OrderID:    "ORD-1004",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestRecordConversionFraudClickExcludedFromLedger(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 3005, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	click := createTestClick(t, env.db, link.ID, "visitor-fraud", time.Now().UTC().Add(-time.Hour))
	if err := env.clickRepo.MarkFraud(click.ID, fraudReasonClickRate); err != nil {
		t.Fatalf("mark fraud failed: %v", err)
	}

	// 显式 ClickID 允许落一条带标记的转化，保留审计痕迹
	conversion, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-1005",
	})
	if err != nil {
		t.Fatalf("record fraud-click conversion failed: %v", err)
	}
	if !conversion.IsFraud || conversion.FraudReason != fraudReasonClickRate {
		t.Fatalf("conversion should carry fraud flag, got %+v", conversion)
	}

	// 不进入佣金流水与链接累计
	entries, _, err := env.commissionRepo.List(repository.CommissionEntryListFilter{ConversionID: conversion.ID})
	if err != nil {
		t.Fatalf("list commission entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("fraud conversion should have no ledger entries, got %d", len(entries))
	}
	reloaded := reloadTestLink(t, env, link.ID)
	if reloaded.ConversionCount != 0 {
		t.Fatalf("conversion count want 0 got %d", reloaded.ConversionCount)
	}
	if got := reloaded.Revenue.String(); got != "0.00" {
		t.Fatalf("link revenue want 0.00 got %s", got)
	}
}

func TestRecordConversionVisitorPathSkipsFraudOnly(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 3011, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	click := createTestClick(t, env.db, link.ID, "visitor-fraud-only", time.Now().UTC().Add(-time.Hour))
	if err := env.clickRepo.MarkFraud(click.ID, fraudReasonBotAgent); err != nil {
		t.Fatalf("mark fraud failed: %v", err)
	}

	// 码+访客 匹配不命中欺诈点击
	_, err = env.conversionService.RecordConversion(RecordConversionInput{
		Code:       link.TrackingCode,
		VisitorKey: "visitor-fraud-only",
		OrderID:    "ORD-1011",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("visitor path should skip fraud clicks, got %v", err)
	}
}

func TestRecordConversionAttributionWindow(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{CookieDurationDays: 30})
	profile := createTestProfile(t, env.db, 3006, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	now := time.Now().UTC()
	inWindow := createTestClick(t, env.db, link.ID, "visitor-window-in", now.Add(-29*24*time.Hour))
	expired := createTestClick(t, env.db, link.ID, "visitor-window-out", now.Add(-31*24*time.Hour))

	if _, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &inWindow.ID,
		OrderID: "ORD-1006",
	}); err != nil {
		t.Fatalf("conversion inside window failed: %v", err)
	}

	_, err = env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &expired.ID,
		OrderID: "ORD-1007",
	})
	if !errors.Is(err, ErrAttributionExpired) {
		t.Fatalf("want ErrAttributionExpired got %v", err)
	}
}

func TestRecordConversionPausedCampaign(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 3007, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	click := createTestClick(t, env.db, link.ID, "visitor-paused", time.Now().UTC().Add(-time.Hour))

	campaign.Status = constants.CampaignStatusPaused
	if err := env.campaignRepo.Update(&campaign); err != nil {
		t.Fatalf("pause campaign failed: %v", err)
	}

	_, err = env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-1008",
	})
	if !errors.Is(err, ErrCampaignInactive) {
		t.Fatalf("want ErrCampaignInactive got %v", err)
	}
}

func TestRecordConversionReferralSplit(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{
		CommissionType:       constants.CommissionTypeFixed,
		CommissionAmount:     models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
		ReferrerSplitPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	})
	parent := createTestProfile(t, env.db, 3008, constants.AffiliateProfileStatusActive)
	child := models.AffiliateProfile{
		UserID:            3009,
		Status:            constants.AffiliateProfileStatusActive,
		CommissionTier:    1,
		ParentAffiliateID: &parent.ID,
	}
	if err := env.db.Create(&child).Error; err != nil {
		t.Fatalf("create child profile failed: %v", err)
	}

	link, err := env.linkService.CreateLink(child.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	click := createTestClick(t, env.db, link.ID, "visitor-referral", time.Now().UTC().Add(-time.Hour))

	conversion, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-1009",
	})
	if err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}

	entries, _, err := env.commissionRepo.List(repository.CommissionEntryListFilter{ConversionID: conversion.ID})
	if err != nil {
		t.Fatalf("list commission entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries want 2 got %d", len(entries))
	}

	byType := make(map[string]models.CommissionEntry, len(entries))
	for _, entry := range entries {
		byType[entry.EntryType] = entry
	}
	direct, ok := byType[constants.CommissionEntryTypeConversion]
	if !ok || direct.AffiliateID != child.ID || direct.Amount.String() != "1000.00" {
		t.Fatalf("unexpected direct entry %+v", direct)
	}
	referral, ok := byType[constants.CommissionEntryTypeReferral]
	if !ok || referral.AffiliateID != parent.ID || referral.Amount.String() != "100.00" {
		t.Fatalf("unexpected referral entry %+v", referral)
	}

	// 链接累计收益仅计直接佣金
	reloaded := reloadTestLink(t, env, link.ID)
	if got := reloaded.Revenue.String(); got != "1000.00" {
		t.Fatalf("link revenue want 1000.00 got %s", got)
	}
}

func TestReviewConversion(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 3010, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	click := createTestClick(t, env.db, link.ID, "visitor-review", time.Now().UTC().Add(-time.Hour))

	conversion, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-1010",
	})
	if err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}

	approved, err := env.conversionService.ReviewConversion(conversion.ID, constants.ConversionReviewActionApprove)
	if err != nil {
		t.Fatalf("approve conversion failed: %v", err)
	}
	if approved.Status != constants.ConversionStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}

	// 佣金流水跟随转化审核
	entries, _, err := env.commissionRepo.List(repository.CommissionEntryListFilter{ConversionID: conversion.ID})
	if err != nil {
		t.Fatalf("list commission entries failed: %v", err)
	}
	for _, entry := range entries {
		if entry.Status != constants.ConversionStatusApproved {
			t.Fatalf("entry status want approved got %s", entry.Status)
		}
	}

	// 重复提交同一结论幂等
	again, err := env.conversionService.ReviewConversion(conversion.ID, constants.ConversionReviewActionApprove)
	if err != nil {
		t.Fatalf("repeated approve should be idempotent: %v", err)
	}
	if again.Status != constants.ConversionStatusApproved {
		t.Fatalf("status want approved got %s", again.Status)
	}

	// 终态后提交相反结论拒绝
	if _, err := env.conversionService.ReviewConversion(conversion.ID, constants.ConversionReviewActionReject); !errors.Is(err, ErrConversionStatusInvalid) {
		t.Fatalf("want ErrConversionStatusInvalid got %v", err)
	}
}

func TestReviewConversionInvalidInput(t *testing.T) {
	env := setupServiceTest(t)

	if _, err := env.conversionService.ReviewConversion(1, "archive"); !errors.Is(err, ErrConversionStatusInvalid) {
		t.Fatalf("want ErrConversionStatusInvalid got %v", err)
	}
	if _, err := env.conversionService.ReviewConversion(9999, constants.ConversionReviewActionApprove); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}
