package service

import (
	"testing"
	"time"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/shopspring/decimal"
)

func TestGetLinkStatsEmpty(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 4001, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	stats, err := env.statsService.GetLinkStats(profile.UserID, link.ID, nil, nil)
	if err != nil {
		t.Fatalf("get link stats failed: %v", err)
	}
	if stats.Clicks != 0 || stats.Conversions != 0 {
		t.Fatalf("empty stats want zeros got %+v", stats)
	}
	if got := stats.Revenue.String(); got != "0.00" {
		t.Fatalf("revenue want 0.00 got %s", got)
	}
	if stats.ConversionRate != 0 {
		t.Fatalf("conversion rate want 0 got %f", stats.ConversionRate)
	}
	if len(stats.Daily) != 0 {
		t.Fatalf("daily want empty got %d rows", len(stats.Daily))
	}
}

func TestGetLinkStatsAggregates(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 4002, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	now := time.Now().UTC()
	createTestClick(t, env.db, link.ID, "visitor-a", now.Add(-3*time.Hour))
	click := createTestClick(t, env.db, link.ID, "visitor-b", now.Add(-2*time.Hour))
	fraud := createTestClick(t, env.db, link.ID, "visitor-c", now.Add(-time.Hour))
	if err := env.clickRepo.MarkFraud(fraud.ID, fraudReasonBotAgent); err != nil {
		t.Fatalf("mark fraud failed: %v", err)
	}

	if _, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-2001",
	}); err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}
	// 欺诈点击上的转化留痕但不计入口径内的转化与佣金
	if _, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &fraud.ID,
		OrderID: "ORD-2002",
	}); err != nil {
		t.Fatalf("record fraud conversion failed: %v", err)
	}

	stats, err := env.statsService.GetLinkStats(profile.UserID, link.ID, nil, nil)
	if err != nil {
		t.Fatalf("get link stats failed: %v", err)
	}
	// 欺诈点击计入点击数，但不产生口径内转化
	if stats.Clicks != 3 {
		t.Fatalf("clicks want 3 got %d", stats.Clicks)
	}
	if stats.Conversions != 1 {
		t.Fatalf("conversions want 1 got %d", stats.Conversions)
	}
	if stats.FraudConversions != 1 {
		t.Fatalf("fraud conversions want 1 got %d", stats.FraudConversions)
	}
	if got := stats.Revenue.String(); got != "25.00" {
		t.Fatalf("revenue want 25.00 got %s", got)
	}
	want := float64(1) / float64(3)
	if stats.ConversionRate != want {
		t.Fatalf("conversion rate want %f got %f", want, stats.ConversionRate)
	}
	if stats.TrackingCode != link.TrackingCode {
		t.Fatalf("tracking code want %s got %s", link.TrackingCode, stats.TrackingCode)
	}
}

func TestGetLinkStatsDailyBuckets(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 4003, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	dayOne := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2026, 8, 21, 23, 30, 0, 0, time.UTC)
	createTestClick(t, env.db, link.ID, "visitor-d1", dayOne)
	createTestClick(t, env.db, link.ID, "visitor-d1b", dayOne.Add(time.Hour))
	createTestClick(t, env.db, link.ID, "visitor-d2", dayTwo)

	stats, err := env.statsService.GetLinkStats(profile.UserID, link.ID, nil, nil)
	if err != nil {
		t.Fatalf("get link stats failed: %v", err)
	}
	if len(stats.Daily) != 2 {
		t.Fatalf("daily buckets want 2 got %d", len(stats.Daily))
	}
	if stats.Daily[0].Date != "2026-08-20" || stats.Daily[0].Clicks != 2 {
		t.Fatalf("bucket 0 want 2026-08-20 clicks=2 got %+v", stats.Daily[0])
	}
	if stats.Daily[1].Date != "2026-08-21" || stats.Daily[1].Clicks != 1 {
		t.Fatalf("bucket 1 want 2026-08-21 clicks=1 got %+v", stats.Daily[1])
	}

	// 日期过滤只保留范围内的分桶
	from := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	filtered, err := env.statsService.GetLinkStats(profile.UserID, link.ID, &from, nil)
	if err != nil {
		t.Fatalf("get filtered link stats failed: %v", err)
	}
	if len(filtered.Daily) != 1 || filtered.Daily[0].Date != "2026-08-21" {
		t.Fatalf("filtered daily want single 2026-08-21 got %+v", filtered.Daily)
	}
}

func TestGetLinkStatsDailyBucketsConversionOnClickDay(t *testing.T) {
	env := setupServiceTest(t)

	campaign := createTestCampaign(t, env.db, models.Campaign{})
	profile := createTestProfile(t, env.db, 4005, constants.AffiliateProfileStatusActive)
	link, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	// 点击在两天前，转化今天才回传
	clickedAt := time.Now().UTC().AddDate(0, 0, -2)
	click := createTestClick(t, env.db, link.ID, "visitor-late", clickedAt)
	if _, err := env.conversionService.RecordConversion(RecordConversionInput{
		ClickID: &click.ID,
		OrderID: "ORD-2101",
	}); err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}

	stats, err := env.statsService.GetLinkStats(profile.UserID, link.ID, nil, nil)
	if err != nil {
		t.Fatalf("get link stats failed: %v", err)
	}
	if len(stats.Daily) != 1 {
		t.Fatalf("daily buckets want 1 got %d (%+v)", len(stats.Daily), stats.Daily)
	}
	// 转化归入点击当天的分桶，而非转化回传当天
	clickDay := clickedAt.Format("2006-01-02")
	bucket := stats.Daily[0]
	if bucket.Date != clickDay {
		t.Fatalf("bucket date want %s got %s", clickDay, bucket.Date)
	}
	if bucket.Clicks != 1 || bucket.Conversions != 1 {
		t.Fatalf("bucket want clicks=1 conversions=1 got %+v", bucket)
	}
	if got := bucket.Revenue.String(); got != "25.00" {
		t.Fatalf("bucket revenue want 25.00 got %s", got)
	}
}

func TestGetAffiliateSummary(t *testing.T) {
	env := setupServiceTest(t)

	fixedCampaign := createTestCampaign(t, env.db, models.Campaign{})
	otherCampaign := createTestCampaign(t, env.db, models.Campaign{
		CommissionType:   constants.CommissionTypeFixed,
		CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
	})
	profile := createTestProfile(t, env.db, 4004, constants.AffiliateProfileStatusActive)

	linkA, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: fixedCampaign.ID})
	if err != nil {
		t.Fatalf("create link A failed: %v", err)
	}
	linkB, err := env.linkService.CreateLink(profile.UserID, CreateLinkInput{CampaignID: otherCampaign.ID})
	if err != nil {
		t.Fatalf("create link B failed: %v", err)
	}

	now := time.Now().UTC()
	clickA := createTestClick(t, env.db, linkA.ID, "visitor-sum-a", now.Add(-2*time.Hour))
	clickB := createTestClick(t, env.db, linkB.ID, "visitor-sum-b", now.Add(-time.Hour))

	convA, err := env.conversionService.RecordConversion(RecordConversionInput{ClickID: &clickA.ID, OrderID: "ORD-3001"})
	if err != nil {
		t.Fatalf("record conversion A failed: %v", err)
	}
	if _, err := env.conversionService.RecordConversion(RecordConversionInput{ClickID: &clickB.ID, OrderID: "ORD-3002"}); err != nil {
		t.Fatalf("record conversion B failed: %v", err)
	}
	if _, err := env.conversionService.ReviewConversion(convA.ID, constants.ConversionReviewActionApprove); err != nil {
		t.Fatalf("approve conversion A failed: %v", err)
	}

	// 软删除链接的历史数据仍计入汇总
	if err := env.linkService.DeleteLink(profile.UserID, linkB.ID); err != nil {
		t.Fatalf("delete link B failed: %v", err)
	}

	summary, err := env.statsService.GetAffiliateSummary(profile.UserID)
	if err != nil {
		t.Fatalf("get affiliate summary failed: %v", err)
	}
	if summary.Clicks != 2 {
		t.Fatalf("clicks want 2 got %d", summary.Clicks)
	}
	if summary.Conversions != 2 {
		t.Fatalf("conversions want 2 got %d", summary.Conversions)
	}
	if summary.FraudConversions != 0 {
		t.Fatalf("fraud conversions want 0 got %d", summary.FraudConversions)
	}
	if got := summary.Revenue.String(); got != "65.00" {
		t.Fatalf("revenue want 65.00 got %s", got)
	}
	if got := summary.ApprovedCommission.String(); got != "25.00" {
		t.Fatalf("approved commission want 25.00 got %s", got)
	}
	if got := summary.PendingCommission.String(); got != "40.00" {
		t.Fatalf("pending commission want 40.00 got %s", got)
	}
}
