package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinkStatsAggregate 单链接汇总统计。
// Conversions/Revenue 只含非欺诈转化，欺诈转化单独计数供对账。
type LinkStatsAggregate struct {
	Clicks           int64
	Conversions      int64
	FraudConversions int64
	Revenue          decimal.Decimal
}

// DailyStatsRow 按 UTC 日历日分桶的统计行
type DailyStatsRow struct {
	Day         string
	Clicks      int64
	Conversions int64
	Revenue     decimal.Decimal
}

// StatsRepository 统计聚合数据访问接口
type StatsRepository interface {
	AggregateLink(linkID uint) (LinkStatsAggregate, error)
	AggregateAffiliate(affiliateID uint) (LinkStatsAggregate, error)
	DailyBreakdown(linkID uint, from, to *time.Time) ([]DailyStatsRow, error)
}

// GormStatsRepository GORM 统计聚合仓储
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计聚合仓储
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// AggregateLink 汇总单链接统计，无数据时返回零值
func (r *GormStatsRepository) AggregateLink(linkID uint) (LinkStatsAggregate, error) {
	result := LinkStatsAggregate{Revenue: decimal.Zero}
	if linkID == 0 {
		return result, nil
	}

	if err := r.db.Model(&models.Click{}).
		Where("affiliate_link_id = ?", linkID).
		Count(&result.Clicks).Error; err != nil {
		return result, err
	}

	var row struct {
		Total   int64           `gorm:"column:total"`
		Revenue decimal.Decimal `gorm:"column:revenue"`
	}
	if err := r.db.Model(&models.Conversion{}).
		Joins("JOIN clicks ON clicks.id = conversions.click_id").
		Where("clicks.affiliate_link_id = ? AND conversions.is_fraud = ?", linkID, false).
		Select("COUNT(*) AS total, COALESCE(SUM(conversions.commission), 0) AS revenue").
		Scan(&row).Error; err != nil {
		return result, err
	}
	result.Conversions = row.Total
	result.Revenue = row.Revenue.Round(2)

	if err := r.db.Model(&models.Conversion{}).
		Joins("JOIN clicks ON clicks.id = conversions.click_id").
		Where("clicks.affiliate_link_id = ? AND conversions.is_fraud = ?", linkID, true).
		Count(&result.FraudConversions).Error; err != nil {
		return result, err
	}
	return result, nil
}

// AggregateAffiliate 汇总推广用户全部链接的统计
func (r *GormStatsRepository) AggregateAffiliate(affiliateID uint) (LinkStatsAggregate, error) {
	result := LinkStatsAggregate{Revenue: decimal.Zero}
	if affiliateID == 0 {
		return result, nil
	}

	// 软删除链接的历史数据仍计入汇总
	linkIDs := r.db.Model(&models.AffiliateLink{}).
		Unscoped().
		Where("affiliate_id = ?", affiliateID).
		Select("id")

	if err := r.db.Model(&models.Click{}).
		Where("affiliate_link_id IN (?)", linkIDs).
		Count(&result.Clicks).Error; err != nil {
		return result, err
	}

	var row struct {
		Total   int64           `gorm:"column:total"`
		Revenue decimal.Decimal `gorm:"column:revenue"`
	}
	if err := r.db.Model(&models.Conversion{}).
		Joins("JOIN clicks ON clicks.id = conversions.click_id").
		Where("clicks.affiliate_link_id IN (?) AND conversions.is_fraud = ?", linkIDs, false).
		Select("COUNT(*) AS total, COALESCE(SUM(conversions.commission), 0) AS revenue").
		Scan(&row).Error; err != nil {
		return result, err
	}
	result.Conversions = row.Total
	result.Revenue = row.Revenue.Round(2)

	if err := r.db.Model(&models.Conversion{}).
		Joins("JOIN clicks ON clicks.id = conversions.click_id").
		Where("clicks.affiliate_link_id IN (?) AND conversions.is_fraud = ?", linkIDs, true).
		Count(&result.FraudConversions).Error; err != nil {
		return result, err
	}
	return result, nil
}

// DailyBreakdown 按 UTC 日历日输出点击/转化/佣金分桶，升序排列
func (r *GormStatsRepository) DailyBreakdown(linkID uint, from, to *time.Time) ([]DailyStatsRow, error) {
	if linkID == 0 {
		return []DailyStatsRow{}, nil
	}

	type countRow struct {
		Day   string `gorm:"column:day"`
		Total int64  `gorm:"column:total"`
	}
	type revenueRow struct {
		Day     string          `gorm:"column:day"`
		Total   int64           `gorm:"column:total"`
		Revenue decimal.Decimal `gorm:"column:revenue"`
	}

	clickDayExpr := utcDayExpr(r.db, "created_at")
	clickQuery := r.db.Model(&models.Click{}).
		Select(fmt.Sprintf("%s AS day, COUNT(*) AS total", clickDayExpr)).
		Where("affiliate_link_id = ?", linkID)
	if from != nil {
		clickQuery = clickQuery.Where("created_at >= ?", *from)
	}
	if to != nil {
		clickQuery = clickQuery.Where("created_at <= ?", *to)
	}
	var clickRows []countRow
	if err := clickQuery.Group(clickDayExpr).Order("day asc").Scan(&clickRows).Error; err != nil {
		return nil, err
	}

	// 转化按归因点击的日历日分桶，晚到的转化仍落在点击当天
	convDayExpr := utcDayExpr(r.db, "clicks.created_at")
	convQuery := r.db.Model(&models.Conversion{}).
		Select(fmt.Sprintf("%s AS day, COUNT(*) AS total, COALESCE(SUM(conversions.commission), 0) AS revenue", convDayExpr)).
		Joins("JOIN clicks ON clicks.id = conversions.click_id").
		Where("clicks.affiliate_link_id = ? AND conversions.is_fraud = ?", linkID, false)
	if from != nil {
		convQuery = convQuery.Where("clicks.created_at >= ?", *from)
	}
	if to != nil {
		convQuery = convQuery.Where("clicks.created_at <= ?", *to)
	}
	var convRows []revenueRow
	if err := convQuery.Group(convDayExpr).Order("day asc").Scan(&convRows).Error; err != nil {
		return nil, err
	}

	merged := make(map[string]*DailyStatsRow, len(clickRows)+len(convRows))
	days := make([]string, 0, len(clickRows)+len(convRows))
	ensure := func(day string) *DailyStatsRow {
		if row, ok := merged[day]; ok {
			return row
		}
		row := &DailyStatsRow{Day: day, Revenue: decimal.Zero}
		merged[day] = row
		days = append(days, day)
		return row
	}
	for _, item := range clickRows {
		ensure(item.Day).Clicks = item.Total
	}
	for _, item := range convRows {
		row := ensure(item.Day)
		row.Conversions = item.Total
		row.Revenue = item.Revenue.Round(2)
	}

	sort.Strings(days)
	result := make([]DailyStatsRow, 0, len(days))
	for _, day := range days {
		result = append(result, *merged[day])
	}
	return result, nil
}
