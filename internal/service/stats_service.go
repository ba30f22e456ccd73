package service

import (
	"time"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/repository"
)

// StatsService 推广统计业务服务
type StatsService struct {
	statsRepo      repository.StatsRepository
	commissionRepo repository.CommissionEntryRepository
	linkService    *LinkService
}

// NewStatsService 创建推广统计服务
func NewStatsService(
	statsRepo repository.StatsRepository,
	commissionRepo repository.CommissionEntryRepository,
	linkService *LinkService,
) *StatsService {
	return &StatsService{
		statsRepo:      statsRepo,
		commissionRepo: commissionRepo,
		linkService:    linkService,
	}
}

// DailyStat 单日统计（UTC 日粒度）
type DailyStat struct {
	Date        string       `json:"date"`
	Clicks      int64        `json:"clicks"`
	Conversions int64        `json:"conversions"`
	Revenue     models.Money `json:"revenue"`
}

// LinkStats 单链接统计：累计值 + 按日明细。
// Conversions/Revenue 与链接累计口径一致，欺诈转化单列便于对账。
type LinkStats struct {
	LinkID           uint         `json:"link_id"`
	TrackingCode     string       `json:"tracking_code"`
	Clicks           int64        `json:"clicks"`
	Conversions      int64        `json:"conversions"`
	FraudConversions int64        `json:"fraud_conversions"`
	Revenue          models.Money `json:"revenue"`
	ConversionRate   float64      `json:"conversion_rate"`
	Daily            []DailyStat  `json:"daily"`
}

// AffiliateSummary 推广用户汇总
type AffiliateSummary struct {
	Clicks             int64        `json:"clicks"`
	Conversions        int64        `json:"conversions"`
	FraudConversions   int64        `json:"fraud_conversions"`
	Revenue            models.Money `json:"revenue"`
	ConversionRate     float64      `json:"conversion_rate"`
	PendingCommission  models.Money `json:"pending_commission"`
	ApprovedCommission models.Money `json:"approved_commission"`
}

// GetLinkStats 查询推广用户单链接统计，无数据时返回全零
func (s *StatsService) GetLinkStats(affiliateUserID, linkID uint, from, to *time.Time) (*LinkStats, error) {
	link, err := s.linkService.GetLink(affiliateUserID, linkID)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.statsRepo.AggregateLink(link.ID)
	if err != nil {
		return nil, err
	}
	rows, err := s.statsRepo.DailyBreakdown(link.ID, from, to)
	if err != nil {
		return nil, err
	}

	daily := make([]DailyStat, 0, len(rows))
	for _, row := range rows {
		daily = append(daily, DailyStat{
			Date:        row.Day,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
			Revenue:     models.NewMoneyFromDecimal(row.Revenue),
		})
	}

	return &LinkStats{
		LinkID:           link.ID,
		TrackingCode:     link.TrackingCode,
		Clicks:           aggregate.Clicks,
		Conversions:      aggregate.Conversions,
		FraudConversions: aggregate.FraudConversions,
		Revenue:          models.NewMoneyFromDecimal(aggregate.Revenue),
		ConversionRate:   conversionRate(aggregate.Clicks, aggregate.Conversions),
		Daily:            daily,
	}, nil
}

// GetAffiliateSummary 查询推广用户全量汇总（含已软删除链接的历史数据）
func (s *StatsService) GetAffiliateSummary(affiliateUserID uint) (*AffiliateSummary, error) {
	profile, err := s.linkService.resolveProfile(affiliateUserID)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.statsRepo.AggregateAffiliate(profile.ID)
	if err != nil {
		return nil, err
	}
	pending, err := s.commissionRepo.SumByAffiliate(profile.ID, []string{constants.ConversionStatusPending})
	if err != nil {
		return nil, err
	}
	approved, err := s.commissionRepo.SumByAffiliate(profile.ID, []string{constants.ConversionStatusApproved})
	if err != nil {
		return nil, err
	}

	return &AffiliateSummary{
		Clicks:             aggregate.Clicks,
		Conversions:        aggregate.Conversions,
		FraudConversions:   aggregate.FraudConversions,
		Revenue:            models.NewMoneyFromDecimal(aggregate.Revenue),
		ConversionRate:     conversionRate(aggregate.Clicks, aggregate.Conversions),
		PendingCommission:  models.NewMoneyFromDecimal(pending),
		ApprovedCommission: models.NewMoneyFromDecimal(approved),
	}, nil
}

func conversionRate(clicks, conversions int64) float64 {
	if clicks <= 0 {
		return 0
	}
	return float64(conversions) / float64(clicks)
}
