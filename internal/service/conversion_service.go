package service

import (
	"strings"
	"time"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConversionService 转化归因与佣金业务服务
type ConversionService struct {
	conversionRepo repository.ConversionRepository
	clickRepo      repository.ClickRepository
	linkRepo       repository.AffiliateLinkRepository
	profileRepo    repository.AffiliateProfileRepository
	commissionRepo repository.CommissionEntryRepository
	linkService    *LinkService
}

// NewConversionService 创建转化归因服务
func NewConversionService(
	conversionRepo repository.ConversionRepository,
	clickRepo repository.ClickRepository,
	linkRepo repository.AffiliateLinkRepository,
	profileRepo repository.AffiliateProfileRepository,
	commissionRepo repository.CommissionEntryRepository,
	linkService *LinkService,
) *ConversionService {
	return &ConversionService{
		conversionRepo: conversionRepo,
		clickRepo:      clickRepo,
		linkRepo:       linkRepo,
		profileRepo:    profileRepo,
		commissionRepo: commissionRepo,
		linkService:    linkService,
	}
}

// RecordConversionInput 转化上报输入。
// ClickID 优先；缺省时按 跟踪码+访客标识 匹配最近一次有效点击。
type RecordConversionInput struct {
	ClickID     *uint
	Code        string
	VisitorKey  string
	OrderID     string
	GrossAmount *decimal.Decimal
}

// RecordConversion 记录转化：归因校验 → 同步计算佣金 → 事务落账。
// 校验顺序固定：归因点击存在 → 活动可接单 → 归因窗口未过期。
func (s *ConversionService) RecordConversion(input RecordConversionInput) (*models.Conversion, error) {
	click, link, err := s.resolveAttribution(input)
	if err != nil {
		return nil, err
	}

	campaign := link.Campaign
	if campaign == nil {
		return nil, ErrNotFound
	}
	if campaign.Status != constants.CampaignStatusActive {
		return nil, ErrCampaignInactive
	}

	window := time.Duration(campaign.CookieDurationDays) * 24 * time.Hour
	if time.Now().UTC().Sub(click.CreatedAt.UTC()) > window {
		return nil, ErrAttributionExpired
	}

	profile, err := s.profileRepo.GetByID(link.AffiliateID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	result, err := ComputeCommission(CommissionInput{
		CommissionType:       campaign.CommissionType,
		CommissionAmount:     campaign.CommissionAmount.Decimal,
		GrossAmount:          input.GrossAmount,
		EnableTiers:          campaign.EnableTiers,
		TierCommissions:      campaign.TierCommissions,
		AffiliateTier:        profile.CommissionTier,
		HasParent:            profile.ParentAffiliateID != nil,
		ReferrerSplitPercent: campaign.ReferrerSplitPercent.Decimal,
	})
	if err != nil {
		return nil, err
	}

	var grossAmount *models.Money
	if input.GrossAmount != nil {
		m := models.NewMoneyFromDecimal(*input.GrossAmount)
		grossAmount = &m
	}

	conversion := &models.Conversion{
		ClickID:     click.ID,
		OrderID:     strings.TrimSpace(input.OrderID),
		GrossAmount: grossAmount,
		Commission:  result.Direct,
		Status:      constants.ConversionStatusPending,
		IsFraud:     click.IsFraud,
		FraudReason: click.FraudReason,
	}

	if err := s.linkRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.conversionRepo.WithTx(tx).Create(conversion); err != nil {
			return err
		}
		// 欺诈点击的转化保留审计痕迹，不进入佣金流水与链接累计
		if conversion.IsFraud {
			return nil
		}
		commissionTx := s.commissionRepo.WithTx(tx)
		if err := commissionTx.Create(&models.CommissionEntry{
			AffiliateID:  link.AffiliateID,
			ConversionID: conversion.ID,
			EntryType:    constants.CommissionEntryTypeConversion,
			Amount:       result.Direct,
			Status:       constants.ConversionStatusPending,
		}); err != nil {
			return err
		}
		if profile.ParentAffiliateID != nil && result.Referral.Decimal.IsPositive() {
			if err := commissionTx.Create(&models.CommissionEntry{
				AffiliateID:  *profile.ParentAffiliateID,
				ConversionID: conversion.ID,
				EntryType:    constants.CommissionEntryTypeReferral,
				Amount:       result.Referral,
				Status:       constants.ConversionStatusPending,
			}); err != nil {
				return err
			}
		}
		return s.linkRepo.WithTx(tx).ApplyConversion(link.ID, result.Direct.Decimal)
	}); err != nil {
		return nil, err
	}

	return s.conversionRepo.GetByID(conversion.ID)
}

// resolveAttribution 解析归因点击与所属链接。
// 按 码+访客 匹配时欺诈点击不参与归因；显式 ClickID 允许命中欺诈点击，
// 由上层落一条带标记的转化。软删除或被拒绝的链接不再接受新转化。
func (s *ConversionService) resolveAttribution(input RecordConversionInput) (*models.Click, *models.AffiliateLink, error) {
	var click *models.Click

	if input.ClickID != nil {
		found, err := s.clickRepo.GetByID(*input.ClickID)
		if err != nil {
			return nil, nil, err
		}
		if found == nil {
			return nil, nil, ErrNotFound
		}
		click = found
	} else {
		link, err := s.linkService.ResolveByCode(input.Code)
		if err != nil {
			return nil, nil, err
		}
		visitorKey := strings.TrimSpace(input.VisitorKey)
		if visitorKey == "" {
			return nil, nil, ErrNotFound
		}
		found, err := s.clickRepo.GetLatestValidByCodeVisitor(link.ID, visitorKey)
		if err != nil {
			return nil, nil, err
		}
		if found == nil {
			return nil, nil, ErrNotFound
		}
		click = found
	}

	link, err := s.linkRepo.GetByID(click.AffiliateLinkID)
	if err != nil {
		return nil, nil, err
	}
	if link == nil || link.Status == constants.AffiliateLinkStatusRejected {
		return nil, nil, ErrNotFound
	}
	return click, link, nil
}

// ReviewConversion 审核转化（内部接口）。重复提交同一结论幂等返回。
func (s *ConversionService) ReviewConversion(conversionID uint, action string) (*models.Conversion, error) {
	var targetStatus string
	switch strings.TrimSpace(action) {
	case constants.ConversionReviewActionApprove:
		targetStatus = constants.ConversionStatusApproved
	case constants.ConversionReviewActionReject:
		targetStatus = constants.ConversionStatusRejected
	default:
		return nil, ErrConversionStatusInvalid
	}

	if err := s.linkRepo.Transaction(func(tx *gorm.DB) error {
		conversionTx := s.conversionRepo.WithTx(tx)
		conversion, err := conversionTx.GetByIDForUpdate(conversionID)
		if err != nil {
			return err
		}
		if conversion == nil {
			return ErrNotFound
		}
		if conversion.Status == targetStatus {
			return nil
		}
		if conversion.Status != constants.ConversionStatusPending {
			return ErrConversionStatusInvalid
		}

		conversion.Status = targetStatus
		if err := conversionTx.Update(conversion); err != nil {
			return err
		}

		commissionTx := s.commissionRepo.WithTx(tx)
		entries, err := commissionTx.ListByConversionForUpdate(conversion.ID)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(entries))
		for _, entry := range entries {
			ids = append(ids, entry.ID)
		}
		return commissionTx.BatchUpdateStatus(ids, targetStatus)
	}); err != nil {
		return nil, err
	}

	return s.conversionRepo.GetByID(conversionID)
}

// GetConversion 查询单条转化（内部接口）
func (s *ConversionService) GetConversion(conversionID uint) (*models.Conversion, error) {
	conversion, err := s.conversionRepo.GetByID(conversionID)
	if err != nil {
		return nil, err
	}
	if conversion == nil {
		return nil, ErrNotFound
	}
	return conversion, nil
}

// ListConversions 分页查询推广用户名下链接的转化，可按状态与日期过滤
func (s *ConversionService) ListConversions(affiliateUserID, linkID uint, page, pageSize int, status string, from, to *time.Time) ([]models.Conversion, int64, error) {
	link, err := s.linkService.GetLink(affiliateUserID, linkID)
	if err != nil {
		return nil, 0, err
	}
	return s.conversionRepo.List(repository.ConversionListFilter{
		Page:            page,
		PageSize:        pageSize,
		AffiliateLinkID: link.ID,
		Status:          strings.TrimSpace(status),
		CreatedFrom:     from,
		CreatedTo:       to,
	})
}
