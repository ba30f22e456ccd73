package service

import (
	"context"
	"strings"
	"time"

	"github.com/akiranaka1984/affiliate/internal/cache"
	"github.com/akiranaka1984/affiliate/internal/config"
	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/logger"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/repository"
)

const defaultCodeMaxRetry = 8

// LinkService 推广链接业务服务
type LinkService struct {
	linkRepo     repository.AffiliateLinkRepository
	campaignRepo repository.CampaignRepository
	profileRepo  repository.AffiliateProfileRepository
	trackingCfg  config.TrackingConfig
}

// NewLinkService 创建推广链接服务
func NewLinkService(
	linkRepo repository.AffiliateLinkRepository,
	campaignRepo repository.CampaignRepository,
	profileRepo repository.AffiliateProfileRepository,
	trackingCfg config.TrackingConfig,
) *LinkService {
	return &LinkService{
		linkRepo:     linkRepo,
		campaignRepo: campaignRepo,
		profileRepo:  profileRepo,
		trackingCfg:  trackingCfg,
	}
}

// CreateLinkInput 创建推广链接输入
type CreateLinkInput struct {
	CampaignID  uint
	DisplayName string
	CustomSlug  string
}

// CreateLink 为推广用户在指定活动下创建链接。
// 同一推广用户在同一活动下最多一条链接，重复创建返回 ErrLinkAlreadyExists。
func (s *LinkService) CreateLink(affiliateUserID uint, input CreateLinkInput) (*models.AffiliateLink, error) {
	profile, err := s.resolveActiveProfile(affiliateUserID)
	if err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetByID(input.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrNotFound
	}
	if campaign.Status != constants.CampaignStatusActive {
		return nil, ErrCampaignInactive
	}

	existing, err := s.linkRepo.GetByPair(profile.ID, campaign.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLinkAlreadyExists
	}

	status := constants.AffiliateLinkStatusApproved
	if campaign.ApprovalRequired {
		status = constants.AffiliateLinkStatusPending
	}

	var customSlug *string
	if slug := strings.TrimSpace(input.CustomSlug); slug != "" {
		customSlug = &slug
	}

	maxRetry := s.trackingCfg.CodeMaxRetry
	if maxRetry <= 0 {
		maxRetry = defaultCodeMaxRetry
	}
	for i := 0; i < maxRetry; i++ {
		code, genErr := generateTrackingCode(campaign.ID, profile.ID)
		if genErr != nil {
			return nil, genErr
		}
		link := &models.AffiliateLink{
			AffiliateID:  profile.ID,
			CampaignID:   campaign.ID,
			TrackingCode: code,
			CustomSlug:   customSlug,
			DisplayName:  strings.TrimSpace(input.DisplayName),
			Status:       status,
		}
		if err := s.linkRepo.Create(link); err != nil {
			if isUniqueViolation(err) {
				// 唯一冲突可能来自 活动对、自定义短链 或 跟踪码，仅跟踪码冲突可重试
				dup, dupErr := s.linkRepo.GetByPair(profile.ID, campaign.ID)
				if dupErr != nil {
					return nil, dupErr
				}
				if dup != nil {
					return nil, ErrLinkAlreadyExists
				}
				if customSlug != nil {
					taken, slugErr := s.linkRepo.GetByCustomSlug(*customSlug)
					if slugErr != nil {
						return nil, slugErr
					}
					if taken != nil {
						return nil, ErrLinkAlreadyExists
					}
				}
				continue
			}
			return nil, err
		}
		created, err := s.linkRepo.GetByID(link.ID)
		if err != nil {
			return nil, err
		}
		if created != nil {
			return created, nil
		}
		return link, nil
	}
	return nil, ErrTrackingCodeExhausted
}

// GetLink 查询推广用户自己的链接
func (s *LinkService) GetLink(affiliateUserID, linkID uint) (*models.AffiliateLink, error) {
	profile, err := s.resolveProfile(affiliateUserID)
	if err != nil {
		return nil, err
	}
	link, err := s.linkRepo.GetByID(linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}
	if link.AffiliateID != profile.ID {
		return nil, ErrForbidden
	}
	return link, nil
}

// ListLinks 分页查询推广用户自己的链接
func (s *LinkService) ListLinks(affiliateUserID uint, page, pageSize int, status string) ([]models.AffiliateLink, int64, error) {
	profile, err := s.resolveProfile(affiliateUserID)
	if err != nil {
		return nil, 0, err
	}
	return s.linkRepo.List(repository.AffiliateLinkListFilter{
		Page:         page,
		PageSize:     pageSize,
		AffiliateID:  profile.ID,
		Status:       strings.TrimSpace(status),
		WithCampaign: true,
	})
}

// DeleteLink 软删除推广链接，历史点击与转化数据保留
func (s *LinkService) DeleteLink(affiliateUserID, linkID uint) error {
	link, err := s.GetLink(affiliateUserID, linkID)
	if err != nil {
		return err
	}
	if err := s.linkRepo.SoftDelete(link.ID); err != nil {
		return err
	}
	s.invalidateRedirectState(link)
	return nil
}

// UpdateLinkStatus 更新链接审核状态（内部接口）
func (s *LinkService) UpdateLinkStatus(linkID uint, status string) (*models.AffiliateLink, error) {
	status = strings.TrimSpace(status)
	switch status {
	case constants.AffiliateLinkStatusPending,
		constants.AffiliateLinkStatusApproved,
		constants.AffiliateLinkStatusRejected:
	default:
		return nil, ErrLinkStatusInvalid
	}

	link, err := s.linkRepo.GetByID(linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}
	if link.Status != status {
		if err := s.linkRepo.UpdateStatus(link.ID, status, time.Now().UTC()); err != nil {
			return nil, err
		}
		s.invalidateRedirectState(link)
	}
	return s.linkRepo.GetByID(link.ID)
}

// invalidateRedirectState 清理跳转路径上的链接快照
func (s *LinkService) invalidateRedirectState(link *models.AffiliateLink) {
	ctx := context.Background()
	if err := cache.DelLinkRedirectState(ctx, link.TrackingCode); err != nil {
		logger.Warnw("链接跳转快照缓存清理失败", "link_id", link.ID, "error", err)
	}
	if link.CustomSlug != nil {
		if err := cache.DelLinkRedirectState(ctx, *link.CustomSlug); err != nil {
			logger.Warnw("链接跳转快照缓存清理失败", "link_id", link.ID, "error", err)
		}
	}
}

// ResolveByCode 按跟踪码解析链接，跟踪码未命中时回退自定义短链
func (s *LinkService) ResolveByCode(rawCode string) (*models.AffiliateLink, error) {
	code := strings.TrimSpace(rawCode)
	if code == "" {
		return nil, ErrNotFound
	}
	link, err := s.linkRepo.GetByTrackingCode(strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	if link == nil {
		link, err = s.linkRepo.GetByCustomSlug(code)
		if err != nil {
			return nil, err
		}
	}
	if link == nil {
		return nil, ErrNotFound
	}
	return link, nil
}

func (s *LinkService) resolveProfile(affiliateUserID uint) (*models.AffiliateProfile, error) {
	profile, err := s.profileRepo.GetByUserID(affiliateUserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (s *LinkService) resolveActiveProfile(affiliateUserID uint) (*models.AffiliateProfile, error) {
	profile, err := s.resolveProfile(affiliateUserID)
	if err != nil {
		return nil, err
	}
	if profile.Status != constants.AffiliateProfileStatusActive {
		return nil, ErrAffiliateDisabled
	}
	return profile, nil
}
