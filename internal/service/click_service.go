package service

import (
	"context"
	"strings"
	"time"

	"github.com/akiranaka1984/affiliate/internal/cache"
	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/logger"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const rescanBatchLimit = 500

// ClickFraudScanEnqueuer 点击欺诈复查任务投递接口
type ClickFraudScanEnqueuer interface {
	Enabled() bool
	EnqueueClickFraudScan(clickID uint) error
}

// ClickService 点击跟踪业务服务
type ClickService struct {
	clickRepo   repository.ClickRepository
	linkRepo    repository.AffiliateLinkRepository
	linkService *LinkService
	scorer      FraudScorer
	enqueuer    ClickFraudScanEnqueuer
}

// NewClickService 创建点击跟踪服务
func NewClickService(
	clickRepo repository.ClickRepository,
	linkRepo repository.AffiliateLinkRepository,
	linkService *LinkService,
	scorer FraudScorer,
	enqueuer ClickFraudScanEnqueuer,
) *ClickService {
	return &ClickService{
		clickRepo:   clickRepo,
		linkRepo:    linkRepo,
		linkService: linkService,
		scorer:      scorer,
		enqueuer:    enqueuer,
	}
}

// RecordClickInput 点击记录输入
type RecordClickInput struct {
	Code       string
	VisitorKey string
	ClientIP   string
	UserAgent  string
	Referrer   string
}

// RecordClickResult 点击记录结果
type RecordClickResult struct {
	Click              *models.Click
	TargetURL          string
	VisitorKey         string
	CookieDurationDays int
}

// RecordClick 记录一次点击并返回落地地址。
// 疑似欺诈点击同样落库，仅做标记，不阻断跳转。
func (s *ClickService) RecordClick(input RecordClickInput) (*RecordClickResult, error) {
	target, err := s.resolveRedirectTarget(input.Code)
	if err != nil {
		return nil, err
	}

	visitorKey := strings.TrimSpace(input.VisitorKey)
	if visitorKey == "" {
		visitorKey = uuid.NewString()
	}

	click := &models.Click{
		AffiliateLinkID: target.linkID,
		VisitorKey:      visitorKey,
		ClientIP:        strings.TrimSpace(input.ClientIP),
		UserAgent:       strings.TrimSpace(input.UserAgent),
		Referrer:        strings.TrimSpace(input.Referrer),
	}

	score, err := s.scorer.Score(click)
	if err != nil {
		return nil, err
	}
	click.IsFraud = score.IsFraud
	click.FraudReason = score.Reason

	if err := s.linkRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.clickRepo.WithTx(tx).Create(click); err != nil {
			return err
		}
		return s.linkRepo.WithTx(tx).IncrementClickCount(target.linkID)
	}); err != nil {
		return nil, err
	}

	// 异步复查尽力投递，失败不影响本次点击
	if s.enqueuer != nil && s.enqueuer.Enabled() {
		if err := s.enqueuer.EnqueueClickFraudScan(click.ID); err != nil {
			logger.Warnw("点击欺诈复查任务投递失败", "click_id", click.ID, "error", err)
		}
	}

	return &RecordClickResult{
		Click:              click,
		TargetURL:          target.targetURL,
		VisitorKey:         visitorKey,
		CookieDurationDays: target.cookieDays,
	}, nil
}

// redirectTarget 跳转落点解析结果
type redirectTarget struct {
	linkID     uint
	targetURL  string
	cookieDays int
}

// resolveRedirectTarget 解析跳转落点，热路径优先读取 Redis 快照
func (s *ClickService) resolveRedirectTarget(rawCode string) (*redirectTarget, error) {
	code := strings.TrimSpace(rawCode)
	if code == "" {
		return nil, ErrNotFound
	}
	ctx := context.Background()

	if state, hit, err := cache.GetLinkRedirectState(ctx, code); err == nil && hit {
		if state.Status == constants.AffiliateLinkStatusRejected {
			return nil, ErrNotFound
		}
		return &redirectTarget{
			linkID:     state.LinkID,
			targetURL:  state.TargetURL,
			cookieDays: state.CookieDurationDays,
		}, nil
	}

	link, err := s.linkService.ResolveByCode(code)
	if err != nil {
		return nil, err
	}
	if link.Status == constants.AffiliateLinkStatusRejected {
		return nil, ErrNotFound
	}

	targetURL := ""
	cookieDays := 30
	if link.Campaign != nil {
		targetURL = link.Campaign.TargetURL
		if link.Campaign.CookieDurationDays > 0 {
			cookieDays = link.Campaign.CookieDurationDays
		}
	}
	if err := cache.SetLinkRedirectState(ctx, code, &cache.LinkRedirectState{
		LinkID:             link.ID,
		AffiliateID:        link.AffiliateID,
		Status:             link.Status,
		TargetURL:          targetURL,
		CookieDurationDays: cookieDays,
	}); err != nil {
		logger.Warnw("链接跳转快照缓存写入失败", "code", code, "error", err)
	}

	return &redirectTarget{
		linkID:     link.ID,
		targetURL:  targetURL,
		cookieDays: cookieDays,
	}, nil
}

// ListClicks 分页查询推广用户名下链接的点击
func (s *ClickService) ListClicks(affiliateUserID, linkID uint, page, pageSize int) ([]models.Click, int64, error) {
	link, err := s.linkService.GetLink(affiliateUserID, linkID)
	if err != nil {
		return nil, 0, err
	}
	return s.clickRepo.List(repository.ClickListFilter{
		Page:            page,
		PageSize:        pageSize,
		AffiliateLinkID: link.ID,
	})
}

// RescanClick 对单次点击做欺诈复查，仅允许从正常翻转为欺诈
func (s *ClickService) RescanClick(clickID uint) error {
	click, err := s.clickRepo.GetByID(clickID)
	if err != nil {
		return err
	}
	if click == nil || click.IsFraud {
		return nil
	}
	score, err := s.scorer.Score(click)
	if err != nil {
		return err
	}
	if !score.IsFraud {
		return nil
	}
	return s.clickRepo.MarkFraud(click.ID, score.Reason)
}

// RescanRecentClicks 复查回看窗口内的点击，返回新标记的欺诈数量
func (s *ClickService) RescanRecentClicks(window time.Duration) (int, error) {
	since := time.Now().UTC().Add(-window)
	ids, err := s.clickRepo.ListRecentIDs(since, rescanBatchLimit)
	if err != nil {
		return 0, err
	}
	flagged := 0
	for _, id := range ids {
		click, err := s.clickRepo.GetByID(id)
		if err != nil {
			return flagged, err
		}
		if click == nil || click.IsFraud {
			continue
		}
		score, err := s.scorer.Score(click)
		if err != nil {
			return flagged, err
		}
		if !score.IsFraud {
			continue
		}
		if err := s.clickRepo.MarkFraud(click.ID, score.Reason); err != nil {
			return flagged, err
		}
		flagged++
	}
	return flagged, nil
}
