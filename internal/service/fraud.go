package service

import (
	"strings"
	"time"

	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/repository"
)

const (
	fraudReasonClickRate = "click_rate_exceeded"
	fraudReasonBotAgent  = "bot_user_agent"
)

// FraudScore 欺诈判定结果
type FraudScore struct {
	IsFraud bool
	Reason  string
}

// FraudScorer 点击欺诈判定接口，可插拔替换
type FraudScorer interface {
	Score(click *models.Click) (FraudScore, error)
}

// botAgentMarkers 常见爬虫/脚本 UA 特征
var botAgentMarkers = []string{"bot", "crawler", "spider", "curl/", "wget/", "python-requests", "headless"}

// ThresholdFraudScorer 基于点击频率与 UA 特征的默认欺诈判定
type ThresholdFraudScorer struct {
	clickRepo      repository.ClickRepository
	clickThreshold int
	clickWindow    time.Duration
}

// NewThresholdFraudScorer 创建默认欺诈判定器
func NewThresholdFraudScorer(clickRepo repository.ClickRepository, clickThreshold int, clickWindow time.Duration) *ThresholdFraudScorer {
	if clickThreshold <= 0 {
		clickThreshold = 10
	}
	if clickWindow <= 0 {
		clickWindow = time.Minute
	}
	return &ThresholdFraudScorer{
		clickRepo:      clickRepo,
		clickThreshold: clickThreshold,
		clickWindow:    clickWindow,
	}
}

// Score 判定单次点击，仅访问数据库不做网络请求
func (s *ThresholdFraudScorer) Score(click *models.Click) (FraudScore, error) {
	if click == nil {
		return FraudScore{}, nil
	}

	agent := strings.ToLower(strings.TrimSpace(click.UserAgent))
	for _, marker := range botAgentMarkers {
		if strings.Contains(agent, marker) {
			return FraudScore{IsFraud: true, Reason: fraudReasonBotAgent}, nil
		}
	}

	if s.clickRepo != nil && strings.TrimSpace(click.VisitorKey) != "" {
		// 异步复查时以点击发生时刻为窗口终点，避免窗口漂移
		at := click.CreatedAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		since := at.Add(-s.clickWindow)
		recent, err := s.clickRepo.CountRecentByVisitor(click.AffiliateLinkID, click.VisitorKey, since)
		if err != nil {
			return FraudScore{}, err
		}
		// 本次点击尚未落库，计数达到阈值即判定
		if recent >= int64(s.clickThreshold) {
			return FraudScore{IsFraud: true, Reason: fraudReasonClickRate}, nil
		}
	}

	return FraudScore{}, nil
}
