package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const linkRedirectStateCacheTTL = time.Minute

// LinkRedirectState 跳转路径上的链接快照
// 仅服务端 Redis 缓存使用，短 TTL 容忍审核状态的轻微滞后
type LinkRedirectState struct {
	LinkID             uint   `json:"link_id"`
	AffiliateID        uint   `json:"affiliate_id"`
	Status             string `json:"status"`
	TargetURL          string `json:"target_url"`
	CookieDurationDays int    `json:"cookie_duration_days"`
	UpdatedAt          int64  `json:"updated_at"`
}

func linkRedirectStateKey(code string) string {
	return fmt.Sprintf("track:code:%s", strings.TrimSpace(code))
}

// GetLinkRedirectState 获取链接跳转快照
func GetLinkRedirectState(ctx context.Context, code string) (*LinkRedirectState, bool, error) {
	if strings.TrimSpace(code) == "" {
		return nil, false, nil
	}
	var state LinkRedirectState
	hit, err := GetJSON(ctx, linkRedirectStateKey(code), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetLinkRedirectState 写入链接跳转快照
func SetLinkRedirectState(ctx context.Context, code string, state *LinkRedirectState) error {
	if state == nil || state.LinkID == 0 || strings.TrimSpace(code) == "" {
		return nil
	}
	state.UpdatedAt = time.Now().Unix()
	return SetJSON(ctx, linkRedirectStateKey(code), state, linkRedirectStateCacheTTL)
}

// DelLinkRedirectState 删除链接跳转快照
func DelLinkRedirectState(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	return Del(ctx, linkRedirectStateKey(code))
}
