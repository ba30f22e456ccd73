package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const (
	trackingCodeIDSegmentLength = 4
	trackingCodeRandomLength    = 8
)

// trackingCodeAlphabet 随机段字符集，剔除易混淆字符
const trackingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateTrackingCode 生成跟踪码：活动段 + 推广用户段 + 随机段，共 16 位。
// 前两段由ID按 base36 编码，便于人工排查归属；唯一性由随机段与数据库唯一索引保证。
func generateTrackingCode(campaignID, affiliateID uint) (string, error) {
	var builder strings.Builder
	builder.Grow(trackingCodeIDSegmentLength*2 + trackingCodeRandomLength)
	builder.WriteString(encodeIDSegment(campaignID))
	builder.WriteString(encodeIDSegment(affiliateID))

	max := big.NewInt(int64(len(trackingCodeAlphabet)))
	for i := 0; i < trackingCodeRandomLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(trackingCodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}

// encodeIDSegment 将ID编码为固定 4 位大写 base36 段，超出部分取低位
func encodeIDSegment(id uint) string {
	const segmentSpace = 36 * 36 * 36 * 36
	encoded := strings.ToUpper(strconv.FormatUint(uint64(id)%segmentSpace, 36))
	if len(encoded) < trackingCodeIDSegmentLength {
		encoded = strings.Repeat("0", trackingCodeIDSegmentLength-len(encoded)) + encoded
	}
	return encoded
}

// isUniqueViolation 判断是否唯一约束冲突（sqlite 与 postgres 报文兼容）
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
