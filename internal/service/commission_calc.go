package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/akiranaka1984/affiliate/internal/constants"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// CommissionInput 佣金计算输入（活动规则 + 推广用户快照 + 订单金额）
type CommissionInput struct {
	CommissionType       string
	CommissionAmount     decimal.Decimal
	GrossAmount          *decimal.Decimal
	EnableTiers          bool
	TierCommissions      models.JSON
	AffiliateTier        int
	HasParent            bool
	ReferrerSplitPercent decimal.Decimal
}

// CommissionResult 佣金计算结果
type CommissionResult struct {
	Direct   models.Money // 直接佣金
	Referral models.Money // 上级分成（增量，不从直接佣金中扣减）
}

// ComputeCommission 纯函数佣金计算：同一输入必然得到同一输出。
// 所有运算使用 decimal，最终金额四舍五入保留 2 位。
func ComputeCommission(input CommissionInput) (CommissionResult, error) {
	base, err := computeBaseCommission(input)
	if err != nil {
		return CommissionResult{}, err
	}

	direct := applyTierMultiplier(base, input)

	referral := decimal.Zero
	if input.HasParent && input.ReferrerSplitPercent.IsPositive() {
		referral = direct.Mul(input.ReferrerSplitPercent).Div(decimalHundred)
	}

	return CommissionResult{
		Direct:   models.NewMoneyFromDecimal(direct),
		Referral: models.NewMoneyFromDecimal(referral),
	}, nil
}

func computeBaseCommission(input CommissionInput) (decimal.Decimal, error) {
	switch strings.TrimSpace(input.CommissionType) {
	case constants.CommissionTypeFixed:
		return input.CommissionAmount, nil
	case constants.CommissionTypePercentage:
		if input.GrossAmount == nil {
			return decimal.Zero, ErrMissingGrossAmount
		}
		return input.GrossAmount.Mul(input.CommissionAmount).Div(decimalHundred), nil
	default:
		return decimal.Zero, ErrCommissionConfigInvalid
	}
}

// applyTierMultiplier 应用等级倍率（百分比），等级未配置时回退为基础佣金
func applyTierMultiplier(base decimal.Decimal, input CommissionInput) decimal.Decimal {
	if !input.EnableTiers || len(input.TierCommissions) == 0 {
		return base
	}
	raw, ok := input.TierCommissions[strconv.Itoa(input.AffiliateTier)]
	if !ok {
		return base
	}
	multiplier, ok := toDecimal(raw)
	if !ok || !multiplier.IsPositive() {
		return base
	}
	return base.Mul(multiplier).Div(decimalHundred)
}

func toDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
