package service

import (
	"fmt"
	"math"
	"time"

	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/models"

	"github.com/shopspring/decimal"
)

// DiscountResolution 折扣裁定结果
type DiscountResolution struct {
	DiscountType  string       // 折扣类型
	DiscountValue models.Money // 折扣数值
	BonusApplied  bool         // 是否为门店奖励
	Note          string       // 展示给学生的说明
}

// StrategyInput 策略输入
// History 为学生在该商户下最近的有效核销，新到旧排列。
type StrategyInput struct {
	Student    *models.Student
	Offer      *models.Offer
	MerchantID uint
	History    []models.Redemption
	Now        time.Time
}

// RedemptionStrategy 可插拔核销策略
// 策略只读历史，产出折扣；命中时覆盖门店奖励与基础折扣。
type RedemptionStrategy interface {
	ID() string
	Resolve(input StrategyInput) (*DiscountResolution, error)
}

const (
	streakLookback   = 20
	streakMaxGapDays = 10
)

// streakTiers 连续核销次数到折扣百分比的映射
var streakTiers = []struct {
	MinVisits int
	Percent   int64
}{
	{MinVisits: 3, Percent: 40},
	{MinVisits: 2, Percent: 30},
	{MinVisits: 1, Percent: 20},
}

// StreakStrategy 连续核销阶梯策略
// 相邻两次核销间隔不超过 10 天（按天向上取整）视为连续；
// 首次中断后从头计数。
type StreakStrategy struct{}

// NewStreakStrategy 创建连续核销阶梯策略
func NewStreakStrategy() *StreakStrategy {
	return &StreakStrategy{}
}

// ID 策略标识
func (s *StreakStrategy) ID() string {
	return constants.StrategyStreak
}

// Resolve 根据连续核销次数裁定折扣
func (s *StreakStrategy) Resolve(input StrategyInput) (*DiscountResolution, error) {
	history := input.History
	if len(history) > streakLookback {
		history = history[:streakLookback]
	}

	streak := 0
	prev := input.Now
	for _, redemption := range history {
		if gapDays(prev, redemption.CreatedAt) > streakMaxGapDays {
			break
		}
		streak++
		prev = redemption.CreatedAt
	}

	visitCount := streak + 1
	percent := tierPercent(visitCount)
	return &DiscountResolution{
		DiscountType:  constants.DiscountTypePercent,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(percent)),
		Note:          fmt.Sprintf("streak visit %d: %d%% off", visitCount, percent),
	}, nil
}

// gapDays 计算两个时间点之间的整天数（向上取整）
func gapDays(later, earlier time.Time) int {
	delta := later.Sub(earlier)
	if delta <= 0 {
		return 0
	}
	return int(math.Ceil(delta.Hours() / 24))
}

func tierPercent(visitCount int) int64 {
	for _, tier := range streakTiers {
		if visitCount >= tier.MinVisits {
			return tier.Percent
		}
	}
	return streakTiers[len(streakTiers)-1].Percent
}
