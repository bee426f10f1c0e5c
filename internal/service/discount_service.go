package service

import (
	"strings"
	"time"

	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountService 折扣档位裁定服务
// 裁定顺序：优惠指定的策略 → 门店奖励 → 基础折扣，先命中先生效。
// 本服务只读历史与配置，不修改任何状态，可在写事务内外安全调用。
type DiscountService struct {
	redemptionRepo repository.RedemptionRepository
	bonusRepo      repository.BonusSettingRepository
	statsRepo      repository.StatsRepository
	strategies     map[string]RedemptionStrategy
}

// NewDiscountService 创建折扣裁定服务并注册策略
func NewDiscountService(
	redemptionRepo repository.RedemptionRepository,
	bonusRepo repository.BonusSettingRepository,
	statsRepo repository.StatsRepository,
	strategies ...RedemptionStrategy,
) *DiscountService {
	registry := make(map[string]RedemptionStrategy, len(strategies))
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		registry[strategy.ID()] = strategy
	}
	return &DiscountService{
		redemptionRepo: redemptionRepo,
		bonusRepo:      bonusRepo,
		statsRepo:      statsRepo,
		strategies:     registry,
	}
}

// ResolveTx 在事务内裁定本次核销实际应用的折扣
func (s *DiscountService) ResolveTx(tx *gorm.DB, student *models.Student, offer *models.Offer, branch *models.Branch, now time.Time) (*DiscountResolution, error) {
	if strategyID := strings.TrimSpace(offer.StrategyID); strategyID != "" {
		return s.resolveStrategy(tx, strategyID, student, offer, now)
	}

	bonus, err := s.bonusRepo.WithTx(tx).GetActiveByBranchID(branch.ID)
	if err != nil {
		return nil, err
	}
	if bonus != nil && bonus.RedemptionsRequired > 0 {
		resolution, err := s.resolveBranchBonus(tx, student, branch, bonus)
		if err != nil {
			return nil, err
		}
		if resolution != nil {
			return resolution, nil
		}
	}

	return &DiscountResolution{
		DiscountType:  offer.DiscountType,
		DiscountValue: offer.DiscountValue,
	}, nil
}

// resolveStrategy 执行优惠指定的策略，命中时覆盖其余档位
func (s *DiscountService) resolveStrategy(tx *gorm.DB, strategyID string, student *models.Student, offer *models.Offer, now time.Time) (*DiscountResolution, error) {
	strategy, ok := s.strategies[strategyID]
	if !ok {
		return nil, ErrStrategyUnknown
	}
	history, err := s.redemptionRepo.WithTx(tx).
		ListRecentVerifiedByStudentMerchant(student.ID, offer.MerchantID, streakLookback)
	if err != nil {
		return nil, err
	}
	return strategy.Resolve(StrategyInput{
		Student:    student,
		Offer:      offer,
		MerchantID: offer.MerchantID,
		History:    history,
		Now:        now,
	})
}

// resolveBranchBonus 判断本次是否为门店奖励核销
// 学生在该门店的第 N、2N… 次核销触发；百分比结果受奖励上限约束。
func (s *DiscountService) resolveBranchBonus(tx *gorm.DB, student *models.Student, branch *models.Branch, bonus *models.BranchBonusSetting) (*DiscountResolution, error) {
	stats, err := s.statsRepo.WithTx(tx).GetBranchStats(student.ID, branch.ID)
	if err != nil {
		return nil, err
	}
	visitCount := 0
	if stats != nil {
		visitCount = stats.RedemptionCount
	}

	upcoming := visitCount + 1
	if upcoming%bonus.RedemptionsRequired != 0 {
		return nil, nil
	}

	value := bonus.DiscountValue
	if strings.EqualFold(bonus.DiscountType, constants.DiscountTypePercent) &&
		bonus.MaxDiscount.Decimal.GreaterThan(decimal.Zero) &&
		value.Decimal.GreaterThan(bonus.MaxDiscount.Decimal) {
		value = models.NewMoneyFromDecimal(bonus.MaxDiscount.Decimal)
	}

	note := strings.TrimSpace(bonus.RewardDescription)
	if note == "" {
		note = "branch loyalty bonus"
	}
	return &DiscountResolution{
		DiscountType:  bonus.DiscountType,
		DiscountValue: value,
		BonusApplied:  true,
		Note:          note,
	}, nil
}
