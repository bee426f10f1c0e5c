package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/repository"

	"gorm.io/gorm"
)

// EligibilityService 优惠可核销性校验服务
// 按固定顺序校验，每个失败原因对应独立错误，供门店员工向学生解释。
type EligibilityService struct {
	offerRepo      repository.OfferRepository
	redemptionRepo repository.RedemptionRepository
}

// NewEligibilityService 创建可核销性校验服务
func NewEligibilityService(offerRepo repository.OfferRepository, redemptionRepo repository.RedemptionRepository) *EligibilityService {
	return &EligibilityService{
		offerRepo:      offerRepo,
		redemptionRepo: redemptionRepo,
	}
}

// CheckOfferTx 在事务内校验优惠当前是否可在指定门店核销
// 顺序：上架状态 → 有效期 → 门店投放 → 自定义时段 → 总量上限 → 当日上限。
func (s *EligibilityService) CheckOfferTx(tx *gorm.DB, offer *models.Offer, branchID uint, now time.Time) error {
	if offer == nil {
		return ErrOfferNotFound
	}
	if !offer.IsActive {
		return ErrOfferInactive
	}
	if now.Before(offer.ValidFrom) {
		return ErrOfferNotStarted
	}
	if now.After(offer.ValidUntil) {
		return ErrOfferExpired
	}

	offerRepo := s.offerRepo.WithTx(tx)
	assigned, err := offerRepo.HasActiveAssignment(offer.ID, branchID)
	if err != nil {
		return err
	}
	if !assigned {
		return ErrOfferNotAtBranch
	}

	if strings.EqualFold(strings.TrimSpace(offer.ScheduleType), constants.ScheduleTypeCustom) {
		ok, err := scheduleAllows(offer, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOfferOutOfSchedule
		}
	}

	if offer.TotalLimit > 0 && offer.CurrentRedemptions >= offer.TotalLimit {
		return ErrOfferTotalLimit
	}

	if offer.DailyLimit > 0 {
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		redemptionRepo := s.redemptionRepo.WithTx(tx)
		count, err := redemptionRepo.CountVerifiedForOfferBranchSince(offer.ID, branchID, midnight)
		if err != nil {
			return err
		}
		if count >= int64(offer.DailyLimit) {
			return ErrOfferDailyLimit
		}
	}

	return nil
}

// scheduleAllows 判断当前时刻是否落在自定义时段内
// 时间窗口允许跨午夜：start > end 时按 now >= start 或 now <= end 判定。
func scheduleAllows(offer *models.Offer, now time.Time) (bool, error) {
	days, err := decodeAllowedDays(offer.AllowedDays)
	if err != nil {
		return false, err
	}
	if len(days) > 0 {
		if _, ok := days[now.Weekday()]; !ok {
			return false, nil
		}
	}

	start := strings.TrimSpace(offer.StartTime)
	end := strings.TrimSpace(offer.EndTime)
	if start == "" || end == "" {
		return true, nil
	}
	startMin, err := parseClockMinutes(start)
	if err != nil {
		return false, err
	}
	endMin, err := parseClockMinutes(end)
	if err != nil {
		return false, err
	}
	nowMin := now.Hour()*60 + now.Minute()

	if startMin <= endMin {
		return nowMin >= startMin && nowMin <= endMin, nil
	}
	return nowMin >= startMin || nowMin <= endMin, nil
}

// decodeAllowedDays 解析允许的星期集合（JSON 数组，0=周日）
func decodeAllowedDays(raw string) (map[time.Weekday]struct{}, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[time.Weekday]struct{}{}, nil
	}
	var days []int
	if err := json.Unmarshal([]byte(trimmed), &days); err != nil {
		return nil, fmt.Errorf("invalid allowed_days: %w", err)
	}
	result := make(map[time.Weekday]struct{}, len(days))
	for _, day := range days {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("invalid allowed_days value: %d", day)
		}
		result[time.Weekday(day)] = struct{}{}
	}
	return result, nil
}

// parseClockMinutes 解析 HH:MM 为当日分钟数
func parseClockMinutes(value string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}
