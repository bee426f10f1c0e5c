package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studentperks/internal/cache"
	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/logger"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/queue"
	"github.com/studentperks/internal/repository"

	"gorm.io/gorm"
)

// RedemptionPolicy 核销策略配置
type RedemptionPolicy struct {
	DuplicateWindowSeconds int  // 防重窗口秒数
	TxTimeoutSeconds       int  // 写事务超时秒数
	AllowSameDayRepeat     bool // 是否允许同一学生当日在同一门店重复核销同一优惠
}

// RedemptionService 核销事务服务
// 资格校验、防重、折扣裁定与账本写入在一个事务内完成；
// 拒绝回退在独立事务内完成。
type RedemptionService struct {
	redemptionRepo repository.RedemptionRepository
	offerRepo      repository.OfferRepository
	studentRepo    repository.StudentRepository
	branchRepo     repository.BranchRepository
	statsRepo      repository.StatsRepository
	eligibility    *EligibilityService
	discount       *DiscountService
	queueClient    *queue.Client

	duplicateWindow    time.Duration
	txTimeout          time.Duration
	allowSameDayRepeat bool
}

// NewRedemptionService 创建核销事务服务
func NewRedemptionService(
	redemptionRepo repository.RedemptionRepository,
	offerRepo repository.OfferRepository,
	studentRepo repository.StudentRepository,
	branchRepo repository.BranchRepository,
	statsRepo repository.StatsRepository,
	eligibility *EligibilityService,
	discount *DiscountService,
	queueClient *queue.Client,
	policy RedemptionPolicy,
) *RedemptionService {
	windowSeconds := policy.DuplicateWindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = constants.DefaultDuplicateWindowSeconds
	}
	timeoutSeconds := policy.TxTimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = constants.DefaultTxTimeoutSeconds
	}
	return &RedemptionService{
		redemptionRepo:     redemptionRepo,
		offerRepo:          offerRepo,
		studentRepo:        studentRepo,
		branchRepo:         branchRepo,
		statsRepo:          statsRepo,
		eligibility:        eligibility,
		discount:           discount,
		queueClient:        queueClient,
		duplicateWindow:    time.Duration(windowSeconds) * time.Second,
		txTimeout:          time.Duration(timeoutSeconds) * time.Second,
		allowSameDayRepeat: policy.AllowSameDayRepeat,
	}
}

const branchOffersCacheTTL = 30 * time.Second

func branchOffersCacheKey(branchID uint) string {
	return fmt.Sprintf("branch:%d:offers", branchID)
}

// CreateRedemptionInput 创建核销输入
type CreateRedemptionInput struct {
	StudentCode string
	OfferID     uint
	Notes       string
	StaffID     uint
	BranchID    uint
}

// RejectRedemptionInput 拒绝核销输入
type RejectRedemptionInput struct {
	RedemptionID uint
	StaffID      uint
	BranchID     uint
	Reason       string
}

// CreateRedemption 处理一次扫码核销
// 校验链、防重、折扣裁定与全部计数写入在同一事务内原子完成；
// 事务超时后整体失败，调用方按新扫码重试。
func (s *RedemptionService) CreateRedemption(input CreateRedemptionInput) (*models.Redemption, error) {
	student, err := s.studentRepo.GetByCode(input.StudentCode)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	switch student.Status {
	case constants.StudentStatusVerified:
	case constants.StudentStatusSuspended:
		return nil, ErrStudentSuspended
	default:
		return nil, ErrStudentNotVerified
	}

	branch, err := s.branchRepo.GetByID(input.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}
	if !branch.IsActive {
		return nil, ErrBranchInactive
	}

	offer, err := s.offerRepo.GetByID(input.OfferID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if offer.MerchantID != branch.MerchantID {
		return nil, ErrOfferNotAtBranch
	}

	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.txTimeout)
	defer cancel()

	var created *models.Redemption
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.eligibility.CheckOfferTx(tx, offer, branch.ID, now); err != nil {
			return err
		}

		redemptionRepo := s.redemptionRepo.WithTx(tx)
		recent, err := redemptionRepo.CountVerifiedTripleSince(student.ID, offer.ID, branch.ID, now.Add(-s.duplicateWindow))
		if err != nil {
			return err
		}
		if recent > 0 {
			return ErrDuplicateRedemption
		}
		if !s.allowSameDayRepeat {
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			today, err := redemptionRepo.CountVerifiedTripleSince(student.ID, offer.ID, branch.ID, midnight)
			if err != nil {
				return err
			}
			if today > 0 {
				return ErrAlreadyRedeemedToday
			}
		}

		resolution, err := s.discount.ResolveTx(tx, student, offer, branch, now)
		if err != nil {
			return err
		}

		staffID := input.StaffID
		redemption := &models.Redemption{
			StudentID:      student.ID,
			OfferID:        offer.ID,
			BranchID:       branch.ID,
			Status:         constants.RedemptionStatusVerified,
			DiscountType:   resolution.DiscountType,
			DiscountAmount: resolution.DiscountValue,
			BonusApplied:   resolution.BonusApplied,
			StrategyNote:   resolution.Note,
			VerifiedByID:   &staffID,
			Notes:          strings.TrimSpace(input.Notes),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if resolution.BonusApplied {
			bonusAmount := resolution.DiscountValue
			redemption.BonusAmount = &bonusAmount
		}
		if err := redemptionRepo.Create(redemption); err != nil {
			return err
		}

		affected, err := s.offerRepo.WithTx(tx).IncrementCurrentRedemptions(offer.ID, offer.TotalLimit)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOfferTotalLimit
		}

		if err := s.studentRepo.WithTx(tx).IncrementTotals(student.ID, resolution.DiscountValue, now); err != nil {
			return err
		}

		statsRepo := s.statsRepo.WithTx(tx)
		if err := statsRepo.IncrementMerchantStats(student.ID, branch.MerchantID, resolution.DiscountValue, now); err != nil {
			return err
		}
		if err := statsRepo.IncrementBranchStats(student.ID, branch.ID, resolution.DiscountValue, now); err != nil {
			return err
		}

		created = redemption
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("redemption_created",
		"redemption_id", created.ID,
		"student_id", student.ID,
		"offer_id", offer.ID,
		"branch_id", branch.ID,
		"discount", created.DiscountAmount.String(),
		"bonus", created.BonusApplied,
	)
	s.enqueueReceipt(created, student, offer, branch)
	_ = cache.Del(context.Background(), branchOffersCacheKey(branch.ID))

	return s.loadRedemption(created.ID)
}

// RejectRedemption 拒绝一次已核销记录并回退全部计数
// 拒绝是单向终态；重复拒绝报冲突而非静默成功。
func (s *RedemptionService) RejectRedemption(input RejectRedemptionInput) (*models.Redemption, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.txTimeout)
	defer cancel()

	now := time.Now()
	var rejectedID uint
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		redemptionRepo := s.redemptionRepo.WithTx(tx)
		redemption, err := redemptionRepo.GetByIDForUpdate(input.RedemptionID)
		if err != nil {
			return err
		}
		if redemption == nil {
			return ErrRedemptionNotFound
		}
		if redemption.BranchID != input.BranchID {
			return ErrRedemptionWrongBranch
		}
		if redemption.Status == constants.RedemptionStatusRejected {
			return ErrRedemptionAlreadyRejected
		}

		branch, err := s.branchRepo.WithTx(tx).GetByID(redemption.BranchID)
		if err != nil {
			return err
		}
		if branch == nil {
			return ErrBranchNotFound
		}

		savings := redemption.DiscountAmount

		affected, err := redemptionRepo.MarkRejected(redemption.ID, input.StaffID, strings.TrimSpace(input.Reason), now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrRedemptionAlreadyRejected
		}

		affected, err = s.offerRepo.WithTx(tx).DecrementCurrentRedemptions(redemption.OfferID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStatsCorrupted
		}

		affected, err = s.studentRepo.WithTx(tx).DecrementTotals(redemption.StudentID, savings, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStatsCorrupted
		}

		statsRepo := s.statsRepo.WithTx(tx)
		affected, err = statsRepo.DecrementMerchantStats(redemption.StudentID, branch.MerchantID, savings, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStatsCorrupted
		}
		affected, err = statsRepo.DecrementBranchStats(redemption.StudentID, redemption.BranchID, savings, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStatsCorrupted
		}

		rejectedID = redemption.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("redemption_rejected",
		"redemption_id", rejectedID,
		"branch_id", input.BranchID,
		"staff_id", input.StaffID,
	)
	_ = cache.Del(context.Background(), branchOffersCacheKey(input.BranchID))
	return s.loadRedemption(rejectedID)
}

// ListBranchRedemptions 获取门店核销记录列表
func (s *RedemptionService) ListBranchRedemptions(branchID uint, filter repository.RedemptionListFilter) ([]models.Redemption, int64, error) {
	filter.BranchID = branchID
	return s.redemptionRepo.List(filter)
}

// GetBranchRedemption 获取门店单条核销记录
func (s *RedemptionService) GetBranchRedemption(id, branchID uint) (*models.Redemption, error) {
	redemption, err := s.redemptionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if redemption == nil {
		return nil, ErrRedemptionNotFound
	}
	if redemption.BranchID != branchID {
		return nil, ErrRedemptionWrongBranch
	}
	return redemption, nil
}

// ListBranchOffers 获取门店当前可核销的优惠
// 列表短暂缓存，核销或拒绝后即时失效。
func (s *RedemptionService) ListBranchOffers(branchID uint) ([]models.Offer, error) {
	branch, err := s.branchRepo.GetByID(branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}

	cacheKey := branchOffersCacheKey(branchID)
	var cached []models.Offer
	if hit, err := cache.GetJSON(context.Background(), cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	offers, err := s.offerRepo.ListRedeemableAtBranch(branch.MerchantID, branchID, time.Now())
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(context.Background(), cacheKey, offers, branchOffersCacheTTL); err != nil {
		logger.Warnw("branch_offers_cache_set_failed", "branch_id", branchID, "error", err)
	}
	return offers, nil
}

func (s *RedemptionService) loadRedemption(id uint) (*models.Redemption, error) {
	redemption, err := s.redemptionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if redemption == nil {
		return nil, ErrRedemptionNotFound
	}
	return redemption, nil
}

// enqueueReceipt 核销成功后投递回执事件（失败仅记日志，不影响事务结果）
func (s *RedemptionService) enqueueReceipt(redemption *models.Redemption, student *models.Student, offer *models.Offer, branch *models.Branch) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	payload := queue.RedemptionReceiptPayload{
		RedemptionID:   redemption.ID,
		StudentID:      student.ID,
		StudentEmail:   student.Email,
		OfferTitle:     offer.Title,
		BranchName:     branch.Name,
		DiscountType:   redemption.DiscountType,
		DiscountAmount: redemption.DiscountAmount.String(),
		BonusApplied:   redemption.BonusApplied,
	}
	if err := s.queueClient.EnqueueRedemptionReceipt(payload); err != nil {
		logger.Errorw("redemption_receipt_enqueue_failed", "redemption_id", redemption.ID, "error", err)
	}
}
