package repository

import (
	"errors"
	"time"

	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RedemptionRepository 核销记录数据访问接口
type RedemptionRepository interface {
	Create(redemption *models.Redemption) error
	GetByID(id uint) (*models.Redemption, error)
	GetByIDForUpdate(id uint) (*models.Redemption, error)
	CountVerifiedTripleSince(studentID, offerID, branchID uint, since time.Time) (int64, error)
	CountVerifiedForOfferBranchSince(offerID, branchID uint, since time.Time) (int64, error)
	ListRecentVerifiedByStudentMerchant(studentID, merchantID uint, limit int) ([]models.Redemption, error)
	MarkRejected(id uint, staffID uint, reason string, now time.Time) (int64, error)
	List(filter RedemptionListFilter) ([]models.Redemption, int64, error)
	WithTx(tx *gorm.DB) *GormRedemptionRepository
}

// GormRedemptionRepository GORM 实现
type GormRedemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository 创建核销记录仓库
func NewRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRedemptionRepository) WithTx(tx *gorm.DB) *GormRedemptionRepository {
	if tx == nil {
		return r
	}
	return &GormRedemptionRepository{db: tx}
}

// Create 创建核销记录
func (r *GormRedemptionRepository) Create(redemption *models.Redemption) error {
	return r.db.Create(redemption).Error
}

// GetByID 根据ID获取核销记录（带学生、优惠、门店）
func (r *GormRedemptionRepository) GetByID(id uint) (*models.Redemption, error) {
	var redemption models.Redemption
	err := r.db.Preload("Student").
		Preload("Offer").
		Preload("Branch").
		Preload("Branch.Merchant").
		First(&redemption, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// GetByIDForUpdate 根据ID加锁获取核销记录
func (r *GormRedemptionRepository) GetByIDForUpdate(id uint) (*models.Redemption, error) {
	var redemption models.Redemption
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&redemption, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// CountVerifiedTripleSince 统计时间点之后 (学生, 优惠, 门店) 的有效核销数
func (r *GormRedemptionRepository) CountVerifiedTripleSince(studentID, offerID, branchID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Redemption{}).
		Where("student_id = ? AND offer_id = ? AND branch_id = ?", studentID, offerID, branchID).
		Where("status = ?", constants.RedemptionStatusVerified).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountVerifiedForOfferBranchSince 统计时间点之后 (优惠, 门店) 的有效核销数
func (r *GormRedemptionRepository) CountVerifiedForOfferBranchSince(offerID, branchID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Redemption{}).
		Where("offer_id = ? AND branch_id = ?", offerID, branchID).
		Where("status = ?", constants.RedemptionStatusVerified).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListRecentVerifiedByStudentMerchant 获取学生在商户下最近的有效核销（新到旧）
func (r *GormRedemptionRepository) ListRecentVerifiedByStudentMerchant(studentID, merchantID uint, limit int) ([]models.Redemption, error) {
	if limit <= 0 {
		limit = 20
	}
	var redemptions []models.Redemption
	err := r.db.Model(&models.Redemption{}).
		Joins("JOIN branches ON branches.id = redemptions.branch_id").
		Where("redemptions.student_id = ?", studentID).
		Where("branches.merchant_id = ?", merchantID).
		Where("redemptions.status = ?", constants.RedemptionStatusVerified).
		Order("redemptions.created_at desc").
		Limit(limit).
		Find(&redemptions).Error
	if err != nil {
		return nil, err
	}
	return redemptions, nil
}

// MarkRejected 将核销记录标记为已拒绝
// 带状态守卫，返回受影响行数；0 行表示记录已被拒绝。
func (r *GormRedemptionRepository) MarkRejected(id uint, staffID uint, reason string, now time.Time) (int64, error) {
	result := r.db.Model(&models.Redemption{}).
		Where("id = ?", id).
		Where("status = ?", constants.RedemptionStatusVerified).
		Updates(map[string]interface{}{
			"status":         constants.RedemptionStatusRejected,
			"verified_by_id": nil,
			"rejected_by_id": staffID,
			"reject_reason":  reason,
			"rejected_at":    now,
			"updated_at":     now,
		})
	return result.RowsAffected, result.Error
}

// List 获取核销记录列表
func (r *GormRedemptionRepository) List(filter RedemptionListFilter) ([]models.Redemption, int64, error) {
	query := r.db.Model(&models.Redemption{})
	if filter.StudentID > 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.OfferID > 0 {
		query = query.Where("offer_id = ?", filter.OfferID)
	}
	if filter.BranchID > 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var redemptions []models.Redemption
	if err := query.Preload("Student").Preload("Offer").Order("id desc").Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}
