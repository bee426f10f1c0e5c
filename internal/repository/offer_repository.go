package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/studentperks/internal/models"

	"gorm.io/gorm"
)

// OfferRepository 优惠数据访问接口
type OfferRepository interface {
	GetByID(id uint) (*models.Offer, error)
	Create(offer *models.Offer) error
	Update(offer *models.Offer) error
	List(filter OfferListFilter) ([]models.Offer, int64, error)
	ListRedeemableAtBranch(merchantID, branchID uint, now time.Time) ([]models.Offer, error)
	HasActiveAssignment(offerID, branchID uint) (bool, error)
	IncrementCurrentRedemptions(id uint, totalLimit int) (int64, error)
	DecrementCurrentRedemptions(id uint) (int64, error)
	WithTx(tx *gorm.DB) *GormOfferRepository
}

// GormOfferRepository GORM 实现
type GormOfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository 创建优惠仓库
func NewOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOfferRepository) WithTx(tx *gorm.DB) *GormOfferRepository {
	if tx == nil {
		return r
	}
	return &GormOfferRepository{db: tx}
}

// GetByID 根据ID获取优惠（带商户）
func (r *GormOfferRepository) GetByID(id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.Preload("Merchant").First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// Create 创建优惠
func (r *GormOfferRepository) Create(offer *models.Offer) error {
	return r.db.Create(offer).Error
}

// Update 更新优惠
func (r *GormOfferRepository) Update(offer *models.Offer) error {
	return r.db.Save(offer).Error
}

// List 获取优惠列表
func (r *GormOfferRepository) List(filter OfferListFilter) ([]models.Offer, int64, error) {
	query := r.db.Model(&models.Offer{})
	if filter.MerchantID > 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var offers []models.Offer
	if err := query.Order("id desc").Find(&offers).Error; err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}

// ListRedeemableAtBranch 获取门店当前可核销的优惠
// 仅按上架状态、有效期与投放关系过滤，时段与限额在核销时再判定。
func (r *GormOfferRepository) ListRedeemableAtBranch(merchantID, branchID uint, now time.Time) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.Model(&models.Offer{}).
		Where("merchant_id = ?", merchantID).
		Where("is_active = ?", true).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where(
			"EXISTS (SELECT 1 FROM offer_branches ob WHERE ob.offer_id = offers.id AND ob.is_active = ? AND (ob.branch_id IS NULL OR ob.branch_id = ?) AND ob.deleted_at IS NULL)",
			true, branchID,
		).
		Order("id asc").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// HasActiveAssignment 判断优惠是否投放到指定门店
func (r *GormOfferRepository) HasActiveAssignment(offerID, branchID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.OfferBranch{}).
		Where("offer_id = ?", offerID).
		Where("is_active = ?", true).
		Where("branch_id IS NULL OR branch_id = ?", branchID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IncrementCurrentRedemptions 增加优惠已核销次数
// totalLimit > 0 时带上限守卫，返回受影响行数；0 行表示已到上限。
func (r *GormOfferRepository) IncrementCurrentRedemptions(id uint, totalLimit int) (int64, error) {
	query := r.db.Model(&models.Offer{}).Where("id = ?", id)
	if totalLimit > 0 {
		query = query.Where("current_redemptions < ?", totalLimit)
	}
	result := query.UpdateColumn("current_redemptions", gorm.Expr("current_redemptions + ?", 1))
	return result.RowsAffected, result.Error
}

// DecrementCurrentRedemptions 回退优惠已核销次数
// 带非负守卫，返回受影响行数；0 行表示计数已不一致。
func (r *GormOfferRepository) DecrementCurrentRedemptions(id uint) (int64, error) {
	result := r.db.Model(&models.Offer{}).
		Where("id = ?", id).
		Where("current_redemptions >= 1").
		UpdateColumn("current_redemptions", gorm.Expr("current_redemptions - ?", 1))
	return result.RowsAffected, result.Error
}
