package repository

import (
	"errors"

	"github.com/studentperks/internal/models"

	"gorm.io/gorm"
)

// BranchRepository 门店数据访问接口
type BranchRepository interface {
	GetByID(id uint) (*models.Branch, error)
	ListByMerchant(merchantID uint) ([]models.Branch, error)
	Create(branch *models.Branch) error
	Update(branch *models.Branch) error
	WithTx(tx *gorm.DB) *GormBranchRepository
}

// GormBranchRepository GORM 实现
type GormBranchRepository struct {
	db *gorm.DB
}

// NewBranchRepository 创建门店仓库
func NewBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBranchRepository) WithTx(tx *gorm.DB) *GormBranchRepository {
	if tx == nil {
		return r
	}
	return &GormBranchRepository{db: tx}
}

// GetByID 根据ID获取门店（带商户）
func (r *GormBranchRepository) GetByID(id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.Preload("Merchant").First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// ListByMerchant 获取商户全部门店
func (r *GormBranchRepository) ListByMerchant(merchantID uint) ([]models.Branch, error) {
	var branches []models.Branch
	if err := r.db.Where("merchant_id = ?", merchantID).Order("id asc").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Create 创建门店
func (r *GormBranchRepository) Create(branch *models.Branch) error {
	return r.db.Create(branch).Error
}

// Update 更新门店
func (r *GormBranchRepository) Update(branch *models.Branch) error {
	return r.db.Save(branch).Error
}
