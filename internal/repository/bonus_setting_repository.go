package repository

import (
	"errors"

	"github.com/studentperks/internal/models"

	"gorm.io/gorm"
)

// BonusSettingRepository 门店奖励配置数据访问接口
type BonusSettingRepository interface {
	GetActiveByBranchID(branchID uint) (*models.BranchBonusSetting, error)
	Create(setting *models.BranchBonusSetting) error
	Update(setting *models.BranchBonusSetting) error
	WithTx(tx *gorm.DB) *GormBonusSettingRepository
}

// GormBonusSettingRepository GORM 实现
type GormBonusSettingRepository struct {
	db *gorm.DB
}

// NewBonusSettingRepository 创建门店奖励配置仓库
func NewBonusSettingRepository(db *gorm.DB) *GormBonusSettingRepository {
	return &GormBonusSettingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBonusSettingRepository) WithTx(tx *gorm.DB) *GormBonusSettingRepository {
	if tx == nil {
		return r
	}
	return &GormBonusSettingRepository{db: tx}
}

// GetActiveByBranchID 获取门店启用中的奖励配置
func (r *GormBonusSettingRepository) GetActiveByBranchID(branchID uint) (*models.BranchBonusSetting, error) {
	var setting models.BranchBonusSetting
	err := r.db.Where("branch_id = ?", branchID).
		Where("is_active = ?", true).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Create 创建奖励配置
func (r *GormBonusSettingRepository) Create(setting *models.BranchBonusSetting) error {
	return r.db.Create(setting).Error
}

// Update 更新奖励配置
func (r *GormBonusSettingRepository) Update(setting *models.BranchBonusSetting) error {
	return r.db.Save(setting).Error
}
