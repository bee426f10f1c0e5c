package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/studentperks/internal/models"

	"gorm.io/gorm"
)

// BranchStaffRepository 门店员工数据访问接口
type BranchStaffRepository interface {
	GetByID(id uint) (*models.BranchStaff, error)
	GetByEmail(email string) (*models.BranchStaff, error)
	Create(staff *models.BranchStaff) error
	UpdateLastLogin(id uint, at time.Time) error
	WithTx(tx *gorm.DB) *GormBranchStaffRepository
}

// GormBranchStaffRepository GORM 实现
type GormBranchStaffRepository struct {
	db *gorm.DB
}

// NewBranchStaffRepository 创建门店员工仓库
func NewBranchStaffRepository(db *gorm.DB) *GormBranchStaffRepository {
	return &GormBranchStaffRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBranchStaffRepository) WithTx(tx *gorm.DB) *GormBranchStaffRepository {
	if tx == nil {
		return r
	}
	return &GormBranchStaffRepository{db: tx}
}

// GetByID 根据ID获取员工（带门店与商户）
func (r *GormBranchStaffRepository) GetByID(id uint) (*models.BranchStaff, error) {
	var staff models.BranchStaff
	if err := r.db.Preload("Branch").Preload("Branch.Merchant").First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// GetByEmail 根据邮箱获取员工
func (r *GormBranchStaffRepository) GetByEmail(email string) (*models.BranchStaff, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return nil, nil
	}
	var staff models.BranchStaff
	if err := r.db.Where("email = ?", trimmed).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// Create 创建员工
func (r *GormBranchStaffRepository) Create(staff *models.BranchStaff) error {
	return r.db.Create(staff).Error
}

// UpdateLastLogin 更新最后登录时间
func (r *GormBranchStaffRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.BranchStaff{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
