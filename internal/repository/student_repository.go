package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/studentperks/internal/models"

	"gorm.io/gorm"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	GetByID(id uint) (*models.Student, error)
	GetByCode(code string) (*models.Student, error)
	Create(student *models.Student) error
	Update(student *models.Student) error
	IncrementTotals(id uint, savings models.Money, now time.Time) error
	DecrementTotals(id uint, savings models.Money, now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormStudentRepository
}

// GormStudentRepository GORM 实现
type GormStudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository 创建学生仓库
func NewStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStudentRepository) WithTx(tx *gorm.DB) *GormStudentRepository {
	if tx == nil {
		return r
	}
	return &GormStudentRepository{db: tx}
}

// GetByID 根据ID获取学生
func (r *GormStudentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// GetByCode 根据核销码获取学生
func (r *GormStudentRepository) GetByCode(code string) (*models.Student, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, nil
	}
	var student models.Student
	if err := r.db.Where("code = ?", trimmed).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// Create 创建学生
func (r *GormStudentRepository) Create(student *models.Student) error {
	return r.db.Create(student).Error
}

// Update 更新学生
func (r *GormStudentRepository) Update(student *models.Student) error {
	return r.db.Save(student).Error
}

// IncrementTotals 累加学生核销次数与节省金额
func (r *GormStudentRepository) IncrementTotals(id uint, savings models.Money, now time.Time) error {
	return r.db.Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_redemptions": gorm.Expr("total_redemptions + 1"),
			"total_savings":     gorm.Expr("total_savings + ?", savings),
			"updated_at":        now,
		}).Error
}

// DecrementTotals 回退学生核销次数与节省金额
// 带守卫条件，返回受影响行数；0 行表示聚合已不一致。
func (r *GormStudentRepository) DecrementTotals(id uint, savings models.Money, now time.Time) (int64, error) {
	result := r.db.Model(&models.Student{}).
		Where("id = ?", id).
		Where("total_redemptions >= 1").
		Where("total_savings >= ?", savings).
		UpdateColumns(map[string]interface{}{
			"total_redemptions": gorm.Expr("total_redemptions - 1"),
			"total_savings":     gorm.Expr("total_savings - ?", savings),
			"updated_at":        now,
		})
	return result.RowsAffected, result.Error
}
