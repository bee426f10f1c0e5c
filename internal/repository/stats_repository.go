package repository

import (
	"errors"
	"time"

	"github.com/studentperks/internal/models"

	"gorm.io/gorm"
)

// StatsRepository 学生维度核销统计数据访问接口
type StatsRepository interface {
	GetBranchStats(studentID, branchID uint) (*models.StudentBranchStats, error)
	GetMerchantStats(studentID, merchantID uint) (*models.StudentMerchantStats, error)
	IncrementBranchStats(studentID, branchID uint, savings models.Money, now time.Time) error
	IncrementMerchantStats(studentID, merchantID uint, savings models.Money, now time.Time) error
	DecrementBranchStats(studentID, branchID uint, savings models.Money, now time.Time) (int64, error)
	DecrementMerchantStats(studentID, merchantID uint, savings models.Money, now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormStatsRepository
}

// GormStatsRepository GORM 实现
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStatsRepository) WithTx(tx *gorm.DB) *GormStatsRepository {
	if tx == nil {
		return r
	}
	return &GormStatsRepository{db: tx}
}

// GetBranchStats 获取学生-门店统计
func (r *GormStatsRepository) GetBranchStats(studentID, branchID uint) (*models.StudentBranchStats, error) {
	var stats models.StudentBranchStats
	err := r.db.Where("student_id = ? AND branch_id = ?", studentID, branchID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// GetMerchantStats 获取学生-商户统计
func (r *GormStatsRepository) GetMerchantStats(studentID, merchantID uint) (*models.StudentMerchantStats, error) {
	var stats models.StudentMerchantStats
	err := r.db.Where("student_id = ? AND merchant_id = ?", studentID, merchantID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// IncrementBranchStats 累加学生-门店统计（不存在时创建）
func (r *GormStatsRepository) IncrementBranchStats(studentID, branchID uint, savings models.Money, now time.Time) error {
	result := r.db.Model(&models.StudentBranchStats{}).
		Where("student_id = ? AND branch_id = ?", studentID, branchID).
		UpdateColumns(map[string]interface{}{
			"redemption_count":   gorm.Expr("redemption_count + 1"),
			"total_savings":      gorm.Expr("total_savings + ?", savings),
			"last_redemption_at": now,
			"updated_at":         now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return r.db.Create(&models.StudentBranchStats{
		StudentID:        studentID,
		BranchID:         branchID,
		RedemptionCount:  1,
		TotalSavings:     savings,
		LastRedemptionAt: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}).Error
}

// IncrementMerchantStats 累加学生-商户统计（不存在时创建）
func (r *GormStatsRepository) IncrementMerchantStats(studentID, merchantID uint, savings models.Money, now time.Time) error {
	result := r.db.Model(&models.StudentMerchantStats{}).
		Where("student_id = ? AND merchant_id = ?", studentID, merchantID).
		UpdateColumns(map[string]interface{}{
			"redemption_count":   gorm.Expr("redemption_count + 1"),
			"total_savings":      gorm.Expr("total_savings + ?", savings),
			"last_redemption_at": now,
			"updated_at":         now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return r.db.Create(&models.StudentMerchantStats{
		StudentID:        studentID,
		MerchantID:       merchantID,
		RedemptionCount:  1,
		TotalSavings:     savings,
		LastRedemptionAt: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}).Error
}

// DecrementBranchStats 回退学生-门店统计
// 统计行只减不删；带守卫条件，0 行表示聚合已不一致。
func (r *GormStatsRepository) DecrementBranchStats(studentID, branchID uint, savings models.Money, now time.Time) (int64, error) {
	result := r.db.Model(&models.StudentBranchStats{}).
		Where("student_id = ? AND branch_id = ?", studentID, branchID).
		Where("redemption_count >= 1").
		Where("total_savings >= ?", savings).
		UpdateColumns(map[string]interface{}{
			"redemption_count": gorm.Expr("redemption_count - 1"),
			"total_savings":    gorm.Expr("total_savings - ?", savings),
			"updated_at":       now,
		})
	return result.RowsAffected, result.Error
}

// DecrementMerchantStats 回退学生-商户统计
func (r *GormStatsRepository) DecrementMerchantStats(studentID, merchantID uint, savings models.Money, now time.Time) (int64, error) {
	result := r.db.Model(&models.StudentMerchantStats{}).
		Where("student_id = ? AND merchant_id = ?", studentID, merchantID).
		Where("redemption_count >= 1").
		Where("total_savings >= ?", savings).
		UpdateColumns(map[string]interface{}{
			"redemption_count": gorm.Expr("redemption_count - 1"),
			"total_savings":    gorm.Expr("total_savings - ?", savings),
			"updated_at":       now,
		})
	return result.RowsAffected, result.Error
}
