package models

import (
	"time"
)

// StudentBranchStats 学生-门店维度核销统计表
// 由核销事务同步维护，只增减不删除。
type StudentBranchStats struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                        // 主键
	StudentID        uint       `gorm:"uniqueIndex:idx_student_branch,priority:1" json:"student_id"` // 学生ID
	BranchID         uint       `gorm:"uniqueIndex:idx_student_branch,priority:2" json:"branch_id"`  // 门店ID
	RedemptionCount  int        `gorm:"not null;default:0" json:"redemption_count"`                  // 核销次数
	TotalSavings     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_savings"`  // 累计节省金额
	LastRedemptionAt *time.Time `json:"last_redemption_at"`                                          // 最近核销时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (StudentBranchStats) TableName() string {
	return "student_branch_stats"
}

// StudentMerchantStats 学生-商户维度核销统计表
type StudentMerchantStats struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                          // 主键
	StudentID        uint       `gorm:"uniqueIndex:idx_student_merchant,priority:1" json:"student_id"` // 学生ID
	MerchantID       uint       `gorm:"uniqueIndex:idx_student_merchant,priority:2" json:"merchant_id"` // 商户ID
	RedemptionCount  int        `gorm:"not null;default:0" json:"redemption_count"`                    // 核销次数
	TotalSavings     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_savings"`    // 累计节省金额
	LastRedemptionAt *time.Time `json:"last_redemption_at"`                                            // 最近核销时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (StudentMerchantStats) TableName() string {
	return "student_merchant_stats"
}
