package models

import (
	"time"

	"gorm.io/gorm"
)

// BranchBonusSetting 门店忠诚奖励配置表
// 学生在该门店的第 N、2N、3N… 次核销触发奖励折扣。
type BranchBonusSetting struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                      // 主键
	BranchID            uint           `gorm:"uniqueIndex;not null" json:"branch_id"`                     // 门店ID
	RedemptionsRequired int            `gorm:"not null" json:"redemptions_required"`                      // 触发奖励所需核销次数 N
	DiscountType        string         `gorm:"not null" json:"discount_type"`                             // 奖励折扣类型（percent/fixed/free_item）
	DiscountValue       Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`         // 奖励折扣数值
	MaxDiscount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"` // 最大优惠金额（0 表示不限制）
	RewardDescription   string         `gorm:"default:''" json:"reward_description"`                      // 非货币奖励描述
	IsActive            bool           `gorm:"not null;default:true" json:"is_active"`                    // 是否启用
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (BranchBonusSetting) TableName() string {
	return "branch_bonus_settings"
}
