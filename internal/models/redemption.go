package models

import (
	"time"

	"gorm.io/gorm"
)

// Redemption 核销记录表
// 状态使用显式字段（verified/rejected），拒绝信息单独落列，备注仅作展示。
type Redemption struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                              // 主键
	StudentID      uint           `gorm:"index:idx_redemption_triple,priority:1;not null" json:"student_id"` // 学生ID
	OfferID        uint           `gorm:"index:idx_redemption_triple,priority:2;not null" json:"offer_id"`   // 优惠ID
	BranchID       uint           `gorm:"index:idx_redemption_triple,priority:3;not null" json:"branch_id"`  // 门店ID
	Status         string         `gorm:"index;not null;default:'verified'" json:"status"`                   // 状态（verified/rejected）
	DiscountType   string         `gorm:"not null" json:"discount_type"`                                     // 实际应用的折扣类型
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`      // 实际应用的折扣数值
	BonusApplied   bool           `gorm:"not null;default:false" json:"bonus_applied"`                       // 是否应用门店奖励
	BonusAmount    *Money         `gorm:"type:decimal(20,2)" json:"bonus_amount"`                            // 奖励折扣数值（未触发为空）
	StrategyNote   string         `gorm:"default:''" json:"strategy_note"`                                   // 策略产出的说明文本
	VerifiedByID   *uint          `gorm:"index" json:"verified_by_id"`                                       // 核销员工ID（拒绝后清空）
	RejectedByID   *uint          `gorm:"index" json:"rejected_by_id"`                                       // 拒绝员工ID
	RejectReason   string         `gorm:"default:''" json:"reject_reason"`                                   // 拒绝原因
	Notes          string         `gorm:"type:text" json:"notes"`                                            // 备注（仅展示用途）
	RejectedAt     *time.Time     `json:"rejected_at"`                                                       // 拒绝时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                           // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"` // 学生
	Offer   *Offer   `gorm:"foreignKey:OfferID" json:"offer,omitempty"`     // 优惠
	Branch  *Branch  `gorm:"foreignKey:BranchID" json:"branch,omitempty"`   // 门店
}

// TableName 指定表名
func (Redemption) TableName() string {
	return "redemptions"
}
