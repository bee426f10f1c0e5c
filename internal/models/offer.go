package models

import (
	"time"

	"gorm.io/gorm"
)

// Offer 学生优惠表
type Offer struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                          // 主键
	MerchantID         uint           `gorm:"index;not null" json:"merchant_id"`                             // 所属商户ID
	Title              string         `gorm:"not null" json:"title"`                                         // 标题
	Description        string         `gorm:"type:text" json:"description"`                                  // 描述
	DiscountType       string         `gorm:"not null" json:"discount_type"`                                 // 折扣类型（percent/fixed/free_item）
	DiscountValue      Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`             // 折扣数值（百分比或固定金额）
	MinOrderAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"` // 最低消费门槛
	MaxDiscount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`     // 最大优惠金额（0 表示不限制）
	ValidFrom          time.Time      `gorm:"index;not null" json:"valid_from"`                              // 生效时间
	ValidUntil         time.Time      `gorm:"index;not null" json:"valid_until"`                             // 失效时间
	DailyLimit         int            `gorm:"not null;default:0" json:"daily_limit"`                         // 单店每日核销上限（0 表示不限制）
	TotalLimit         int            `gorm:"not null;default:0" json:"total_limit"`                         // 总核销上限（0 表示不限制）
	CurrentRedemptions int            `gorm:"not null;default:0" json:"current_redemptions"`                 // 已核销次数
	IsActive           bool           `gorm:"not null;default:true" json:"is_active"`                        // 是否上架
	ScheduleType       string         `gorm:"not null;default:'always'" json:"schedule_type"`                // 时段类型（always/custom）
	AllowedDays        string         `gorm:"type:text" json:"allowed_days"`                                 // 允许的星期集合（JSON数组，0=周日）
	StartTime          string         `gorm:"default:''" json:"start_time"`                                  // 时段起始（HH:MM）
	EndTime            string         `gorm:"default:''" json:"end_time"`                                    // 时段结束（HH:MM，可跨午夜）
	StrategyID         string         `gorm:"default:''" json:"strategy_id"`                                 // 核销策略标识（空为无策略）
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"` // 所属商户
}

// TableName 指定表名
func (Offer) TableName() string {
	return "offers"
}
