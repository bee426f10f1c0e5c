package models

import (
	"time"

	"gorm.io/gorm"
)

// OfferBranch 优惠与门店的投放关系表
// BranchID 为空表示商户全门店投放。
type OfferBranch struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                 // 主键
	OfferID   uint           `gorm:"index:idx_offer_branch,priority:1" json:"offer_id"`    // 优惠ID
	BranchID  *uint          `gorm:"index:idx_offer_branch,priority:2" json:"branch_id"`   // 门店ID（空为全门店）
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`               // 是否生效
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (OfferBranch) TableName() string {
	return "offer_branches"
}
