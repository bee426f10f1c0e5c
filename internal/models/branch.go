package models

import (
	"time"

	"gorm.io/gorm"
)

// Branch 商户门店表
type Branch struct {
	ID         uint           `gorm:"primarykey" json:"id"`                   // 主键
	MerchantID uint           `gorm:"index;not null" json:"merchant_id"`      // 所属商户ID
	Name       string         `gorm:"not null" json:"name"`                   // 门店名称
	Address    string         `gorm:"default:''" json:"address"`              // 地址
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"` // 是否营业
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"` // 所属商户
}

// TableName 指定表名
func (Branch) TableName() string {
	return "branches"
}
