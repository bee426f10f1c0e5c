package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant 商户表
type Merchant struct {
	ID        uint           `gorm:"primarykey" json:"id"`           // 主键
	Name      string         `gorm:"not null" json:"name"`           // 商户名称
	Category  string         `gorm:"default:''" json:"category"`     // 行业分类
	Status    string         `gorm:"default:'active'" json:"status"` // 状态（active/inactive）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`        // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`        // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                 // 软删除时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
