package models

import (
	"time"

	"gorm.io/gorm"
)

// BranchStaff 门店员工表
type BranchStaff struct {
	ID           uint           `gorm:"primarykey" json:"id"`                   // 主键
	BranchID     uint           `gorm:"index;not null" json:"branch_id"`        // 所属门店ID
	Name         string         `gorm:"not null" json:"name"`                   // 姓名
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`      // 登录邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                      // 密码哈希（不返回给前端）
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"` // 账号是否启用
	LastLoginAt  *time.Time     `json:"last_login_at"`                          // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"` // 所属门店
}

// TableName 指定表名
func (BranchStaff) TableName() string {
	return "branch_staffs"
}
