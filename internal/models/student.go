package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student 学生表
type Student struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                       // 主键
	Code             string         `gorm:"uniqueIndex;not null" json:"code"`                           // 核销码（扫码凭证）
	Name             string         `gorm:"not null" json:"name"`                                       // 姓名
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`                          // 邮箱
	University       string         `gorm:"default:''" json:"university"`                               // 学校
	Status           string         `gorm:"index;default:'pending'" json:"status"`                      // 认证状态（pending/verified/suspended）
	TotalRedemptions int            `gorm:"not null;default:0" json:"total_redemptions"`                // 累计核销次数
	TotalSavings     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_savings"` // 累计节省金额
	VerifiedAt       *time.Time     `json:"verified_at"`                                                // 认证通过时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (Student) TableName() string {
	return "students"
}

// NewStudentCode 生成新的学生核销码
func NewStudentCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SP-" + strings.ToUpper(raw[:12])
}
