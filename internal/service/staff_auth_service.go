package service

import (
	"time"

	"github.com/studentperks/internal/config"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// StaffAuthService 门店员工认证服务
type StaffAuthService struct {
	cfg       *config.Config
	staffRepo repository.BranchStaffRepository
}

// NewStaffAuthService 创建员工认证服务实例
func NewStaffAuthService(cfg *config.Config, staffRepo repository.BranchStaffRepository) *StaffAuthService {
	return &StaffAuthService{
		cfg:       cfg,
		staffRepo: staffRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *StaffAuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// StaffJWTClaims 员工 JWT 声明
type StaffJWTClaims struct {
	StaffID  uint `json:"staff_id"`
	BranchID uint `json:"branch_id"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成员工 JWT Token
func (s *StaffAuthService) GenerateJWT(staff *models.BranchStaff) (string, time.Time, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 12
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)

	claims := StaffJWTClaims{
		StaffID:  staff.ID,
		BranchID: staff.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Login 员工登录
func (s *StaffAuthService) Login(email, password string) (*models.BranchStaff, string, time.Time, error) {
	staff, err := s.staffRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if staff == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !staff.IsActive {
		return nil, "", time.Time{}, ErrStaffInactive
	}
	if err := s.VerifyPassword(staff.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(staff)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.staffRepo.UpdateLastLogin(staff.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}

	loaded, err := s.staffRepo.GetByID(staff.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if loaded == nil {
		return nil, "", time.Time{}, ErrStaffNotFound
	}
	return loaded, token, expiresAt, nil
}
