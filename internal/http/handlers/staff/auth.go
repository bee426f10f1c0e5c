package staff

import (
	"errors"

	"github.com/studentperks/internal/http/response"
	"github.com/studentperks/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 员工登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 员工登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	Staff     map[string]interface{} `json:"staff"`
	ExpiresAt string                 `json:"expires_at"`
}

// Login 员工登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	staff, token, expiresAt, err := h.StaffAuthService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "auth.invalid_credentials", nil)
			return
		}
		if errors.Is(err, service.ErrStaffInactive) {
			respondError(c, response.CodeUnauthorized, "auth.staff_inactive", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}

	staffView := map[string]interface{}{
		"id":        staff.ID,
		"name":      staff.Name,
		"email":     staff.Email,
		"branch_id": staff.BranchID,
	}
	if staff.Branch != nil {
		staffView["branch_name"] = staff.Branch.Name
		if staff.Branch.Merchant != nil {
			staffView["merchant_name"] = staff.Branch.Merchant.Name
		}
	}

	response.Success(c, LoginResponse{
		Token:     token,
		Staff:     staffView,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
