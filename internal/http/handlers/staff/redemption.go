package staff

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/studentperks/internal/http/response"
	"github.com/studentperks/internal/repository"
	"github.com/studentperks/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateRedemptionRequest 扫码核销请求
type CreateRedemptionRequest struct {
	StudentCode string `json:"student_code" binding:"required"`
	OfferID     uint   `json:"offer_id" binding:"required"`
	Notes       string `json:"notes"`
}

// CreateRedemption 扫码核销
func (h *Handler) CreateRedemption(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}

	var req CreateRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	redemption, err := h.RedemptionService.CreateRedemption(service.CreateRedemptionInput{
		StudentCode: strings.TrimSpace(req.StudentCode),
		OfferID:     req.OfferID,
		Notes:       req.Notes,
		StaffID:     staffID,
		BranchID:    branchID,
	})
	if err != nil {
		respondRedemptionCreateError(c, err)
		return
	}

	response.Success(c, redemption)
}

// RejectRedemptionRequest 拒绝核销请求
type RejectRedemptionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectRedemption 拒绝核销并回退计数
func (h *Handler) RejectRedemption(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}

	var req RejectRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "redemption.reject_reason_needed", err)
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		respondError(c, response.CodeBadRequest, "redemption.reject_reason_needed", nil)
		return
	}

	redemption, err := h.RedemptionService.RejectRedemption(service.RejectRedemptionInput{
		RedemptionID: uint(id),
		StaffID:      staffID,
		BranchID:     branchID,
		Reason:       req.Reason,
	})
	if err != nil {
		respondRedemptionRejectError(c, err)
		return
	}

	response.Success(c, redemption)
}

// ListRedemptions 获取本门店核销记录列表
func (h *Handler) ListRedemptions(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.RedemptionListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if studentID, err := strconv.ParseUint(c.Query("student_id"), 10, 64); err == nil {
		filter.StudentID = uint(studentID)
	}
	if offerID, err := strconv.ParseUint(c.Query("offer_id"), 10, 64); err == nil {
		filter.OfferID = uint(offerID)
	}
	if from, err := time.Parse(time.RFC3339, c.Query("created_from")); err == nil {
		filter.CreatedFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("created_to")); err == nil {
		filter.CreatedTo = &to
	}

	redemptions, total, err := h.RedemptionService.ListBranchRedemptions(branchID, filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.redemption_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, redemptions, pagination)
}

// GetRedemption 获取本门店单条核销记录
func (h *Handler) GetRedemption(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}

	redemption, err := h.RedemptionService.GetBranchRedemption(uint(id), branchID)
	if err != nil {
		if errors.Is(err, service.ErrRedemptionNotFound) {
			respondError(c, response.CodeNotFound, "redemption.not_found", nil)
			return
		}
		if errors.Is(err, service.ErrRedemptionWrongBranch) {
			respondError(c, response.CodeForbidden, "redemption.wrong_branch", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.redemption_fetch_failed", err)
		return
	}

	response.Success(c, redemption)
}
