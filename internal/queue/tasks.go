package queue

import (
	"encoding/json"

	"github.com/studentperks/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskRedemptionReceipt 核销回执通知任务
	TaskRedemptionReceipt = constants.TaskRedemptionReceipt
)

// RedemptionReceiptPayload 核销回执任务载荷
type RedemptionReceiptPayload struct {
	RedemptionID   uint   `json:"redemption_id"`
	StudentID      uint   `json:"student_id"`
	StudentEmail   string `json:"student_email"`
	OfferTitle     string `json:"offer_title"`
	BranchName     string `json:"branch_name"`
	DiscountType   string `json:"discount_type"`
	DiscountAmount string `json:"discount_amount"`
	BonusApplied   bool   `json:"bonus_applied"`
}

// NewRedemptionReceiptTask 创建核销回执任务
func NewRedemptionReceiptTask(payload RedemptionReceiptPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRedemptionReceipt, body), nil
}
