package worker

import (
	"context"
	"encoding/json"

	"github.com/studentperks/internal/logger"
	"github.com/studentperks/internal/provider"
	"github.com/studentperks/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRedemptionReceipt, c.handleRedemptionReceipt)
}

// handleRedemptionReceipt 处理核销回执任务
// 通知投递本身由外部系统负责，这里校验记录仍然有效并转交载荷。
func (c *Consumer) handleRedemptionReceipt(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.RedemptionReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_redemption_receipt_unmarshal_failed", "error", err)
		return err
	}
	if payload.RedemptionID == 0 {
		logger.Debugw("worker_redemption_receipt_skip_invalid_payload")
		return nil
	}

	redemption, err := c.RedemptionRepo.GetByID(payload.RedemptionID)
	if err != nil {
		logger.Warnw("worker_redemption_receipt_fetch_failed", "redemption_id", payload.RedemptionID, "error", err)
		return err
	}
	if redemption == nil {
		logger.Debugw("worker_redemption_receipt_skip_not_found", "redemption_id", payload.RedemptionID)
		return nil
	}

	// 拒绝后的记录不再发送回执
	if redemption.RejectedAt != nil {
		logger.Debugw("worker_redemption_receipt_skip_rejected", "redemption_id", redemption.ID)
		return nil
	}

	logger.Infow("redemption_receipt_dispatched",
		"redemption_id", payload.RedemptionID,
		"student_email", payload.StudentEmail,
		"offer", payload.OfferTitle,
		"branch", payload.BranchName,
		"discount", payload.DiscountAmount,
		"bonus", payload.BonusApplied,
	)
	return nil
}
