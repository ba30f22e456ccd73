package worker

import (
	"context"
	"encoding/json"

	"github.com/akiranaka1984/affiliate/internal/logger"
	"github.com/akiranaka1984/affiliate/internal/provider"
	"github.com/akiranaka1984/affiliate/internal/queue"

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
	mux.HandleFunc(queue.TaskClickFraudScan, c.handleClickFraudScan)
}

func (c *Consumer) handleClickFraudScan(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_click_fraud_scan_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ClickFraudScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_click_fraud_scan_unmarshal_failed", "error", err)
		return err
	}
	if payload.ClickID == 0 {
		logger.Debugw("worker_click_fraud_scan_skip_invalid_payload", "click_id", payload.ClickID)
		return nil
	}
	if c.ClickService == nil {
		logger.Warnw("worker_click_fraud_scan_skip_click_service_nil", "click_id", payload.ClickID)
		return nil
	}
	if err := c.ClickService.RescanClick(payload.ClickID); err != nil {
		logger.Warnw("worker_click_fraud_scan_failed", "click_id", payload.ClickID, "error", err)
		return err
	}
	return nil
}
