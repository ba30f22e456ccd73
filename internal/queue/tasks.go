package queue

import (
	"encoding/json"

	"github.com/akiranaka1984/affiliate/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskClickFraudScan 点击欺诈复查任务
	TaskClickFraudScan = constants.TaskClickFraudScan
)

// ClickFraudScanPayload 点击欺诈复查任务载荷
type ClickFraudScanPayload struct {
	ClickID uint `json:"click_id"`
}

// NewClickFraudScanTask 创建点击欺诈复查任务
func NewClickFraudScanTask(payload ClickFraudScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClickFraudScan, body), nil
}
