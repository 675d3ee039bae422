package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/dailyclose"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeCloseReport is the task type for the end-of-day summary report.
	TaskTypeCloseReport = "dailyclose:report"
	// TaskTypeLowStockScan is the task type for the nightly low stock scan.
	TaskTypeLowStockScan = "inventory:lowstock_scan"
)

// CloseReportPayload carries the closed day snapshot for reporting.
type CloseReportPayload struct {
	DayID       int64                     `json:"dayId"`
	ClosedAt    time.Time                 `json:"closedAt"`
	TotalSales  int64                     `json:"totalSales"`
	TotalOrders int                       `json:"totalOrders"`
	TopProducts []dailyclose.ProductSales `json:"topProducts"`
}

// NewCloseReportTask constructs an Asynq task.
func NewCloseReportTask(payload CloseReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCloseReport, data), nil
}

// LowStockScanPayload configures the low stock scan.
type LowStockScanPayload struct {
	Limit int `json:"limit"`
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLowStockScan, data), nil
}
