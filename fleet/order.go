package fleet

import "time"

// Order execution statuses as written by the backend. The dashboard stores
// whatever string arrives; these are only the values it knows how to label.
const (
	OrderCreated      = "CREATED"
	OrderSent         = "SENT"
	OrderAcknowledged = "ACKNOWLEDGED"
	OrderExecuting    = "EXECUTING"
	OrderCompleted    = "COMPLETED"
	OrderFailed       = "FAILED"
	OrderCancelled    = "CANCELLED"
)

// IsTerminalStatus reports whether status ends an order's lifecycle.
func IsTerminalStatus(status string) bool {
	switch status {
	case OrderCompleted, OrderFailed, OrderCancelled:
		return true
	}
	return false
}

// OrderExecution is one order's lifecycle record.
type OrderExecution struct {
	ID           string     `json:"orderId"`
	TemplateID   int64      `json:"orderTemplateId,omitempty"`
	SerialNumber string     `json:"serialNumber"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// ExecuteOrderRequest asks the backend to run a template on a robot.
type ExecuteOrderRequest struct {
	TemplateID   int64  `json:"orderTemplateId"`
	SerialNumber string `json:"serialNumber"`
}

func (r *ExecuteOrderRequest) Validate() error {
	if r.TemplateID <= 0 {
		return &ValidationError{Field: "orderTemplateId", Message: "is required"}
	}
	if r.SerialNumber == "" {
		return &ValidationError{Field: "serialNumber", Message: "is required"}
	}
	return nil
}
