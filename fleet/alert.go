package fleet

import (
	"time"

	"github.com/google/uuid"
)

const (
	AlertInfo    = "info"
	AlertWarning = "warning"
	AlertError   = "error"
	AlertSuccess = "success"
)

// Alert is an ephemeral operator notification. It lives only in memory.
type Alert struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	SerialNumber string    `json:"serialNumber,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
	Synthetic    bool      `json:"synthetic,omitempty"`
}

// NewAlert stamps a fresh ID and time onto an alert.
func NewAlert(typ, title, message, serial string) Alert {
	return Alert{
		ID:           uuid.New().String(),
		Type:         typ,
		Title:        title,
		Message:      message,
		SerialNumber: serial,
		Timestamp:    time.Now().UTC(),
	}
}
