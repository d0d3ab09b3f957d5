package models

import "time"

// Status is the lifecycle state of a process instance.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusIdle    Status = "idle"
	StatusError   Status = "error"
)

// ParseStatus returns the Status named by s and whether it is recognised.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusActive, StatusIdle, StatusError:
		return st, true
	}
	return "", false
}

// ProcessInstance tracks one attempt to run a catalog entry.
type ProcessInstance struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Status      Status    `json:"status"`
	ErrorDetail string    `json:"errorDetail,omitempty"` // only set when Status is error
	CreatedAt   time.Time `json:"createdAt,omitzero"`    // zero for instances adopted from the remote list
}
