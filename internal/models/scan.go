package models

import "time"

type ScanStatus string

const (
	ScanPending    ScanStatus = "pending"
	ScanProcessing ScanStatus = "processing"
	ScanCompleted  ScanStatus = "completed"
	ScanFailed     ScanStatus = "failed"
)

// Scan is the persisted record of one scan run.
type Scan struct {
	ID           string     `json:"id"`
	Criteria     Criteria   `json:"filters"`
	Status       ScanStatus `json:"status"`
	TotalFound   int        `json:"total_found"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
