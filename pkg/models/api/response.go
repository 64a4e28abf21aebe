package api

import (
	"time"

	"github.com/burstline/core/pkg/models"
)

// SubmitResponse is returned when a job was registered and started.
type SubmitResponse struct {
	Status    int   `json:"status"`
	SessionID int64 `json:"sessionId"`
}

// MessageResponse is the generic success/failure envelope.
type MessageResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse reports liveness plus a rough load picture.
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	ActiveJobs int       `json:"activeJobs"`
	History    int       `json:"history"`
}

// StatisticsResponse wraps aggregate history statistics.
type StatisticsResponse struct {
	Status     int               `json:"status"`
	Statistics models.Statistics `json:"statistics"`
}
