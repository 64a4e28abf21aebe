package models

import (
	"fmt"
	"time"
)

// Terminal job statuses recorded in history.
const (
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusErrored   = "error"
	StatusExpired   = "expired"
)

// HistoryEntry is one finished, stopped or failed job. SessionID, Status and
// Timestamp are the authoritative fields; ID is a display key only and is
// never parsed.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	SessionID int64     `json:"sessionId"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	Count     int       `json:"count"`
	Target    int       `json:"target"`
	Timestamp time.Time `json:"timestamp"`
	Completed bool      `json:"completed"`
}

// NewHistoryEntry builds an entry stamped with the current time.
func NewHistoryEntry(status string, sessionID int64, username, url string, count, target int) HistoryEntry {
	now := time.Now().UTC()
	return HistoryEntry{
		ID:        fmt.Sprintf("%s-%d-%d", status, sessionID, now.UnixMilli()),
		Status:    status,
		SessionID: sessionID,
		URL:       url,
		Username:  username,
		Count:     count,
		Target:    target,
		Timestamp: now,
		Completed: status == StatusCompleted,
	}
}

// Statistics summarizes the history store. Computed by a full scan on demand.
type Statistics struct {
	TotalShares    int `json:"totalShares"`
	CompletedCount int `json:"completedCount"`
	StoppedCount   int `json:"stoppedCount"`
	TotalProcesses int `json:"totalProcesses"`
}
