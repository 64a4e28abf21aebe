package models

import "strconv"

// JobKey uniquely identifies an active job. Two submissions for the same
// resolved target get distinct keys because the session ID is part of the key.
type JobKey struct {
	TargetID  string
	SessionID int64
}

func (k JobKey) String() string {
	return k.TargetID + "/" + strconv.FormatInt(k.SessionID, 10)
}

// Job tracks the live progress of one repeat-action task.
type Job struct {
	Key      JobKey
	TargetID string
	URL      string
	Count    int
	Target   int
}

// Process is one row of the live process listing. Session is a 1-based
// positional rank recomputed on every snapshot, not the submission session ID.
type Process struct {
	Session int    `json:"session"`
	URL     string `json:"url"`
	Count   int    `json:"count"`
	ID      string `json:"id"`
	Target  int    `json:"target"`
}

// Session records who submitted a job and the original URL. The URL is
// duplicated from the job so it survives job removal.
type Session struct {
	ID       int64
	Username string
	URL      string
}
