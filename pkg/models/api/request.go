package api

// SubmitRequest is the body of POST /api/submit. Cookie carries the
// submitter's serialized credential pairs; it is forwarded to the external
// lookups and never interpreted beyond a presence check.
type SubmitRequest struct {
	Username string `json:"username"`
	Cookie   string `json:"cookie"`
	URL      string `json:"url"`
	Amount   int    `json:"amount"`
	Interval int    `json:"interval"`
}

// KeyRequest carries the access key for stop and history-clear calls.
type KeyRequest struct {
	Key string `json:"key"`
}
