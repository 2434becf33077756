package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// CheckResult mirrors a preflight result for display.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// StatusResponse summarizes the running daemon.
type StatusResponse struct {
	PID               int           `json:"pid"`
	ConnectorAttached bool          `json:"connector_attached"`
	TransportSocket   string        `json:"transport_socket"`
	HistoryDBPath     string        `json:"history_db_path"`
	ActiveSessions    int           `json:"active_sessions"`
	JobsTotal         int64         `json:"jobs_total"`
	JobsDone          int64         `json:"jobs_done"`
	JobsFailed        int64         `json:"jobs_failed"`
	Checks            []CheckResult `json:"checks"`
}

// HistoryRequest filters the job ledger listing.
type HistoryRequest struct {
	UserID int64 `json:"user_id"`
	Limit  int   `json:"limit"`
}

// HistoryRecord is one ledger row.
type HistoryRecord struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Flow       string `json:"flow"`
	Action     string `json:"action"`
	Subject    string `json:"subject"`
	Outcome    string `json:"outcome"`
	Detail     string `json:"detail"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// HistoryResponse contains ledger rows, newest first.
type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// SessionsRequest lists active user sessions.
type SessionsRequest struct{}

// SessionInfo is one active session slot.
type SessionInfo struct {
	UserID    int64  `json:"user_id"`
	Kind      string `json:"kind"`
	Stage     string `json:"stage"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"created_at"`
}

// SessionsResponse contains the active sessions.
type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// SweepRequest triggers an immediate temp sweep.
type SweepRequest struct{}

// SweepResponse reports the sweep outcome.
type SweepResponse struct {
	Removed int    `json:"removed"`
	Error   string `json:"error,omitempty"`
}
