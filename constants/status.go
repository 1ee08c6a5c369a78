package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"     // waiting for a worker
	JobStatusRunning   JobStatus = "RUNNING"    // extraction in progress
	JobStatusExtractOK JobStatus = "EXTRACT_OK" // fields extracted and persisted
	JobStatusFailed    JobStatus = "FAILED"     // terminal failure
)
