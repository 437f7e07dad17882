package domain

// Result statuses reported on the trigger endpoints.
const (
	StatusOK      = "ok"
	StatusIgnored = "ignored"
	StatusError   = "error"
)

// ObjectCreatedEvent is the inbound "new object created" notification from
// the object store. Malformed or irrelevant events are expected noise.
type ObjectCreatedEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// IngestResult describes the outcome of handling one object-created event.
type IngestResult struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	BronzePath string `json:"bronze_path,omitempty"`
}

// LoadResult describes the outcome of one bronze-to-silver load call. It
// echoes the partition identity back to the caller. FilesProcessed counts
// only newly loaded files; objects skipped because a marker already exists
// are reported separately in FilesSkipped.
type LoadResult struct {
	Status         string `json:"status"`
	Company        string `json:"company"`
	Domain         string `json:"domain"`
	Date           string `json:"date"`
	FilesProcessed int    `json:"files_processed"`
	FilesSkipped   int    `json:"files_skipped"`
	Table          string `json:"table"`
}

// RunResult describes the outcome of one transformer run.
type RunResult struct {
	// Executed lists transformation names in execution order.
	Executed []string `json:"executed"`
}
