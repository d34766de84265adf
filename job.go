package pilot

import "encoding/json"

// Action identifies a push-tracked dataset file operation.
type Action string

const (
	ActionImport Action = "dataset_file_import"
	ActionDelete Action = "dataset_file_delete"
	ActionMove   Action = "dataset_file_move"
	ActionRename Action = "dataset_file_rename"
)

// JobType identifies a poll-tracked project file operation.
type JobType string

const (
	JobTypeTransfer JobType = "data_transfer"
	JobTypeDelete   JobType = "data_delete"
)

// Status is the server-reported state of an asynchronous job.
type Status string

const (
	StatusRunning    Status = "RUNNING"
	StatusFinish     Status = "FINISH"
	StatusSucceed    Status = "SUCCEED"
	StatusZipping    Status = "ZIPPING"
	StatusReady      Status = "READY_FOR_DOWNLOADING"
	StatusTerminated Status = "TERMINATED"
	StatusError      Status = "ERROR"
)

// Settled reports whether s is anything other than RUNNING.
func (s Status) Settled() bool {
	return s != StatusRunning
}

// JobRecord is one element of a job status response.
type JobRecord struct {
	SessionID   string          `json:"session_id"`
	JobID       string          `json:"job_id"`
	Source      string          `json:"source"`
	Action      string          `json:"action"`
	Status      Status          `json:"status"`
	ProjectCode string          `json:"project_code"`
	Operator    string          `json:"operator"`
	Progress    float64         `json:"progress"`
	Payload     json.RawMessage `json:"payload"`
	UpdatedAt   string          `json:"update_timestamp"`
}

// EventDatasetFileNotification is the event name carried by dataset file notifications.
const EventDatasetFileNotification = "DATASET_FILE_NOTIFICATION"

// Notification is a message delivered on the push channel.
type Notification struct {
	Event   string              `json:"event"`
	Payload NotificationPayload `json:"payload"`
}

// NotificationPayload is the body of a Notification.
type NotificationPayload struct {
	Source    NotificationSource `json:"source"`
	SessionID string             `json:"session_id"`
	Status    Status             `json:"status"`
	Action    Action             `json:"action"`

	// Payload is the entity as it stands after the operation, e.g. the renamed file.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NotificationSource references the entity a notification reports on.
type NotificationSource struct {
	GlobalEntityID string `json:"global_entity_id"`
}

// SourceID is shorthand for n.Payload.Source.GlobalEntityID.
func (n Notification) SourceID() string {
	return n.Payload.Source.GlobalEntityID
}
