package tasks

import (
	"fmt"

	"github.com/mikestefanello/backlite"
)

// Queue names, also used as the task type in the API.
const (
	TaskCleanupArtifacts   = "cleanup_artifacts"
	TaskCleanupAuditEvents = "cleanup_audit_events"
)

// TaskType describes a task that can be triggered manually.
type TaskType struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// Types lists the task types known to the queue.
func Types() []TaskType {
	return []TaskType{
		{
			Type:        TaskCleanupArtifacts,
			Description: "Remove firmware artifacts whose preset no longer exists",
			Queue:       TaskCleanupArtifacts,
		},
		{
			Type:        TaskCleanupAuditEvents,
			Description: "Delete audit events past the retention period",
			Queue:       TaskCleanupAuditEvents,
		},
	}
}

// NewTask builds the task for a type name. retentionDays only applies to
// audit cleanup.
func NewTask(taskType string, retentionDays int) (backlite.Task, error) {
	switch taskType {
	case TaskCleanupArtifacts:
		return CleanupArtifactsTask{}, nil
	case TaskCleanupAuditEvents:
		return CleanupAuditEventsTask{RetentionDays: retentionDays}, nil
	default:
		return nil, fmt.Errorf("unknown task type: %s", taskType)
	}
}
