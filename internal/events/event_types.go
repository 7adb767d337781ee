package events

import (
	"time"

	"github.com/lcs-staffing/admin-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated       EventType = "job_created"
	EventJobUpdated       EventType = "job_updated"
	EventJobStatusChanged EventType = "job_status_changed"
	EventJobDeleted       EventType = "job_deleted"
)

// JobEventTypes lists every job event, for subscribers that react to any change.
var JobEventTypes = []EventType{EventJobCreated, EventJobUpdated, EventJobStatusChanged, EventJobDeleted}

// Actor identifies the admin behind an event.
type Actor struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	JobID     string      `json:"job_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Origin    string      `json:"origin,omitempty"`
	Payload   interface{} `json:"payload"`
	// Remote marks events replayed from another instance.
	Remote bool `json:"-"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// JobUpdatedPayload payload.
type JobUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// JobStatusChangedPayload payload.
type JobStatusChangedPayload struct {
	OldStatus domain.JobStatus `json:"old_status"`
	NewStatus domain.JobStatus `json:"new_status"`
}

// JobDeletedPayload payload.
type JobDeletedPayload struct {
	Title    string `json:"title"`
	HadImage bool   `json:"had_image"`
}
