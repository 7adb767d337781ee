// Package domain holds the records managed by the admin console and the
// rules that apply to them regardless of storage.
//
// Job status graph:
//
//	active ──deactivate──► inactive
//	  ▲                       │
//	  └──────reactivate───────┘
//
// Neither state is terminal. Deleting a posting removes it from either state.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus values are stored verbatim in the jobs table.
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusInactive JobStatus = "inactive"
)

// ParseJobStatus converts a raw string to a JobStatus, rejecting unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case JobStatusActive, JobStatusInactive:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Valid reports whether s is one of the two known states.
func (s JobStatus) Valid() bool {
	return s == JobStatusActive || s == JobStatusInactive
}

// Coordinates is a resolved address.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// JobPosting is a staffing-agency job listing.
type JobPosting struct {
	ID               string
	Title            string
	Description      string
	Company          string
	Location         string
	Coordinates      *Coordinates
	AccountManager   *string
	Responsibilities []string
	Requirements     []string
	ImageURL         *string
	Status           JobStatus
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeactivatedAt    *time.Time
	ReactivatedAt    *time.Time
}

// HasImage reports whether the posting references a stored asset.
func (j *JobPosting) HasImage() bool {
	return j.ImageURL != nil && *j.ImageURL != ""
}

// Transition moves the posting to status and stamps the matching timestamp.
// Repeating a transition is allowed and overwrites the timestamp.
func (j *JobPosting) Transition(to JobStatus, at time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("unknown job status %q", to)
	}
	switch to {
	case JobStatusInactive:
		j.DeactivatedAt = &at
	case JobStatusActive:
		j.ReactivatedAt = &at
	}
	j.Status = to
	return nil
}

// JobList names one of the two ordered string lists on a posting.
type JobList string

const (
	ListResponsibilities JobList = "responsibilities"
	ListRequirements     JobList = "requirements"
)

// ParseJobList validates a list name.
func ParseJobList(s string) (JobList, error) {
	switch JobList(s) {
	case ListResponsibilities, ListRequirements:
		return JobList(s), nil
	}
	return "", fmt.Errorf("unknown job list %q", s)
}

// Items returns a pointer to the named list on the posting.
func (j *JobPosting) Items(list JobList) *[]string {
	if list == ListRequirements {
		return &j.Requirements
	}
	return &j.Responsibilities
}

// AppendUnique trims item and appends it unless it is blank or already present.
func AppendUnique(items []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return items
	}
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}

// NormalizeItems trims, drops blanks and de-duplicates while keeping first-seen order.
func NormalizeItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = AppendUnique(out, item)
	}
	return out
}

// RemoveAt drops the element at index.
func RemoveAt(items []string, index int) ([]string, error) {
	if index < 0 || index >= len(items) {
		return items, fmt.Errorf("index %d out of range [0,%d)", index, len(items))
	}
	out := make([]string, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}
