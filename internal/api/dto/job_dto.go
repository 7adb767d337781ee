package dto

import "time"

// JobRequest is the body of POST /jobs and PATCH /jobs/:id.
// Absent fields are left untouched on PATCH; on POST they are empty.
type JobRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	Company          *string   `json:"company"`
	Location         *string   `json:"location"`
	AccountManager   *string   `json:"account_manager"`
	Responsibilities *[]string `json:"responsibilities"`
	Requirements     *[]string `json:"requirements"`
	RemoveImage      bool      `json:"remove_image"`
}

// JobStatusRequest payload for PUT /jobs/:id/status.
type JobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// JobItemRequest payload for appending to a job list.
type JobItemRequest struct {
	Value string `json:"value"`
}

// CoordinatesResponse is a resolved location.
type CoordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// JobResponse is the API view of a posting.
type JobResponse struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Company          string               `json:"company"`
	Location         string               `json:"location"`
	Coordinates      *CoordinatesResponse `json:"coordinates,omitempty"`
	AccountManager   *string              `json:"account_manager,omitempty"`
	Responsibilities []string             `json:"responsibilities"`
	Requirements     []string             `json:"requirements"`
	ImageURL         *string              `json:"image_url,omitempty"`
	Status           string               `json:"status"`
	CreatedBy        string               `json:"created_by"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        *time.Time           `json:"updated_at,omitempty"`
	DeactivatedAt    *time.Time           `json:"deactivated_at,omitempty"`
	ReactivatedAt    *time.Time           `json:"reactivated_at,omitempty"`
}

// JobSnapshotResponse is one frame of the live job stream.
type JobSnapshotResponse struct {
	Version uint64        `json:"version"`
	Jobs    []JobResponse `json:"jobs"`
	Error   string        `json:"error,omitempty"`
}
