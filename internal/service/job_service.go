package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/events"
	"github.com/lcs-staffing/admin-console/internal/geocode"
	"github.com/lcs-staffing/admin-console/internal/observability"
	"github.com/lcs-staffing/admin-console/internal/repository"
	"github.com/lcs-staffing/admin-console/internal/storage"
	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

// Warnings surfaced alongside a successful save.
const (
	WarnImageNotSaved = "image upload failed; the job was saved without the new image"
	WarnNotGeocoded   = "address could not be located; coordinates were not saved"
)

// AssetStore is the part of storage.AssetManager used by jobs.
type AssetStore interface {
	Upload(ctx context.Context, img *storage.Image) (string, error)
	Delete(ctx context.Context, ref string)
}

// AdminLookup resolves account manager references.
type AdminLookup interface {
	GetByID(ctx context.Context, id string) (*domain.AdminAccount, error)
}

// JobService coordinates job posting workflows.
type JobService struct {
	jobs           repository.JobRepository
	admins         AdminLookup
	assets         AssetStore
	geocoder       geocode.Geocoder
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	logger         *zap.Logger
	requireAddress bool
	guard          *inFlight
	now            func() time.Time
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo        repository.JobRepository
	Admins         AdminLookup
	Assets         AssetStore
	Geocoder       geocode.Geocoder
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	RequireAddress bool
	// Clock stamps status transitions. Defaults to time.Now.
	Clock func() time.Time
}

// JobInput describes a new posting.
type JobInput struct {
	Title            string
	Description      string
	Company          string
	Location         string
	AccountManager   *string
	Responsibilities []string
	Requirements     []string
	Image            *storage.Image
}

// JobPatch is a partial update; nil fields are left unchanged.
// An empty AccountManager clears the assignment.
type JobPatch struct {
	Title            *string
	Description      *string
	Company          *string
	Location         *string
	AccountManager   *string
	Responsibilities *[]string
	Requirements     *[]string
	Image            *storage.Image
	RemoveImage      bool
}

// JobResult is a saved posting plus non-fatal warnings for the UI.
type JobResult struct {
	Job      *domain.JobPosting
	Warnings []string
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &JobService{
		jobs:           deps.JobRepo,
		admins:         deps.Admins,
		assets:         deps.Assets,
		geocoder:       deps.Geocoder,
		dispatcher:     deps.Dispatcher,
		metrics:        deps.Metrics,
		logger:         logger,
		requireAddress: deps.RequireAddress,
		guard:          newInFlight(),
		now:            clock,
	}
}

// List returns postings newest first.
func (s *JobService) List(ctx context.Context, session *auth.Session, filter repository.JobFilter) ([]domain.JobPosting, error) {
	if err := auth.Authorize(session, auth.ActionManageJobs, nil); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, storeError("job", err)
	}
	return jobs, nil
}

// Get loads one posting.
func (s *JobService) Get(ctx context.Context, session *auth.Session, id string) (*domain.JobPosting, error) {
	if err := auth.Authorize(session, auth.ActionManageJobs, nil); err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("job", err)
	}
	return job, nil
}

// Create validates input and stores a new active posting. Validation failures never reach the store.
func (s *JobService) Create(ctx context.Context, session *auth.Session, input JobInput) (*JobResult, error) {
	if err := auth.Authorize(session, auth.ActionManageJobs, nil); err != nil {
		return nil, err
	}

	job := &domain.JobPosting{
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Company:          strings.TrimSpace(input.Company),
		Location:         strings.TrimSpace(input.Location),
		Responsibilities: domain.NormalizeItems(input.Responsibilities),
		Requirements:     domain.NormalizeItems(input.Requirements),
		Status:           domain.JobStatusActive,
		CreatedBy:        session.UID,
	}
	if err := s.validateRequired(job); err != nil {
		return nil, err
	}

	manager := session.UID
	if input.AccountManager != nil && strings.TrimSpace(*input.AccountManager) != "" {
		manager = strings.TrimSpace(*input.AccountManager)
	}
	if err := s.checkAccountManager(ctx, manager); err != nil {
		return nil, err
	}
	job.AccountManager = &manager

	result := &JobResult{Job: job}
	coords, err := s.locate(ctx, job.Location, result)
	if err != nil {
		return nil, err
	}
	job.Coordinates = coords

	if input.Image != nil {
		if ref, ok := s.upload(ctx, input.Image, result); ok {
			job.ImageURL = &ref
		}
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		if job.ImageURL != nil {
			s.dropAsset(ctx, *job.ImageURL)
		}
		return nil, storeError("job", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventJobCreated,
		JobID:   job.ID,
		Actor:   sessionActor(session),
		Payload: events.JobCreatedPayload{Title: job.Title, Company: job.Company},
	})
	return result, nil
}

// Update applies patch. status, createdAt and id are never changed here.
// A replacement image is uploaded before the old reference is dropped; if the
// upload fails the old image is kept and the rest of the edit still saves.
func (s *JobService) Update(ctx context.Context, session *auth.Session, id string, patch JobPatch) (*JobResult, error) {
	if err := auth.Authorize(session, auth.ActionManageJobs, nil); err != nil {
		return nil, err
	}
	release, err := s.guard.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("job", err)
	}
	result := &JobResult{Job: job}
	var fields []string

	if patch.Title != nil {
		job.Title = strings.TrimSpace(*patch.Title)
		fields = append(fields, "title")
	}
	if patch.Description != nil {
		job.Description = strings.TrimSpace(*patch.Description)
		fields = append(fields, "description")
	}
	if patch.Company != nil {
		job.Company = strings.TrimSpace(*patch.Company)
		fields = append(fields, "company")
	}
	locationChanged := false
	if patch.Location != nil {
		loc := strings.TrimSpace(*patch.Location)
		locationChanged = loc != job.Location
		job.Location = loc
		fields = append(fields, "location")
	}
	if err := s.validateRequired(job); err != nil {
		return nil, err
	}

	if patch.AccountManager != nil {
		manager := strings.TrimSpace(*patch.AccountManager)
		if manager == "" {
			job.AccountManager = nil
		} else {
			if err := s.checkAccountManager(ctx, manager); err != nil {
				return nil, err
			}
			job.AccountManager = &manager
		}
		fields = append(fields, "account_manager")
	}
	if patch.Responsibilities != nil {
		job.Responsibilities = domain.NormalizeItems(*patch.Responsibilities)
		fields = append(fields, "responsibilities")
	}
	if patch.Requirements != nil {
		job.Requirements = domain.NormalizeItems(*patch.Requirements)
		fields = append(fields, "requirements")
	}

	if locationChanged {
		coords, err := s.locate(ctx, job.Location, result)
		if err != nil {
			return nil, err
		}
		job.Coordinates = coords
	}

	var oldRef, newRef string
	switch {
	case patch.Image != nil:
		if ref, ok := s.upload(ctx, patch.Image, result); ok {
			newRef = ref
			if job.ImageURL != nil {
				oldRef = *job.ImageURL
			}
			job.ImageURL = &newRef
			fields = append(fields, "image_url")
		}
	case patch.RemoveImage && job.HasImage():
		oldRef = *job.ImageURL
		job.ImageURL = nil
		fields = append(fields, "image_url")
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		if newRef != "" {
			s.dropAsset(ctx, newRef)
		}
		return nil, storeError("job", err)
	}
	if oldRef != "" {
		s.dropAsset(ctx, oldRef)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventJobUpdated,
		JobID:   job.ID,
		Actor:   sessionActor(session),
		Payload: events.JobUpdatedPayload{Fields: fields},
	})
	return result, nil
}

// SetStatus moves the posting to status. Repeating a transition is allowed and re-stamps its timestamp.
func (s *JobService) SetStatus(ctx context.Context, session *auth.Session, id string, status domain.JobStatus) (*domain.JobPosting, error) {
	if err := auth.Authorize(session, auth.ActionManageJobs, nil); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewFieldValidationError("status", "status must be active or inactive")
	}
	release, err := s.guard.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("job", err)
	}
	previous := job.Status
	if err := job.Transition(status, s.now()); err != nil {
		return nil, apperrors.NewFieldValidationError("status", err.Error())
	}
	if err := s.jobs.UpdateStatus(ctx, job); err != nil {
		return nil, storeError("job", err)
	}
	s.metrics.RecordJobTransition(string(status))

	s.publishEvent(ctx, events.Event{
		Type:    events.EventJobStatusChanged,
		JobID:   id,
		Actor:   sessionActor(session),
		Payload: events.JobStatusChangedPayload{OldStatus: previous, NewStatus: job.Status},
	})
	return job, nil
}

// Delete removes the posting permanently. The image blob is deleted first on a
// best-effort basis; its failure never blocks the record deletion.
func (s *JobService) Delete(ctx context.Context, session *auth.Session, id string) error {
	if err := auth.Authorize(session, auth.ActionManageJobs, nil); err != nil {
		return err
	}
	release, err := s.guard.acquire(id)
	if err != nil {
		return err
	}
	defer release()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return storeError("job", err)
	}
	if job.HasImage() {
		s.dropAsset(ctx, *job.ImageURL)
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return storeError("job", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventJobDeleted,
		JobID:   id,
		Actor:   sessionActor(session),
		Payload: events.JobDeletedPayload{Title: job.Title, HadImage: job.HasImage()},
	})
	return nil
}

// AddItem appends value to list unless it is blank or already present.
func (s *JobService) AddItem(ctx context.Context, session *auth.Session, id string, list domain.JobList, value string) (*domain.JobPosting, error) {
	if strings.TrimSpace(value) == "" {
		return nil, apperrors.NewFieldValidationError(string(list), "item must not be empty")
	}
	return s.mutateList(ctx, session, id, list, func(items []string) ([]string, error) {
		return domain.AppendUnique(items, value), nil
	})
}

// RemoveItem drops the entry at index from list.
func (s *JobService) RemoveItem(ctx context.Context, session *auth.Session, id string, list domain.JobList, index int) (*domain.JobPosting, error) {
	return s.mutateList(ctx, session, id, list, func(items []string) ([]string, error) {
		out, err := domain.RemoveAt(items, index)
		if err != nil {
			return nil, apperrors.NewFieldValidationError(string(list), err.Error())
		}
		return out, nil
	})
}

func (s *JobService) mutateList(ctx context.Context, session *auth.Session, id string, list domain.JobList, fn func([]string) ([]string, error)) (*domain.JobPosting, error) {
	if err := auth.Authorize(session, auth.ActionManageJobs, nil); err != nil {
		return nil, err
	}
	release, err := s.guard.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("job", err)
	}
	items := job.Items(list)
	updated, err := fn(*items)
	if err != nil {
		return nil, err
	}
	*items = updated

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, storeError("job", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventJobUpdated,
		JobID:   job.ID,
		Actor:   sessionActor(session),
		Payload: events.JobUpdatedPayload{Fields: []string{string(list)}},
	})
	return job, nil
}

// validateRequired reports the first missing field in form order.
func (s *JobService) validateRequired(job *domain.JobPosting) error {
	switch {
	case job.Title == "":
		return apperrors.NewFieldValidationError("title", "title is required")
	case job.Description == "":
		return apperrors.NewFieldValidationError("description", "description is required")
	case job.Company == "":
		return apperrors.NewFieldValidationError("company", "company is required")
	case s.requireAddress && job.Location == "":
		return apperrors.NewFieldValidationError("location", "location is required")
	}
	return nil
}

func (s *JobService) checkAccountManager(ctx context.Context, id string) error {
	if s.admins == nil {
		return nil
	}
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if apperrors.HasCode(storeError("admin", err), apperrors.CodeNotFound) {
			return apperrors.NewFieldValidationError("account_manager", "account manager does not exist")
		}
		return storeError("admin", err)
	}
	if admin.Role != domain.RoleAdmin || !admin.IsActive {
		return apperrors.NewFieldValidationError("account_manager", "account manager must be an active admin")
	}
	return nil
}

// locate geocodes address. With requireAddress a failure blocks the save; otherwise it becomes a warning.
func (s *JobService) locate(ctx context.Context, address string, result *JobResult) (*domain.Coordinates, error) {
	if s.geocoder == nil || address == "" {
		return nil, nil
	}
	coords, err := s.geocoder.Geocode(ctx, address)
	if err == nil {
		return coords, nil
	}
	s.logger.Warn("geocoding failed", zap.String("address", address), zap.Error(err))
	if s.requireAddress {
		return nil, apperrors.NewFieldValidationError("location", "address could not be located")
	}
	result.Warnings = append(result.Warnings, WarnNotGeocoded)
	return nil, nil
}

func (s *JobService) upload(ctx context.Context, img *storage.Image, result *JobResult) (string, bool) {
	if s.assets == nil {
		result.Warnings = append(result.Warnings, WarnImageNotSaved)
		return "", false
	}
	ref, err := s.assets.Upload(ctx, img)
	if err != nil {
		result.Warnings = append(result.Warnings, WarnImageNotSaved)
		return "", false
	}
	return ref, true
}

func (s *JobService) dropAsset(ctx context.Context, ref string) {
	if s.assets == nil {
		return
	}
	s.assets.Delete(ctx, ref)
}

func (s *JobService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func sessionActor(session *auth.Session) events.Actor {
	return events.Actor{UID: session.UID, Email: session.Email}
}
