package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lcs-staffing/admin-console/internal/api/dto"
	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/repository"
	"github.com/lcs-staffing/admin-console/internal/service"
	"github.com/lcs-staffing/admin-console/internal/storage"
	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

const defaultStreamHeartbeat = 25 * time.Second

// SessionChecker runs a gate pass for an already issued session token.
type SessionChecker interface {
	Check(ctx context.Context, token string) auth.GateResult
}

// JobsHandler manages job posting endpoints.
type JobsHandler struct {
	service   *service.JobService
	feed      *service.JobFeed
	gate      SessionChecker
	maxUpload int
	heartbeat time.Duration
}

// NewJobsHandler constructs handler. maxUpload caps image uploads in bytes; zero disables the cap.
func NewJobsHandler(jobs *service.JobService, feed *service.JobFeed, gate SessionChecker, maxUpload int) *JobsHandler {
	return &JobsHandler{service: jobs, feed: feed, gate: gate, maxUpload: maxUpload, heartbeat: defaultStreamHeartbeat}
}

// List GET /jobs.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	filter := repository.JobFilter{Limit: c.QueryInt("limit", 0)}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseJobStatus(raw)
		if err != nil {
			return apperrors.NewFieldValidationError("status", err.Error())
		}
		filter.Status = &status
	}
	jobs, err := h.service.List(c.UserContext(), session, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponses(jobs)})
}

// Stream GET /jobs/stream. Sends a server-sent event with the full list on
// connect and after every change until the client goes away. The gate runs
// again before every frame; once it stops authorizing the session a final
// "session" event is sent and the stream ends.
func (h *JobsHandler) Stream(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	token := session.Token

	// The request context ends when the handler returns; the stream outlives it.
	ctx, cancel := context.WithCancel(context.Background())
	snapshots, unsubscribe := h.feed.Subscribe(ctx)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	heartbeat := h.heartbeat
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				if !h.authorized(ctx, w, token) {
					return
				}
				if err := writeSnapshot(w, snap); err != nil {
					return
				}
			case <-ticker.C:
				if !h.authorized(ctx, w, token) {
					return
				}
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}

// authorized re-runs the gate for token and, on denial, tells the client why.
func (h *JobsHandler) authorized(ctx context.Context, w *bufio.Writer, token string) bool {
	res := h.gate.Check(ctx, token)
	if res.Decision == auth.DecisionAuthorized {
		return true
	}
	_ = writeSessionEnd(w, res)
	return false
}

func writeSessionEnd(w *bufio.Writer, res auth.GateResult) error {
	data, err := json.Marshal(fiber.Map{"decision": res.Decision, "reason": res.Reason})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

func writeSnapshot(w *bufio.Writer, snap service.Snapshot) error {
	frame := dto.JobSnapshotResponse{Version: snap.Version, Jobs: jobResponses(snap.Jobs)}
	if snap.Err != nil {
		frame.Error = apperrors.ToDomainError(snap.Err).Message
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: jobs\ndata: %s\n\n", snap.Version, data); err != nil {
		return err
	}
	return w.Flush()
}

// Get GET /jobs/:id.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	job, err := h.service.Get(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

// Create POST /jobs. Accepts JSON or multipart with an optional "image" file.
func (h *JobsHandler) Create(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	req, img, err := h.parseJobRequest(c)
	if err != nil {
		return err
	}

	input := service.JobInput{
		Title:            deref(req.Title),
		Description:      deref(req.Description),
		Company:          deref(req.Company),
		Location:         deref(req.Location),
		AccountManager:   req.AccountManager,
		Responsibilities: derefList(req.Responsibilities),
		Requirements:     derefList(req.Requirements),
		Image:            img,
	}
	res, err := h.service.Create(c.UserContext(), session, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(jobResultResponse(res))
}

// Update PATCH /jobs/:id.
func (h *JobsHandler) Update(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	req, img, err := h.parseJobRequest(c)
	if err != nil {
		return err
	}

	patch := service.JobPatch{
		Title:            req.Title,
		Description:      req.Description,
		Company:          req.Company,
		Location:         req.Location,
		AccountManager:   req.AccountManager,
		Responsibilities: req.Responsibilities,
		Requirements:     req.Requirements,
		Image:            img,
		RemoveImage:      req.RemoveImage,
	}
	res, err := h.service.Update(c.UserContext(), session, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(jobResultResponse(res))
}

// SetStatus PUT /jobs/:id/status.
func (h *JobsHandler) SetStatus(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.JobStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseJobStatus(req.Status)
	if err != nil {
		return apperrors.NewFieldValidationError("status", err.Error())
	}
	job, err := h.service.SetStatus(c.UserContext(), session, c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

// Delete DELETE /jobs/:id.
func (h *JobsHandler) Delete(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), session, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddItem POST /jobs/:id/items/:list.
func (h *JobsHandler) AddItem(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	list, err := domain.ParseJobList(c.Params("list"))
	if err != nil {
		return apperrors.NewFieldValidationError("list", err.Error())
	}
	var req dto.JobItemRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	job, err := h.service.AddItem(c.UserContext(), session, c.Params("id"), list, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

// RemoveItem DELETE /jobs/:id/items/:list/:index.
func (h *JobsHandler) RemoveItem(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	list, err := domain.ParseJobList(c.Params("list"))
	if err != nil {
		return apperrors.NewFieldValidationError("list", err.Error())
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apperrors.NewFieldValidationError("index", "index must be a number")
	}
	job, err := h.service.RemoveItem(c.UserContext(), session, c.Params("id"), list, index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

func (h *JobsHandler) parseJobRequest(c *fiber.Ctx) (*dto.JobRequest, *storage.Image, error) {
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		var req dto.JobRequest
		if err := bindJSON(c, &req); err != nil {
			return nil, nil, err
		}
		return &req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	req := jobRequestFromForm(form.Value)
	if v, ok := form.Value["remove_image"]; ok && len(v) > 0 {
		remove, err := strconv.ParseBool(v[0])
		if err != nil {
			return nil, nil, apperrors.NewFieldValidationError("remove_image", "remove_image must be a boolean")
		}
		req.RemoveImage = remove
	}

	files := form.File["image"]
	if len(files) == 0 {
		return req, nil, nil
	}
	img, err := h.readImage(files[0])
	if err != nil {
		return nil, nil, err
	}
	return req, img, nil
}

func (h *JobsHandler) readImage(fh *multipart.FileHeader) (*storage.Image, error) {
	if h.maxUpload > 0 && fh.Size > int64(h.maxUpload) {
		return nil, apperrors.NewFieldValidationError("image", fmt.Sprintf("image exceeds %d bytes", h.maxUpload))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewFieldValidationError("image", "image could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("image", "image could not be read")
	}
	return storage.DetectImage(data)
}

// jobRequestFromForm reads scalar fields once and list fields as repeated keys.
func jobRequestFromForm(values map[string][]string) *dto.JobRequest {
	scalar := func(key string) *string {
		if v, ok := values[key]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}
	list := func(key string) *[]string {
		if v, ok := values[key]; ok {
			items := append([]string(nil), v...)
			return &items
		}
		return nil
	}
	return &dto.JobRequest{
		Title:            scalar("title"),
		Description:      scalar("description"),
		Company:          scalar("company"),
		Location:         scalar("location"),
		AccountManager:   scalar("account_manager"),
		Responsibilities: list("responsibilities"),
		Requirements:     list("requirements"),
	}
}

func jobResultResponse(res *service.JobResult) fiber.Map {
	out := fiber.Map{"data": jobResponse(res.Job)}
	if len(res.Warnings) > 0 {
		out["warnings"] = res.Warnings
	}
	return out
}

func jobResponse(j *domain.JobPosting) dto.JobResponse {
	resp := dto.JobResponse{
		ID:               j.ID,
		Title:            j.Title,
		Description:      j.Description,
		Company:          j.Company,
		Location:         j.Location,
		AccountManager:   j.AccountManager,
		Responsibilities: nonNilItems(j.Responsibilities),
		Requirements:     nonNilItems(j.Requirements),
		ImageURL:         j.ImageURL,
		Status:           string(j.Status),
		CreatedBy:        j.CreatedBy,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		DeactivatedAt:    j.DeactivatedAt,
		ReactivatedAt:    j.ReactivatedAt,
	}
	if j.Coordinates != nil {
		resp.Coordinates = &dto.CoordinatesResponse{Latitude: j.Coordinates.Latitude, Longitude: j.Coordinates.Longitude}
	}
	return resp
}

func jobResponses(jobs []domain.JobPosting) []dto.JobResponse {
	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, jobResponse(&jobs[i]))
	}
	return items
}

func nonNilItems(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefList(items *[]string) []string {
	if items == nil {
		return nil
	}
	return *items
}
