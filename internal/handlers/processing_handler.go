package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentboard/recruiting-api/internal/models"
	"talentboard/recruiting-api/internal/services"
)

type ProcessingHandler struct {
	source   services.BoardSource
	sessions services.SessionStore
	worker   services.Worker
	drive    services.DriveService
}

func NewProcessingHandler(
	source services.BoardSource,
	sessions services.SessionStore,
	worker services.Worker,
	drive services.DriveService,
) *ProcessingHandler {
	return &ProcessingHandler{
		source:   source,
		sessions: sessions,
		worker:   worker,
		drive:    drive,
	}
}

// HandleProcessMTB handles POST /process/mtb: fetch the tracking board and
// start a session over every job on it. Board fetch failures are fatal and
// reported here; per-job failures show up in the progress snapshot instead.
func (h *ProcessingHandler) HandleProcessMTB(c *fiber.Ctx) error {
	var req models.ProcessMTBRequest
	// Body is optional; a custom session id is the only field.
	_ = c.BodyParser(&req)

	rows, err := h.source.FetchBoard(c.Context())
	if err != nil {
		return h.boardError(c, err)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	h.sessions.Create(sessionID, len(rows))
	h.worker.Enqueue(services.RunRequest{SessionID: sessionID, Rows: rows})

	return c.Status(fiber.StatusAccepted).JSON(models.ProcessResponse{
		SessionID: sessionID,
		Status:    string(models.SessionStatusRunning),
		TotalJobs: len(rows),
	})
}

// HandleProcessJobs handles POST /process/jobs: start a session over an
// explicit job id list. Ids missing from the board are marked failed up
// front so the session totals still add up.
func (h *ProcessingHandler) HandleProcessJobs(c *fiber.Ctx) error {
	var req models.ProcessJobsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if len(req.JobIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_ids is required",
		})
	}

	rows, err := h.source.FetchBoard(c.Context())
	if err != nil {
		return h.boardError(c, err)
	}

	byID := make(map[string]models.MTBRow, len(rows))
	for _, row := range rows {
		byID[row.JobID] = row
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	h.sessions.Create(sessionID, len(req.JobIDs))

	var selected []models.MTBRow
	for _, jobID := range req.JobIDs {
		row, ok := byID[jobID]
		if !ok {
			h.sessions.JobFailed(sessionID, jobID, fmt.Errorf("job %s not found on tracking board", jobID))
			continue
		}
		selected = append(selected, row)
	}

	h.worker.Enqueue(services.RunRequest{SessionID: sessionID, Rows: selected})

	return c.Status(fiber.StatusAccepted).JSON(models.ProcessResponse{
		SessionID: sessionID,
		Status:    string(models.SessionStatusRunning),
		TotalJobs: len(req.JobIDs),
	})
}

// HandleProgress handles GET /process/:id/progress, the endpoint the UI
// polls every few seconds.
func (h *ProcessingHandler) HandleProgress(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	snapshot, ok := h.sessions.Snapshot(sessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(snapshot)
}

// HandleClearSession handles DELETE /process/:id. Running sessions cannot
// be cleared; there is no mid-flight cancellation.
func (h *ProcessingHandler) HandleClearSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	snapshot, ok := h.sessions.Snapshot(sessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	if snapshot.Status == models.SessionStatusRunning {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session is still running and cannot be cleared",
		})
	}

	h.sessions.Clear(sessionID)
	return c.JSON(fiber.Map{"status": "cleared"})
}

func (h *ProcessingHandler) boardError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrReauthRequired) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "Google Drive authorization required",
			"auth_url": h.drive.AuthURL("state-token"),
		})
	}

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": fmt.Sprintf("failed to fetch tracking board: %v", err),
	})
}
