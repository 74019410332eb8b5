package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"talentboard/recruiting-api/internal/repositories"
	"talentboard/recruiting-api/internal/services"
)

type JobHandler struct {
	jobRepo repositories.JobRecordRepository
	search  services.ResumeSearchService
	writer  services.OutputWriter
}

func NewJobHandler(
	jobRepo repositories.JobRecordRepository,
	search services.ResumeSearchService,
	writer services.OutputWriter,
) *JobHandler {
	return &JobHandler{
		jobRepo: jobRepo,
		search:  search,
		writer:  writer,
	}
}

// HandleListJobs handles GET /jobs.
func (h *JobHandler) HandleListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	records, err := h.jobRepo.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list job records",
		})
	}

	return c.JSON(fiber.Map{"jobs": records})
}

// HandleGetJob handles GET /jobs/:jobID.
func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
	record, err := h.jobRepo.FindByJobID(c.Params("jobID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job record not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job record",
		})
	}

	return c.JSON(record)
}

// HandleJobMatches handles GET /jobs/:jobID/matches: candidate resumes
// ranked by semantic similarity to the job record.
func (h *JobHandler) HandleJobMatches(c *fiber.Ctx) error {
	record, err := h.jobRepo.FindByJobID(c.Params("jobID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job record not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job record",
		})
	}

	limit := c.QueryInt("limit", 10)

	matches, err := h.search.MatchesForJob(c.Context(), record, limit)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": fmt.Sprintf("match search failed: %v", err),
		})
	}

	return c.JSON(fiber.Map{"job_id": record.JobID, "matches": matches})
}

// HandleExportArtifacts handles GET /export/artifacts: all JSON artifacts
// bundled as a ZIP download.
func (h *JobHandler) HandleExportArtifacts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.writer.ExportZip(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to export artifacts: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="job-artifacts.zip"`)
	return c.Send(buf.Bytes())
}
