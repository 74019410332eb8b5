package handlers

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentboard/recruiting-api/internal/models"
	"talentboard/recruiting-api/internal/repositories"
	"talentboard/recruiting-api/internal/services"
)

type ResumeHandler struct {
	resumeRepo  repositories.ResumeRepository
	storage     services.StorageService
	parser      services.DocumentParser
	search      services.ResumeSearchService
	maxFileSize int64
}

func NewResumeHandler(
	resumeRepo repositories.ResumeRepository,
	storage services.StorageService,
	parser services.DocumentParser,
	search services.ResumeSearchService,
	maxFileSize int64,
) *ResumeHandler {
	return &ResumeHandler{
		resumeRepo:  resumeRepo,
		storage:     storage,
		parser:      parser,
		search:      search,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /resumes/upload. Duplicate uploads (same text
// content) return the existing record instead of creating a new one.
func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No resume file uploaded. Please upload 'resume' as a PDF or TXT file.",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storage.SaveFile(file, "resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume file: %v", err),
		})
	}

	rawText, err := h.parser.ExtractFromFile(filePath)
	if err != nil {
		h.storage.DeleteFile(filename)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract resume text: %v", err),
		})
	}

	rawText = services.CleanText(rawText)
	contentHash := services.HashContent(rawText)

	if existing, err := h.resumeRepo.FindByContentHash(contentHash); err == nil {
		h.storage.DeleteFile(filename)
		return c.JSON(models.ResumeUploadResponse{
			ID:            existing.ID.String(),
			Filename:      existing.Filename,
			OriginalName:  existing.OriginalFileName,
			CandidateName: existing.CandidateName,
		})
	}

	candidateName := c.FormValue("candidate_name")
	if candidateName == "" {
		base := strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
		candidateName = strings.ReplaceAll(base, "_", " ")
	}

	resume := models.Resume{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: file.Filename,
		CandidateName:    candidateName,
		FilePath:         filePath,
		ContentHash:      contentHash,
		RawText:          rawText,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.resumeRepo.Create(&resume); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storage.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume record: %v", err),
		})
	}

	// Index for semantic search. A search-index failure should not reject
	// the upload; the resume is still retrievable by id.
	if err := h.search.IndexResume(c.Context(), &resume); err != nil {
		log.Printf("⚠️  Failed to index resume %s: %v\n", resume.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.ResumeUploadResponse{
		ID:            resume.ID.String(),
		Filename:      resume.Filename,
		OriginalName:  resume.OriginalFileName,
		CandidateName: resume.CandidateName,
	})
}

// HandleGetResume handles GET /resumes/:id.
func (h *ResumeHandler) HandleGetResume(c *fiber.Ctx) error {
	resumeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume ID format",
		})
	}

	resume, err := h.resumeRepo.FindByID(resumeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Resume not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load resume",
		})
	}

	return c.JSON(resume)
}

// HandleListResumes handles GET /resumes.
func (h *ResumeHandler) HandleListResumes(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	resumes, err := h.resumeRepo.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list resumes",
		})
	}

	return c.JSON(fiber.Map{"resumes": resumes})
}

// HandleDeleteResume handles DELETE /resumes/:id. Removes the record, the
// stored file, and the search index entries.
func (h *ResumeHandler) HandleDeleteResume(c *fiber.Ctx) error {
	resumeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume ID format",
		})
	}

	resume, err := h.resumeRepo.FindByID(resumeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Resume not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load resume",
		})
	}

	if err := h.search.DeleteResume(c.Context(), resume.ID.String()); err != nil {
		log.Printf("⚠️  Failed to remove resume %s from the search index: %v\n", resume.ID, err)
	}
	if err := h.storage.DeleteFile(resume.Filename); err != nil {
		log.Printf("⚠️  Failed to delete resume file %s: %v\n", resume.Filename, err)
	}

	if err := h.resumeRepo.Delete(resume.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete resume",
		})
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}

// HandleSearch handles GET /resumes/search?q=...
func (h *ResumeHandler) HandleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	limit := c.QueryInt("limit", 10)

	results, err := h.search.Search(c.Context(), query, limit)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": fmt.Sprintf("search failed: %v", err),
		})
	}

	return c.JSON(fiber.Map{"query": query, "results": results})
}
